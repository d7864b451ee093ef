package Models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceTotal(t *testing.T) {
	inv := Invoice{
		TaxRate: 10,
		Items: []InvoiceItem{
			{Quantity: 3, Price: 20},
			{Quantity: 2, Price: 50, Discount: 10},
		},
	}

	// 60 + 90 = 150, plus 10% tax
	assert.Equal(t, 165.0, inv.Total())
}

func TestInvoiceItemRevenueIgnoresDiscount(t *testing.T) {
	item := InvoiceItem{Quantity: 4, Price: 2.5, Discount: 50}

	assert.Equal(t, "10", item.Revenue().String())
	assert.Equal(t, "5", item.LineTotal().String())
}

func TestPurchaseTotal(t *testing.T) {
	p := Purchase{Items: []PurchaseItem{{Quantity: 10, Cost: 1.1}, {Quantity: 1, Cost: 0.05}}}
	assert.Equal(t, 11.05, p.Total())
}

func TestCustomerInputParty(t *testing.T) {
	terms := 15
	in := CustomerInput{Name: "Acme", PaymentTerms: &terms, Phone: "555-0100"}

	p := in.Party()
	assert.Equal(t, "Acme", p.Name)
	assert.Equal(t, "555-0100", p.Phone)
	assert.Equal(t, 15, p.PaymentTerms)

	assert.Equal(t, 30, PartyInput{Name: "Default"}.Party().PaymentTerms)
}

func TestPartyUpdateOnlyTouchesGivenFields(t *testing.T) {
	p := Party{Name: "Old", Email: "old@example.com", Phone: "1"}
	name := "New"
	PartyUpdate{Name: &name}.Apply(&p)

	assert.Equal(t, "New", p.Name)
	assert.Equal(t, "old@example.com", p.Email)
	assert.Equal(t, "1", p.Phone)
}
