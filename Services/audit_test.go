package Services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Stockbook/Models"
)

func TestAuditConsistentAfterWorkflows(t *testing.T) {
	env := newTestEnv(t)
	vendor := env.vendor(t, "Supplier")
	p := env.product(t, "Widget", "parts")

	env.receive(t, vendor.ID, p.ID, 20)
	_, err := env.invoices.Create(ctx(), invoiceInput(
		Models.InvoiceItemInput{Product: p.ID, Quantity: 2, Price: 1},
		Models.InvoiceItemInput{Product: p.ID, Quantity: 3, Price: 1},
		Models.InvoiceItemInput{Product: 999, Quantity: 1, Price: 1},
	), nil)
	require.NoError(t, err)
	_, err = env.ledger.Adjust(ctx(), Models.AdjustmentInput{Product: &p.ID, Quantity: -1}, nil)
	require.NoError(t, err)

	report, err := AuditLedger(ctx(), env.db, env.log)
	require.NoError(t, err)
	assert.True(t, report.Consistent(), "%+v", report.Discrepancies)
	assert.Equal(t, 1, report.Invoices)
	assert.Equal(t, 1, report.Purchases)
	assert.Equal(t, 1, report.Adjustments)
	assert.Equal(t, int64(4), report.Movements)
}

func TestAuditReportsDiscrepancies(t *testing.T) {
	env := newTestEnv(t)
	vendor := env.vendor(t, "Supplier")
	a := env.product(t, "A", "parts")
	b := env.product(t, "B", "parts")

	purchase := env.receive(t, vendor.ID, a.ID, 5)
	inv, err := env.invoices.Create(ctx(), invoiceInput(Models.InvoiceItemInput{Product: a.ID, Quantity: 2, Price: 1}), nil)
	require.NoError(t, err)

	// Drop the purchase's ledger row, add a stray one to the invoice and one
	// pointing at an adjustment that was never made.
	_, err = DeleteMovementsFor(env.db, Models.ReferencePurchase, purchase.ID)
	require.NoError(t, err)
	require.NoError(t, RecordMovements(env.db, []Models.StockMovement{
		{ProductID: b.ID, Quantity: -1, ReferenceType: Models.ReferenceInvoice, ReferenceID: inv.ID},
		{ProductID: a.ID, Quantity: -1, ReferenceType: Models.ReferenceInvoice, ReferenceID: inv.ID},
		{ProductID: b.ID, Quantity: 7, ReferenceType: Models.ReferenceAdjustment, ReferenceID: 404},
	}))

	report, err := AuditLedger(ctx(), env.db, env.log)
	require.NoError(t, err)
	assert.False(t, report.Consistent())

	assert.ElementsMatch(t, []Discrepancy{
		{Kind: QuantityMismatch, ReferenceType: Models.ReferenceInvoice, ReferenceID: inv.ID, ProductID: a.ID, Expected: -2, Recorded: -3},
		{Kind: UnexpectedMovement, ReferenceType: Models.ReferenceInvoice, ReferenceID: inv.ID, ProductID: b.ID, Expected: 0, Recorded: -1},
		{Kind: MissingMovement, ReferenceType: Models.ReferencePurchase, ReferenceID: purchase.ID, ProductID: a.ID, Expected: 5, Recorded: 0},
		{Kind: OrphanMovement, ReferenceType: Models.ReferenceAdjustment, ReferenceID: 404, ProductID: b.ID, Expected: 0, Recorded: 7},
	}, report.Discrepancies)

	// Sorted by reference type, then reference id, then product.
	assert.Equal(t, Models.ReferenceAdjustment, report.Discrepancies[0].ReferenceType)
	assert.Equal(t, Models.ReferencePurchase, report.Discrepancies[3].ReferenceType)
}
