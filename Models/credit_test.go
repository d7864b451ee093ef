package Models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreditApplyPayment(t *testing.T) {
	credit := Credit{TotalAmount: 100}
	credit.Recompute()
	assert.Equal(t, CreditUnpaid, credit.Status)
	assert.Equal(t, 100.0, credit.DueAmount)

	credit.ApplyPayment(40)
	assert.Equal(t, 40.0, credit.PaidAmount)
	assert.Equal(t, 60.0, credit.DueAmount)
	assert.Equal(t, CreditPartial, credit.Status)

	credit.ApplyPayment(60)
	assert.Equal(t, 100.0, credit.PaidAmount)
	assert.Equal(t, 0.0, credit.DueAmount)
	assert.Equal(t, CreditPaid, credit.Status)
}

func TestCreditOverpaymentClampsDue(t *testing.T) {
	credit := Credit{TotalAmount: 50}
	credit.ApplyPayment(80)

	assert.Equal(t, 80.0, credit.PaidAmount)
	assert.Equal(t, 0.0, credit.DueAmount)
	assert.Equal(t, CreditPaid, credit.Status)
}

func TestCreditDecimalPrecision(t *testing.T) {
	credit := Credit{TotalAmount: 0.3}
	credit.ApplyPayment(0.1)
	credit.ApplyPayment(0.2)

	assert.Equal(t, 0.3, credit.PaidAmount)
	assert.Equal(t, CreditPaid, credit.Status)
}

func TestCreditReversePayment(t *testing.T) {
	credit := Credit{TotalAmount: 100}
	credit.ApplyPayment(40)
	credit.ApplyPayment(60)

	credit.ReversePayment(60)
	assert.Equal(t, 40.0, credit.PaidAmount)
	assert.Equal(t, 60.0, credit.DueAmount)
	assert.Equal(t, CreditPartial, credit.Status)

	credit.ReversePayment(100)
	assert.Equal(t, 0.0, credit.PaidAmount)
	assert.Equal(t, 100.0, credit.DueAmount)
	assert.Equal(t, CreditUnpaid, credit.Status)
}

func TestCreditZeroTotalIsPaid(t *testing.T) {
	credit := Credit{}
	credit.Recompute()
	assert.Equal(t, CreditPaid, credit.Status)
}
