package Models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreditStatus string

const (
	CreditUnpaid  CreditStatus = "unpaid"
	CreditPartial CreditStatus = "partial"
	CreditPaid    CreditStatus = "paid"
)

// Credit is the receivable balance of one invoice.
type Credit struct {
	Base
	CustomerID  *uint          `json:"customerId" gorm:"index"`
	InvoiceID   uint           `json:"invoiceId" gorm:"not null;uniqueIndex"`
	TotalAmount float64        `json:"totalAmount" gorm:"not null"`
	PaidAmount  float64        `json:"paidAmount" gorm:"not null;default:0"`
	DueAmount   float64        `json:"dueAmount" gorm:"not null"`
	DueDate     datatypes.Date `json:"dueDate"`
	Status      CreditStatus   `json:"status" gorm:"size:16;not null;default:unpaid;index"`

	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Invoice  *Invoice  `json:"invoice,omitempty" gorm:"foreignKey:InvoiceID"`
}

// ApplyPayment adds amount to the paid total and recomputes the balance.
func (c *Credit) ApplyPayment(amount float64) {
	paid := decimal.NewFromFloat(c.PaidAmount).Add(decimal.NewFromFloat(amount))
	c.PaidAmount = paid.Round(2).InexactFloat64()
	c.Recompute()
}

// ReversePayment undoes ApplyPayment. The paid total never drops below zero.
func (c *Credit) ReversePayment(amount float64) {
	paid := decimal.NewFromFloat(c.PaidAmount).Sub(decimal.NewFromFloat(amount))
	if paid.IsNegative() {
		paid = decimal.Zero
	}
	c.PaidAmount = paid.Round(2).InexactFloat64()
	c.Recompute()
}

// Recompute derives DueAmount and Status from TotalAmount and PaidAmount.
func (c *Credit) Recompute() {
	total := decimal.NewFromFloat(c.TotalAmount)
	paid := decimal.NewFromFloat(c.PaidAmount)
	due := total.Sub(paid)

	switch {
	case !due.IsPositive():
		c.DueAmount = 0
		c.Status = CreditPaid
	case paid.IsPositive():
		c.DueAmount = due.Round(2).InexactFloat64()
		c.Status = CreditPartial
	default:
		c.DueAmount = due.Round(2).InexactFloat64()
		c.Status = CreditUnpaid
	}
}

func (c *Credit) BeforeSave(tx *gorm.DB) error {
	c.Recompute()
	return nil
}

type CreditInput struct {
	Invoice     *uint    `json:"invoice" validate:"required"`
	TotalAmount *float64 `json:"totalAmount" validate:"omitempty,gte=0"`
	DueDate     string   `json:"dueDate"`
}
