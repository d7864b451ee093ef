package Models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
)

var hundred = decimal.NewFromInt(100)

type Invoice struct {
	Base
	InvoiceNumber string          `json:"invoiceNumber" gorm:"size:64;not null;uniqueIndex"`
	CustomerID    *uint           `json:"customerId" gorm:"index"`
	Date          time.Time       `json:"date" gorm:"not null;index"`
	DueDate       *datatypes.Date `json:"dueDate"`
	TaxRate       float64         `json:"taxRate" gorm:"not null;default:0"`
	Status        InvoiceStatus   `json:"status" gorm:"size:16;not null;default:draft;index"`
	Notes         string          `json:"notes" gorm:"type:text"`

	// Relationships
	Customer *Customer     `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items    []InvoiceItem `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// InvoiceItem rows are written once with their invoice and never updated.
type InvoiceItem struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	InvoiceID uint    `json:"invoiceId" gorm:"not null;index"`
	ProductID uint    `json:"productId" gorm:"not null;index"`
	Quantity  int64   `json:"quantity" gorm:"not null"`
	Price     float64 `json:"price" gorm:"not null"`
	Discount  float64 `json:"discount" gorm:"not null;default:0"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// Revenue is quantity times unit price, the figure the sales reports use.
func (item InvoiceItem) Revenue() decimal.Decimal {
	return decimal.NewFromInt(item.Quantity).Mul(decimal.NewFromFloat(item.Price))
}

// LineTotal applies the percentage discount to Revenue.
func (item InvoiceItem) LineTotal() decimal.Decimal {
	discount := decimal.NewFromFloat(item.Discount).Div(hundred)
	return item.Revenue().Mul(decimal.NewFromInt(1).Sub(discount))
}

// Total is the sum of line totals with the percentage tax applied, rounded to cents.
func (inv *Invoice) Total() float64 {
	sum := decimal.Zero
	for _, item := range inv.Items {
		sum = sum.Add(item.LineTotal())
	}
	tax := decimal.NewFromFloat(inv.TaxRate).Div(hundred)
	return sum.Mul(decimal.NewFromInt(1).Add(tax)).Round(2).InexactFloat64()
}

type InvoiceInput struct {
	InvoiceNumber string             `json:"invoiceNumber" validate:"omitempty,max=64"`
	Customer      *uint              `json:"customer"`
	Date          string             `json:"date"`
	DueDate       string             `json:"dueDate"`
	Items         []InvoiceItemInput `json:"items" validate:"required,min=1,dive"`
	TaxRate       float64            `json:"taxRate" validate:"gte=0,lte=100"`
	Status        InvoiceStatus      `json:"status" validate:"omitempty,oneof=draft sent paid"`
	Notes         string             `json:"notes"`
}

type InvoiceItemInput struct {
	Product  uint    `json:"product" validate:"required"`
	Quantity int64   `json:"quantity" validate:"gt=0"`
	Price    float64 `json:"price" validate:"gte=0"`
	Discount float64 `json:"discount" validate:"gte=0,lte=100"`
}
