package Models

import "time"

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentBank   PaymentMethod = "bank"
	PaymentCard   PaymentMethod = "card"
	PaymentOnline PaymentMethod = "online"
)

type Payment struct {
	Base
	InvoiceID uint          `json:"invoiceId" gorm:"not null;index"`
	Amount    float64       `json:"amount" gorm:"not null"`
	Date      time.Time     `json:"date" gorm:"not null;index"`
	Method    PaymentMethod `json:"method" gorm:"size:16;not null"`
	Reference string        `json:"reference" gorm:"size:255"`

	Invoice *Invoice `json:"invoice,omitempty" gorm:"foreignKey:InvoiceID"`
}

type PaymentInput struct {
	Invoice   *uint    `json:"invoice" validate:"required"`
	Amount    *float64 `json:"amount" validate:"required,gte=0"`
	Date      string   `json:"date"`
	Method    string   `json:"method" validate:"required,oneof=cash bank card online"`
	Reference string   `json:"reference"`
}
