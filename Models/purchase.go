package Models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseStatus string

const (
	PurchaseDraft     PurchaseStatus = "draft"
	PurchaseOrdered   PurchaseStatus = "ordered"
	PurchaseReceived  PurchaseStatus = "received"
	PurchaseCancelled PurchaseStatus = "cancelled"
)

type Purchase struct {
	Base
	PONumber string         `json:"poNumber" gorm:"column:po_number;size:64;not null;uniqueIndex"`
	VendorID uint           `json:"vendorId" gorm:"not null;index"`
	Date     time.Time      `json:"date" gorm:"not null;index"`
	Status   PurchaseStatus `json:"status" gorm:"size:16;not null;default:ordered;index"`
	Notes    string         `json:"notes" gorm:"type:text"`
	// TotalAmount is derived from the loaded items.
	TotalAmount float64 `json:"totalAmount" gorm:"-"`

	Vendor *Vendor        `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	Items  []PurchaseItem `json:"items" gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
}

type PurchaseItem struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	PurchaseID uint    `json:"purchaseId" gorm:"not null;index"`
	ProductID  uint    `json:"productId" gorm:"not null;index"`
	Quantity   int64   `json:"quantity" gorm:"not null"`
	Cost       float64 `json:"cost" gorm:"not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// AfterFind fills TotalAmount. Queries that skip Items see zero.
func (p *Purchase) AfterFind(tx *gorm.DB) error {
	p.TotalAmount = p.Total()
	return nil
}

func (p *Purchase) Total() float64 {
	sum := decimal.Zero
	for _, item := range p.Items {
		sum = sum.Add(decimal.NewFromInt(item.Quantity).Mul(decimal.NewFromFloat(item.Cost)))
	}
	return sum.Round(2).InexactFloat64()
}

// PurchaseInput uses pointers so a missing field can be told apart from a zero one.
type PurchaseInput struct {
	PONumber string              `json:"poNumber" validate:"omitempty,max=64"`
	Vendor   *uint               `json:"vendor"`
	Date     string              `json:"date"`
	Items    []PurchaseItemInput `json:"items"`
	Status   PurchaseStatus      `json:"status" validate:"omitempty,oneof=draft ordered received cancelled"`
	Notes    string              `json:"notes"`
}

type PurchaseItemInput struct {
	Product  *uint    `json:"product"`
	Quantity *int64   `json:"quantity"`
	Cost     *float64 `json:"cost"`
}
