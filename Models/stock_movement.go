package Models

import (
	"errors"

	"gorm.io/gorm"
)

type ReferenceType string

const (
	ReferenceInvoice    ReferenceType = "invoice"
	ReferencePurchase   ReferenceType = "purchase"
	ReferenceAdjustment ReferenceType = "adjustment"
)

// LowStockThreshold is the inclusive upper bound of the low stock band (0, 10].
const LowStockThreshold = 10

var ErrMovementImmutable = errors.New("stock movements are append-only")

// StockMovement is one signed row of the stock ledger. A product's stock is
// the sum of its movements.
type StockMovement struct {
	Base
	ProductID     uint          `json:"productId" gorm:"not null;index"`
	Quantity      int64         `json:"quantity" gorm:"not null"`
	ReferenceType ReferenceType `json:"referenceType" gorm:"size:16;not null;index:idx_movement_reference"`
	ReferenceID   uint          `json:"referenceId" gorm:"not null;index:idx_movement_reference"`
	Notes         string        `json:"notes"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (m *StockMovement) BeforeUpdate(tx *gorm.DB) error {
	return ErrMovementImmutable
}

// StockAdjustment is a manual correction (count, damage, write-off). It owns
// exactly one movement.
type StockAdjustment struct {
	Base
	ProductID uint   `json:"productId" gorm:"not null;index"`
	Quantity  int64  `json:"quantity" gorm:"not null"`
	Reason    string `json:"reason" gorm:"size:255"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

type AdjustmentInput struct {
	Product  *uint  `json:"product" validate:"required"`
	Quantity int64  `json:"quantity" validate:"ne=0"`
	Reason   string `json:"reason" validate:"max=255"`
}
