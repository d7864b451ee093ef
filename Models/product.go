package Models

type Product struct {
	Base
	Name        string  `json:"name" gorm:"size:255;not null;index"`
	Description string  `json:"description" gorm:"type:text"`
	Category    string  `json:"category" gorm:"size:128;index"`
	Cost        float64 `json:"cost" gorm:"not null;default:0"`
}

// ProductWithStock is a product plus its ledger-derived quantity.
type ProductWithStock struct {
	Product
	StockRemaining int64 `json:"stockRemaining"`
}

type ProductInput struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Cost        *float64 `json:"cost" validate:"required,gte=0"`
}

type ProductUpdate struct {
	Name        *string  `json:"name" validate:"omitempty,min=1"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Cost        *float64 `json:"cost" validate:"omitempty,gte=0"`
}

func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Cost != nil {
		p.Cost = *u.Cost
	}
}
