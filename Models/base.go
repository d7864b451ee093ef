package Models

import "time"

// Base carries the columns shared by every stored record. Records are hard-deleted.
type Base struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedBy *uint     `json:"createdBy,omitempty" gorm:"index"`
}

// Party holds the contact fields customers and vendors share.
type Party struct {
	Name         string `json:"name" gorm:"size:255;not null"`
	Email        string `json:"email" gorm:"size:255"`
	Phone        string `json:"phone" gorm:"size:64"`
	Address      string `json:"address"`
	TaxID        string `json:"taxId" gorm:"size:64"`
	PaymentTerms int    `json:"paymentTerms" gorm:"not null;default:30"`
}

type PartyInput struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	TaxID        string `json:"taxId"`
	PaymentTerms *int   `json:"paymentTerms" validate:"omitempty,gte=0"`
}

func (in PartyInput) Party() Party {
	p := Party{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		TaxID:        in.TaxID,
		PaymentTerms: 30,
	}
	if in.PaymentTerms != nil {
		p.PaymentTerms = *in.PaymentTerms
	}
	return p
}

// PartyUpdate only touches the fields present in the request body.
type PartyUpdate struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	TaxID        *string `json:"taxId"`
	PaymentTerms *int    `json:"paymentTerms" validate:"omitempty,gte=0"`
}

func (u PartyUpdate) Apply(p *Party) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.Address != nil {
		p.Address = *u.Address
	}
	if u.TaxID != nil {
		p.TaxID = *u.TaxID
	}
	if u.PaymentTerms != nil {
		p.PaymentTerms = *u.PaymentTerms
	}
}
