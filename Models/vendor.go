package Models

type Vendor struct {
	Base
	Party
	Purchases []Purchase `json:"purchases,omitempty" gorm:"foreignKey:VendorID"`
}

type Customer struct {
	Base
	Party
	Invoices []Invoice `json:"invoices,omitempty" gorm:"foreignKey:CustomerID"`
}

// CustomerInput is PartyInput with a required phone number.
type CustomerInput struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"required"`
	Address      string `json:"address"`
	TaxID        string `json:"taxId"`
	PaymentTerms *int   `json:"paymentTerms" validate:"omitempty,gte=0"`
}

func (in CustomerInput) Party() Party {
	return PartyInput{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		TaxID:        in.TaxID,
		PaymentTerms: in.PaymentTerms,
	}.Party()
}
