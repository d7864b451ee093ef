package Models

import "time"

// NumberSequence is a named counter. Value is the last number handed out.
type NumberSequence struct {
	Name      string    `json:"name" gorm:"primaryKey;size:64"`
	Value     int64     `json:"value" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const InvoiceSequence = "invoice"
