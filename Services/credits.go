package Services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"Stockbook/Models"
)

// CreditService reconciles payments against per-invoice credit balances.
type CreditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	validator *Validator
}

func NewCreditService(db *gorm.DB, log *logrus.Logger, v *Validator) *CreditService {
	return &CreditService{db: db, log: log, validator: v}
}

// CreatePayment records a payment and, when the invoice has a credit,
// applies it to the balance in the same transaction.
func (s *CreditService) CreatePayment(ctx context.Context, input Models.PaymentInput, userID *uint) (*Models.Payment, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}
	date, err := parseDateField("date", input.Date, time.Now())
	if err != nil {
		return nil, err
	}

	payment := Models.Payment{
		Base:      Models.Base{CreatedBy: userID},
		InvoiceID: *input.Invoice,
		Amount:    *input.Amount,
		Date:      date,
		Method:    Models.PaymentMethod(input.Method),
		Reference: input.Reference,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice Models.Invoice
		if err := tx.Select("id").First(&invoice, payment.InvoiceID).Error; err != nil {
			return lookup(err, "Invoice")
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		credit, err := creditFor(tx, payment.InvoiceID)
		if err != nil {
			return err
		}
		if credit == nil {
			s.log.WithFields(logrus.Fields{
				"module":    "Services",
				"invoiceId": payment.InvoiceID,
				"paymentId": payment.ID,
			}).Info("no credit for invoice, payment recorded without balance update")
			return nil
		}
		credit.ApplyPayment(payment.Amount)
		if err := tx.Save(credit).Error; err != nil {
			return fmt.Errorf("update credit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// DeletePayment removes a payment and reverses its effect on the credit.
func (s *CreditService) DeletePayment(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment Models.Payment
		if err := tx.First(&payment, id).Error; err != nil {
			return lookup(err, "Payment")
		}

		credit, err := creditFor(tx, payment.InvoiceID)
		if err != nil {
			return err
		}
		if credit != nil {
			credit.ReversePayment(payment.Amount)
			if err := tx.Save(credit).Error; err != nil {
				return fmt.Errorf("update credit: %w", err)
			}
		}

		if err := tx.Delete(&payment).Error; err != nil {
			return fmt.Errorf("delete payment: %w", err)
		}
		return nil
	})
}

func (s *CreditService) ListPayments(ctx context.Context) ([]Models.Payment, error) {
	var payments []Models.Payment
	err := s.db.WithContext(ctx).
		Preload("Invoice").
		Order("date DESC").Order("id DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (s *CreditService) PaymentsForInvoice(ctx context.Context, invoiceID uint) ([]Models.Payment, error) {
	var payments []Models.Payment
	err := s.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("date DESC").Order("id DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("list payments for invoice %d: %w", invoiceID, err)
	}
	return payments, nil
}

// Outstanding lists invoices that have been sent but not marked paid.
func (s *CreditService) Outstanding(ctx context.Context) ([]Models.Invoice, error) {
	var invoices []Models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", orderItems).
		Preload("Items.Product").
		Where("status = ?", Models.InvoiceSent).
		Order("date ASC").Order("id ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("list outstanding invoices: %w", err)
	}
	return invoices, nil
}

type CustomerHistory struct {
	Customer Models.Customer  `json:"customer"`
	Invoices []Models.Invoice `json:"invoices"`
	Payments []Models.Payment `json:"payments"`
}

// CustomerHistory returns a customer's invoices and the payments made against them.
func (s *CreditService) CustomerHistory(ctx context.Context, customerID uint) (*CustomerHistory, error) {
	db := s.db.WithContext(ctx)

	history := CustomerHistory{Invoices: []Models.Invoice{}, Payments: []Models.Payment{}}
	if err := db.First(&history.Customer, customerID).Error; err != nil {
		return nil, lookup(err, "Customer")
	}

	err := db.Preload("Items", orderItems).
		Preload("Items.Product").
		Where("customer_id = ?", customerID).
		Order("date DESC").Order("id DESC").
		Find(&history.Invoices).Error
	if err != nil {
		return nil, fmt.Errorf("list customer invoices: %w", err)
	}
	if len(history.Invoices) == 0 {
		return &history, nil
	}

	ids := make([]uint, 0, len(history.Invoices))
	for _, inv := range history.Invoices {
		ids = append(ids, inv.ID)
	}
	err = db.Where("invoice_id IN ?", ids).
		Order("date DESC").Order("id DESC").
		Find(&history.Payments).Error
	if err != nil {
		return nil, fmt.Errorf("list customer payments: %w", err)
	}
	return &history, nil
}

// CreateCredit opens the receivable for an invoice. The total defaults to
// the invoice total and the due date to the invoice's, or the invoice date
// plus the customer's payment terms.
func (s *CreditService) CreateCredit(ctx context.Context, input Models.CreditInput, userID *uint) (*Models.Credit, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	var credit Models.Credit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice Models.Invoice
		if err := tx.Preload("Items").Preload("Customer").First(&invoice, *input.Invoice).Error; err != nil {
			return lookup(err, "Invoice")
		}

		existing, err := creditFor(tx, invoice.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &ConflictError{Message: "A credit already exists for this invoice"}
		}

		total := invoice.Total()
		if input.TotalAmount != nil {
			total = *input.TotalAmount
		}

		due, err := creditDueDate(input.DueDate, &invoice)
		if err != nil {
			return err
		}

		var paid float64
		if err := tx.Model(&Models.Payment{}).
			Where("invoice_id = ?", invoice.ID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&paid).Error; err != nil {
			return fmt.Errorf("sum invoice payments: %w", err)
		}

		credit = Models.Credit{
			Base:        Models.Base{CreatedBy: userID},
			CustomerID:  invoice.CustomerID,
			InvoiceID:   invoice.ID,
			TotalAmount: total,
			DueDate:     datatypes.Date(due),
		}
		credit.ApplyPayment(paid)
		if err := tx.Create(&credit).Error; err != nil {
			if isUniqueViolation(err) {
				return &ConflictError{Message: "A credit already exists for this invoice"}
			}
			return fmt.Errorf("insert credit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &credit, nil
}

type CreditFilter struct {
	Status     Models.CreditStatus
	CustomerID *uint
}

func (s *CreditService) ListCredits(ctx context.Context, filter CreditFilter) ([]Models.Credit, error) {
	q := s.db.WithContext(ctx).Preload("Customer").Preload("Invoice")
	switch filter.Status {
	case "":
	case Models.CreditUnpaid, Models.CreditPartial, Models.CreditPaid:
		q = q.Where("status = ?", filter.Status)
	default:
		return nil, invalidField("status", "status must be one of [unpaid partial paid]")
	}
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}

	var credits []Models.Credit
	if err := q.Order("due_date ASC").Order("id ASC").Find(&credits).Error; err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	return credits, nil
}

func creditFor(tx *gorm.DB, invoiceID uint) (*Models.Credit, error) {
	var credit Models.Credit
	err := tx.Where("invoice_id = ?", invoiceID).First(&credit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credit for invoice %d: %w", invoiceID, err)
	}
	return &credit, nil
}

func creditDueDate(value string, invoice *Models.Invoice) (time.Time, error) {
	if strings.TrimSpace(value) != "" {
		return parseDateField("dueDate", value, time.Time{})
	}
	if invoice.DueDate != nil {
		return time.Time(*invoice.DueDate), nil
	}
	terms := 30
	if invoice.Customer != nil {
		terms = invoice.Customer.PaymentTerms
	}
	return invoice.Date.AddDate(0, 0, terms), nil
}
