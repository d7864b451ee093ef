package Services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"Stockbook/Models"
)

// maxNumberAttempts bounds retries when an allocated invoice number collides.
const maxNumberAttempts = 3

type InvoiceService struct {
	db        *gorm.DB
	log       *logrus.Logger
	validator *Validator
	sequencer Sequencer
}

func NewInvoiceService(db *gorm.DB, log *logrus.Logger, v *Validator, seq Sequencer) *InvoiceService {
	if seq == nil {
		seq = NewDBSequencer()
	}
	return &InvoiceService{db: db, log: log, validator: v, sequencer: seq}
}

func (s *InvoiceService) List(ctx context.Context) ([]Models.Invoice, error) {
	var invoices []Models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", orderItems).
		Preload("Items.Product").
		Order("date DESC").Order("id DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

func (s *InvoiceService) Get(ctx context.Context, id uint) (*Models.Invoice, error) {
	var invoice Models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", orderItems).
		Preload("Items.Product").
		First(&invoice, id).Error
	if err != nil {
		return nil, lookup(err, "Invoice")
	}
	return &invoice, nil
}

// Create issues an invoice. The invoice, its items and one negative stock
// movement per item are written in one transaction. Items whose product no
// longer exists are kept on the invoice but move no stock.
func (s *InvoiceService) Create(ctx context.Context, input Models.InvoiceInput, userID *uint) (*Models.Invoice, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	date, err := parseDateField("date", input.Date, time.Now())
	if err != nil {
		return nil, err
	}
	var dueDate *datatypes.Date
	if strings.TrimSpace(input.DueDate) != "" {
		due, err := parseDateField("dueDate", input.DueDate, time.Time{})
		if err != nil {
			return nil, err
		}
		d := datatypes.Date(due)
		dueDate = &d
	}

	status := input.Status
	if status == "" {
		status = Models.InvoiceDraft
	}

	explicit := strings.TrimSpace(input.InvoiceNumber)
	for attempt := 1; ; attempt++ {
		invoice := Models.Invoice{
			Base:          Models.Base{CreatedBy: userID},
			InvoiceNumber: explicit,
			CustomerID:    input.Customer,
			Date:          date,
			DueDate:       dueDate,
			TaxRate:       input.TaxRate,
			Status:        status,
			Notes:         input.Notes,
		}
		for _, item := range input.Items {
			invoice.Items = append(invoice.Items, Models.InvoiceItem{
				ProductID: item.Product,
				Quantity:  item.Quantity,
				Price:     item.Price,
				Discount:  item.Discount,
			})
		}

		err := s.insert(ctx, &invoice)
		if err == nil {
			return s.Get(ctx, invoice.ID)
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		if explicit != "" {
			return nil, &ConflictError{Message: "An invoice with this number already exists"}
		}
		if attempt >= maxNumberAttempts {
			return nil, &ConflictError{Message: "Could not allocate an invoice number, please retry"}
		}
		s.log.WithFields(logrus.Fields{
			"module":  "Services",
			"attempt": attempt,
		}).Warn("invoice number collided, retrying")
	}
}

func (s *InvoiceService) insert(ctx context.Context, invoice *Models.Invoice) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if invoice.CustomerID != nil {
			var customer Models.Customer
			if err := tx.Select("id").First(&customer, *invoice.CustomerID).Error; err != nil {
				return lookup(err, "Customer")
			}
		}

		if invoice.InvoiceNumber == "" {
			n, err := s.sequencer.Next(ctx, tx)
			if err != nil {
				return fmt.Errorf("allocate invoice number: %w", err)
			}
			invoice.InvoiceNumber = strconv.FormatInt(n, 10)
		}

		if err := tx.Create(invoice).Error; err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}

		ids := make([]uint, 0, len(invoice.Items))
		for _, item := range invoice.Items {
			ids = append(ids, item.ProductID)
		}
		known, err := existingProducts(tx, ids)
		if err != nil {
			return err
		}

		movements := make([]Models.StockMovement, 0, len(invoice.Items))
		for _, item := range invoice.Items {
			if !known[item.ProductID] {
				s.log.WithFields(logrus.Fields{
					"module":        "Services",
					"invoiceNumber": invoice.InvoiceNumber,
					"productId":     item.ProductID,
				}).Warn("product not found, no stock movement recorded")
				continue
			}
			movements = append(movements, Models.StockMovement{
				ProductID:     item.ProductID,
				Quantity:      -item.Quantity,
				ReferenceType: Models.ReferenceInvoice,
				ReferenceID:   invoice.ID,
				Notes:         fmt.Sprintf("Sold %d units in Invoice %s", item.Quantity, invoice.InvoiceNumber),
			})
		}
		return RecordMovements(tx, movements)
	})
}

// Delete removes the invoice, its items and its stock movements.
func (s *InvoiceService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice Models.Invoice
		if err := tx.First(&invoice, id).Error; err != nil {
			return lookup(err, "Invoice")
		}
		removed, err := DeleteMovementsFor(tx, Models.ReferenceInvoice, invoice.ID)
		if err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&Models.InvoiceItem{}).Error; err != nil {
			return fmt.Errorf("delete invoice items: %w", err)
		}
		if err := tx.Delete(&invoice).Error; err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		s.log.WithFields(logrus.Fields{
			"module":        "Services",
			"invoiceNumber": invoice.InvoiceNumber,
			"movements":     removed,
		}).Info("invoice deleted")
		return nil
	})
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// existingProducts reports which of ids still name a product.
func existingProducts(tx *gorm.DB, ids []uint) (map[uint]bool, error) {
	known := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return known, nil
	}

	var found []uint
	if err := tx.Model(&Models.Product{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, fmt.Errorf("look up products: %w", err)
	}
	for _, id := range found {
		known[id] = true
	}
	return known, nil
}
