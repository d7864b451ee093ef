package Services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"Stockbook/Models"
)

type PurchaseService struct {
	db        *gorm.DB
	log       *logrus.Logger
	validator *Validator
	now       func() time.Time
}

func NewPurchaseService(db *gorm.DB, log *logrus.Logger, v *Validator) *PurchaseService {
	return &PurchaseService{db: db, log: log, validator: v, now: time.Now}
}

type PurchaseFilter struct {
	Status   Models.PurchaseStatus
	VendorID *uint
	Range    DateRange
}

func (s *PurchaseService) List(ctx context.Context, filter PurchaseFilter) ([]Models.Purchase, error) {
	q := s.db.WithContext(ctx).
		Preload("Vendor").
		Preload("Items", orderItems).
		Preload("Items.Product")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.VendorID != nil {
		q = q.Where("vendor_id = ?", *filter.VendorID)
	}
	q = filter.Range.apply(q, "date")

	var purchases []Models.Purchase
	if err := q.Order("date DESC").Order("id DESC").Find(&purchases).Error; err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return purchases, nil
}

func (s *PurchaseService) Get(ctx context.Context, id uint) (*Models.Purchase, error) {
	var purchase Models.Purchase
	err := s.db.WithContext(ctx).
		Preload("Vendor").
		Preload("Items", orderItems).
		Preload("Items.Product").
		First(&purchase, id).Error
	if err != nil {
		return nil, lookup(err, "Purchase")
	}
	return &purchase, nil
}

// Create records a purchase and one positive stock movement per item. Any
// invalid item or unknown product rejects the whole request before anything
// is written.
func (s *PurchaseService) Create(ctx context.Context, input Models.PurchaseInput, userID *uint) (*Models.Purchase, error) {
	if err := checkPurchaseInput(input); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	date, err := parseDateField("date", input.Date, s.now())
	if err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = Models.PurchaseOrdered
	}
	explicit := strings.TrimSpace(input.PONumber)

	for attempt := 1; ; attempt++ {
		poNumber := explicit
		if poNumber == "" {
			poNumber = GeneratePONumber(s.now())
		}
		purchase := Models.Purchase{
			Base:     Models.Base{CreatedBy: userID},
			PONumber: poNumber,
			VendorID: *input.Vendor,
			Date:     date,
			Status:   status,
			Notes:    input.Notes,
		}
		for _, item := range input.Items {
			purchase.Items = append(purchase.Items, Models.PurchaseItem{
				ProductID: *item.Product,
				Quantity:  *item.Quantity,
				Cost:      *item.Cost,
			})
		}

		err := s.insert(ctx, &purchase)
		if err == nil {
			return s.Get(ctx, purchase.ID)
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		if explicit != "" || attempt >= maxNumberAttempts {
			return nil, &ConflictError{Message: "A purchase order with this number already exists"}
		}
	}
}

func (s *PurchaseService) insert(ctx context.Context, purchase *Models.Purchase) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vendor Models.Vendor
		if err := tx.Select("id").First(&vendor, purchase.VendorID).Error; err != nil {
			return lookup(err, "Vendor")
		}

		ids := make([]uint, 0, len(purchase.Items))
		for _, item := range purchase.Items {
			ids = append(ids, item.ProductID)
		}
		known, err := existingProducts(tx, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if !known[id] {
				return notFound("Product")
			}
		}

		if err := tx.Create(purchase).Error; err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}

		movements := make([]Models.StockMovement, 0, len(purchase.Items))
		for _, item := range purchase.Items {
			movements = append(movements, Models.StockMovement{
				ProductID:     item.ProductID,
				Quantity:      item.Quantity,
				ReferenceType: Models.ReferencePurchase,
				ReferenceID:   purchase.ID,
				Notes:         "Stock added from purchase order " + purchase.PONumber,
			})
		}
		return RecordMovements(tx, movements)
	})
}

// Delete removes the purchase, its items and its stock movements.
func (s *PurchaseService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var purchase Models.Purchase
		if err := tx.First(&purchase, id).Error; err != nil {
			return lookup(err, "Purchase")
		}
		removed, err := DeleteMovementsFor(tx, Models.ReferencePurchase, purchase.ID)
		if err != nil {
			return err
		}
		if err := tx.Where("purchase_id = ?", purchase.ID).Delete(&Models.PurchaseItem{}).Error; err != nil {
			return fmt.Errorf("delete purchase items: %w", err)
		}
		if err := tx.Delete(&purchase).Error; err != nil {
			return fmt.Errorf("delete purchase: %w", err)
		}
		s.log.WithFields(logrus.Fields{
			"module":    "Services",
			"poNumber":  purchase.PONumber,
			"movements": removed,
		}).Info("purchase deleted")
		return nil
	})
}

func checkPurchaseInput(input Models.PurchaseInput) error {
	if input.Vendor == nil || *input.Vendor == 0 {
		return invalidField("vendor", "Vendor is required")
	}
	if len(input.Items) == 0 {
		return invalidField("items", "At least one purchase item is required")
	}
	for i, item := range input.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item.Product == nil || *item.Product == 0 || item.Quantity == nil || item.Cost == nil {
			return invalidField(field, "Each item must have product, quantity, and cost")
		}
		if *item.Quantity <= 0 {
			return invalidField(field+".quantity", "Quantity must be greater than 0")
		}
		if *item.Cost < 0 {
			return invalidField(field+".cost", "Cost cannot be negative")
		}
	}
	return nil
}

// GeneratePONumber returns PO-<unix millis>-<0..999>.
func GeneratePONumber(now time.Time) string {
	return fmt.Sprintf("PO-%d-%d", now.UnixMilli(), rand.IntN(1000))
}
