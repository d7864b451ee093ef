package Services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"Stockbook/Models"
)

// Ledger derives stock from StockMovement rows. Nothing else stores a quantity.
type Ledger struct {
	db        *gorm.DB
	log       *logrus.Logger
	validator *Validator
}

func NewLedger(db *gorm.DB, log *logrus.Logger, v *Validator) *Ledger {
	return &Ledger{db: db, log: log, validator: v}
}

// CurrentStock is the sum of the product's movements, 0 when there are none.
func (l *Ledger) CurrentStock(ctx context.Context, productID uint) (int64, error) {
	var total int64
	err := l.db.WithContext(ctx).
		Model(&Models.StockMovement{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum movements for product %d: %w", productID, err)
	}
	return total, nil
}

// StockLevels sums movements per product in one query. A nil productIDs
// covers every product; products without movements are absent from the map.
func (l *Ledger) StockLevels(ctx context.Context, productIDs []uint) (map[uint]int64, error) {
	return stockLevels(l.db.WithContext(ctx), productIDs)
}

type stockLevelRow struct {
	ProductID uint
	Quantity  int64
}

func stockLevels(db *gorm.DB, productIDs []uint) (map[uint]int64, error) {
	var rows []stockLevelRow
	q := db.Model(&Models.StockMovement{}).
		Select("product_id, COALESCE(SUM(quantity), 0) AS quantity").
		Group("product_id")
	if productIDs != nil {
		if len(productIDs) == 0 {
			return map[uint]int64{}, nil
		}
		q = q.Where("product_id IN ?", productIDs)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("aggregate stock levels: %w", err)
	}

	levels := make(map[uint]int64, len(rows))
	for _, row := range rows {
		levels[row.ProductID] = row.Quantity
	}
	return levels, nil
}

// RecordMovements appends ledger rows in one batch on tx.
func RecordMovements(tx *gorm.DB, movements []Models.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	if err := tx.Create(&movements).Error; err != nil {
		return fmt.Errorf("append %d stock movements: %w", len(movements), err)
	}
	return nil
}

// RecordMovement appends a single ledger row on tx.
func RecordMovement(tx *gorm.DB, productID uint, quantity int64, refType Models.ReferenceType, refID uint, notes string) (*Models.StockMovement, error) {
	movement := &Models.StockMovement{
		ProductID:     productID,
		Quantity:      quantity,
		ReferenceType: refType,
		ReferenceID:   refID,
		Notes:         notes,
	}
	if err := tx.Create(movement).Error; err != nil {
		return nil, fmt.Errorf("append stock movement: %w", err)
	}
	return movement, nil
}

// DeleteMovementsFor removes the movements caused by one invoice, purchase or adjustment.
func DeleteMovementsFor(tx *gorm.DB, refType Models.ReferenceType, refID uint) (int64, error) {
	result := tx.Where("reference_type = ? AND reference_id = ?", refType, refID).
		Delete(&Models.StockMovement{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete %s %d movements: %w", refType, refID, result.Error)
	}
	return result.RowsAffected, nil
}

type StockFilter struct {
	LowStock bool
	Category string
}

// Stock lists products with their derived quantity, ordered by name.
func (l *Ledger) Stock(ctx context.Context, filter StockFilter) ([]Models.ProductWithStock, error) {
	db := l.db.WithContext(ctx)

	var products []Models.Product
	q := db.Order("name ASC")
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	ids := make([]uint, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	levels, err := stockLevels(db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]Models.ProductWithStock, 0, len(products))
	for _, p := range products {
		qty := levels[p.ID]
		if filter.LowStock && !IsLowStock(qty) {
			continue
		}
		out = append(out, Models.ProductWithStock{Product: p, StockRemaining: qty})
	}
	return out, nil
}

// IsLowStock reports whether qty is in (0, LowStockThreshold].
func IsLowStock(qty int64) bool {
	return qty > 0 && qty <= Models.LowStockThreshold
}

type MovementFilter struct {
	ProductID *uint
	Type      Models.ReferenceType
	Range     DateRange
}

// Movements returns ledger rows newest first with the product joined.
func (l *Ledger) Movements(ctx context.Context, filter MovementFilter) ([]Models.StockMovement, error) {
	q := l.db.WithContext(ctx).Preload("Product")
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Type != "" {
		q = q.Where("reference_type = ?", filter.Type)
	}
	q = filter.Range.apply(q, "created_at")

	var movements []Models.StockMovement
	if err := q.Order("created_at DESC").Order("id DESC").Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return movements, nil
}

// Adjust records a manual correction and its movement in one transaction.
func (l *Ledger) Adjust(ctx context.Context, input Models.AdjustmentInput, userID *uint) (*Models.StockAdjustment, error) {
	if err := l.validator.Struct(input); err != nil {
		return nil, err
	}

	var adjustment Models.StockAdjustment
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product Models.Product
		if err := tx.First(&product, *input.Product).Error; err != nil {
			return lookup(err, "Product")
		}

		adjustment = Models.StockAdjustment{
			Base:      Models.Base{CreatedBy: userID},
			ProductID: product.ID,
			Quantity:  input.Quantity,
			Reason:    input.Reason,
		}
		if err := tx.Create(&adjustment).Error; err != nil {
			return fmt.Errorf("insert adjustment: %w", err)
		}

		notes := fmt.Sprintf("Manual adjustment of %d units", input.Quantity)
		if input.Reason != "" {
			notes += ": " + input.Reason
		}
		_, err := RecordMovement(tx, product.ID, input.Quantity, Models.ReferenceAdjustment, adjustment.ID, notes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &adjustment, nil
}

// DeleteAdjustment removes an adjustment and its movement.
func (l *Ledger) DeleteAdjustment(ctx context.Context, id uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var adjustment Models.StockAdjustment
		if err := tx.First(&adjustment, id).Error; err != nil {
			return lookup(err, "Adjustment")
		}
		if _, err := DeleteMovementsFor(tx, Models.ReferenceAdjustment, adjustment.ID); err != nil {
			return err
		}
		return tx.Delete(&adjustment).Error
	})
}
