package Services

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"Stockbook/Models"
)

type DiscrepancyKind string

const (
	// MissingMovement: a document line has no ledger row.
	MissingMovement DiscrepancyKind = "missing"
	// QuantityMismatch: the ledger rows do not add up to the document lines.
	QuantityMismatch DiscrepancyKind = "mismatch"
	// UnexpectedMovement: the document exists but has no line for the product.
	UnexpectedMovement DiscrepancyKind = "unexpected"
	// OrphanMovement: the referenced document no longer exists.
	OrphanMovement DiscrepancyKind = "orphan"
)

type Discrepancy struct {
	Kind          DiscrepancyKind      `json:"kind"`
	ReferenceType Models.ReferenceType `json:"referenceType"`
	ReferenceID   uint                 `json:"referenceId"`
	ProductID     uint                 `json:"productId"`
	Expected      int64                `json:"expected"`
	Recorded      int64                `json:"recorded"`
}

type AuditReport struct {
	Invoices      int           `json:"invoices"`
	Purchases     int           `json:"purchases"`
	Adjustments   int           `json:"adjustments"`
	Movements     int64         `json:"movements"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}

func (r *AuditReport) Consistent() bool {
	return len(r.Discrepancies) == 0
}

type ledgerKey struct {
	Type      Models.ReferenceType
	RefID     uint
	ProductID uint
}

type ledgerRow struct {
	ReferenceType Models.ReferenceType
	RefID         uint
	ProductID     uint
	Quantity      int64
}

// AuditLedger compares every invoice, purchase and adjustment with the
// stock movements that reference it.
func AuditLedger(ctx context.Context, db *gorm.DB, log *logrus.Logger) (*AuditReport, error) {
	db = db.WithContext(ctx)
	report := &AuditReport{Discrepancies: []Discrepancy{}}

	var recordedRows []ledgerRow
	err := db.Model(&Models.StockMovement{}).
		Select("reference_type, reference_id AS ref_id, product_id, SUM(quantity) AS quantity").
		Group("reference_type, reference_id, product_id").
		Scan(&recordedRows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate movements: %w", err)
	}
	if err := db.Model(&Models.StockMovement{}).Count(&report.Movements).Error; err != nil {
		return nil, fmt.Errorf("count movements: %w", err)
	}
	recorded := make(map[ledgerKey]int64, len(recordedRows))
	for _, row := range recordedRows {
		recorded[ledgerKey{row.ReferenceType, row.RefID, row.ProductID}] = row.Quantity
	}

	expected := make(map[ledgerKey]int64)
	documents := map[Models.ReferenceType]map[uint]bool{
		Models.ReferenceInvoice:    {},
		Models.ReferencePurchase:   {},
		Models.ReferenceAdjustment: {},
	}

	var invoiceIDs, purchaseIDs, adjustmentIDs []uint
	if err := db.Model(&Models.Invoice{}).Pluck("id", &invoiceIDs).Error; err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	if err := db.Model(&Models.Purchase{}).Pluck("id", &purchaseIDs).Error; err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	if err := db.Model(&Models.StockAdjustment{}).Pluck("id", &adjustmentIDs).Error; err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	for _, id := range invoiceIDs {
		documents[Models.ReferenceInvoice][id] = true
	}
	for _, id := range purchaseIDs {
		documents[Models.ReferencePurchase][id] = true
	}
	for _, id := range adjustmentIDs {
		documents[Models.ReferenceAdjustment][id] = true
	}
	report.Invoices = len(invoiceIDs)
	report.Purchases = len(purchaseIDs)
	report.Adjustments = len(adjustmentIDs)

	var productIDs []uint
	if err := db.Model(&Models.Product{}).Pluck("id", &productIDs).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make(map[uint]bool, len(productIDs))
	for _, id := range productIDs {
		products[id] = true
	}

	lines := []struct {
		refType Models.ReferenceType
		query   *gorm.DB
		sign    int64
	}{
		{Models.ReferenceInvoice, db.Model(&Models.InvoiceItem{}).
			Select("invoice_id AS ref_id, product_id, SUM(quantity) AS quantity").
			Group("invoice_id, product_id"), -1},
		{Models.ReferencePurchase, db.Model(&Models.PurchaseItem{}).
			Select("purchase_id AS ref_id, product_id, SUM(quantity) AS quantity").
			Group("purchase_id, product_id"), 1},
		{Models.ReferenceAdjustment, db.Model(&Models.StockAdjustment{}).
			Select("id AS ref_id, product_id, quantity"), 1},
	}
	for _, l := range lines {
		var rows []ledgerRow
		if err := l.query.Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("aggregate %s lines: %w", l.refType, err)
		}
		for _, row := range rows {
			expected[ledgerKey{l.refType, row.RefID, row.ProductID}] += l.sign * row.Quantity
		}
	}

	for key, want := range expected {
		got, ok := recorded[key]
		switch {
		case !ok && key.Type == Models.ReferenceInvoice && !products[key.ProductID]:
			// Lines for products that were missing at issuance never move stock.
		case !ok:
			report.add(MissingMovement, key, want, 0)
		case got != want:
			report.add(QuantityMismatch, key, want, got)
		}
	}
	for key, got := range recorded {
		if _, ok := expected[key]; ok {
			continue
		}
		if documents[key.Type][key.RefID] {
			report.add(UnexpectedMovement, key, 0, got)
		} else {
			report.add(OrphanMovement, key, 0, got)
		}
	}

	slices.SortFunc(report.Discrepancies, func(a, b Discrepancy) int {
		return cmp.Or(
			cmp.Compare(a.ReferenceType, b.ReferenceType),
			cmp.Compare(a.ReferenceID, b.ReferenceID),
			cmp.Compare(a.ProductID, b.ProductID),
		)
	})

	entry := log.WithFields(logrus.Fields{
		"module":        "Services",
		"invoices":      report.Invoices,
		"purchases":     report.Purchases,
		"adjustments":   report.Adjustments,
		"movements":     report.Movements,
		"discrepancies": len(report.Discrepancies),
	})
	if report.Consistent() {
		entry.Info("ledger audit passed")
	} else {
		entry.Warn("ledger audit found discrepancies")
	}
	return report, nil
}

func (r *AuditReport) add(kind DiscrepancyKind, key ledgerKey, expected, recorded int64) {
	r.Discrepancies = append(r.Discrepancies, Discrepancy{
		Kind:          kind,
		ReferenceType: key.Type,
		ReferenceID:   key.RefID,
		ProductID:     key.ProductID,
		Expected:      expected,
		Recorded:      recorded,
	})
}
