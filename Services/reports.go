package Services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"gorm.io/gorm"

	"Stockbook/Models"
)

// InvalidInvoiceNumber marks invoices left behind by a broken numbering run.
const InvalidInvoiceNumber = "NaN"

const DefaultTopProductsLimit = 5

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

func ParsePeriod(value string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(value))); p {
	case "":
		return PeriodMonth, nil
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	default:
		return "", invalidField("period", "period must be one of [day week month year]")
	}
}

type ReportService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewReportService(db *gorm.DB, log *logrus.Logger) *ReportService {
	return &ReportService{db: db, log: log}
}

type SalesFilter struct {
	Range      DateRange
	CustomerID *uint
	ProductID  *uint
}

func (f SalesFilter) apply(q *gorm.DB, table string) *gorm.DB {
	q = f.Range.apply(q, table+".date")
	if f.CustomerID != nil {
		q = q.Where(table+".customer_id = ?", *f.CustomerID)
	}
	return q
}

// Sales lists sent and paid invoices.
func (s *ReportService) Sales(ctx context.Context, filter SalesFilter) ([]Models.Invoice, error) {
	q := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", orderItems).
		Preload("Items.Product").
		Where("invoices.status IN ?", []Models.InvoiceStatus{Models.InvoicePaid, Models.InvoiceSent}).
		Where("invoices.invoice_number <> ?", InvalidInvoiceNumber)
	q = filter.apply(q, "invoices")
	if filter.ProductID != nil {
		q = q.Where("invoices.id IN (?)",
			s.db.Model(&Models.InvoiceItem{}).Select("invoice_id").Where("product_id = ?", *filter.ProductID))
	}

	var invoices []Models.Invoice
	if err := q.Order("invoices.date DESC").Order("invoices.id DESC").Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return invoices, nil
}

type PeriodKey struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"`
	Week  int `json:"week,omitempty"`
	Day   int `json:"day,omitempty"`
}

type SummaryGroup struct {
	Key         string    `json:"key"`
	Period      PeriodKey `json:"period"`
	TotalAmount float64   `json:"totalAmount"`
	Count       int64     `json:"count"`
}

// Summary groups invoice lines by the calendar period of their invoice date
// and sums quantity times price. Count is the number of lines, not invoices.
// Weeks are ISO weeks keyed by the calendar year of the date.
func (s *ReportService) Summary(ctx context.Context, period Period, filter SalesFilter) ([]SummaryGroup, error) {
	q := s.db.WithContext(ctx).Preload("Items")
	q = filter.apply(q, "invoices")
	if filter.ProductID != nil {
		q = q.Where("invoices.id IN (?)",
			s.db.Model(&Models.InvoiceItem{}).Select("invoice_id").Where("product_id = ?", *filter.ProductID))
	}

	var invoices []Models.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("load invoices for summary: %w", err)
	}

	type bucket struct {
		period PeriodKey
		total  decimal.Decimal
		count  int64
	}
	buckets := make(map[string]*bucket)

	for _, inv := range invoices {
		key, pk := periodKey(period, inv)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{period: pk, total: decimal.Zero}
			buckets[key] = b
		}
		for _, item := range inv.Items {
			if filter.ProductID != nil && item.ProductID != *filter.ProductID {
				continue
			}
			b.total = b.total.Add(item.Revenue())
			b.count++
		}
	}

	keys := maps.Keys(buckets)
	slices.Sort(keys)

	out := make([]SummaryGroup, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		if b.count == 0 {
			continue
		}
		out = append(out, SummaryGroup{
			Key:         key,
			Period:      b.period,
			TotalAmount: b.total.Round(2).InexactFloat64(),
			Count:       b.count,
		})
	}
	return out, nil
}

func periodKey(period Period, inv Models.Invoice) (string, PeriodKey) {
	d := inv.Date
	switch period {
	case PeriodDay:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year(), int(d.Month()), d.Day()),
			PeriodKey{Year: d.Year(), Month: int(d.Month()), Day: d.Day()}
	case PeriodWeek:
		_, week := d.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", d.Year(), week), PeriodKey{Year: d.Year(), Week: week}
	case PeriodYear:
		return fmt.Sprintf("%04d", d.Year()), PeriodKey{Year: d.Year()}
	default:
		return fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month())),
			PeriodKey{Year: d.Year(), Month: int(d.Month())}
	}
}

type TopProduct struct {
	ProductID     uint    `json:"productId"`
	ProductName   string  `json:"productName"`
	TotalQuantity int64   `json:"totalQuantity"`
	TotalRevenue  float64 `json:"totalRevenue"`
}

// TopProducts ranks products by quantity times price across invoice lines.
// Lines whose product was deleted are left out.
func (s *ReportService) TopProducts(ctx context.Context, filter SalesFilter, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = DefaultTopProductsLimit
	}

	q := s.db.WithContext(ctx).
		Table("invoice_items AS ii").
		Select("ii.product_id AS product_id, p.name AS product_name, " +
			"SUM(ii.quantity) AS total_quantity, SUM(ii.quantity * ii.price) AS total_revenue").
		Joins("JOIN invoices AS i ON i.id = ii.invoice_id").
		Joins("JOIN products AS p ON p.id = ii.product_id")
	q = filter.apply(q, "i")
	if filter.ProductID != nil {
		q = q.Where("ii.product_id = ?", *filter.ProductID)
	}

	var rows []TopProduct
	err := q.Group("ii.product_id, p.name").
		Order("total_revenue DESC").Order("ii.product_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("rank top products: %w", err)
	}
	for i := range rows {
		rows[i].TotalRevenue = decimal.NewFromFloat(rows[i].TotalRevenue).Round(2).InexactFloat64()
	}
	return rows, nil
}
