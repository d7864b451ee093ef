package Services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"Stockbook/Models"
)

type testEnv struct {
	db        *gorm.DB
	log       *logrus.Logger
	validator *Validator
	ledger    *Ledger
	invoices  *InvoiceService
	purchases *PurchaseService
	credits   *CreditService
	reports   *ReportService
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), Models.GormConfig(quietLogger()))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Models.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	log := quietLogger()
	v := NewValidator()
	return &testEnv{
		db:        db,
		log:       log,
		validator: v,
		ledger:    NewLedger(db, log, v),
		invoices:  NewInvoiceService(db, log, v, NewDBSequencer()),
		purchases: NewPurchaseService(db, log, v),
		credits:   NewCreditService(db, log, v),
		reports:   NewReportService(db, log),
	}
}

func (e *testEnv) product(t *testing.T, name, category string) Models.Product {
	t.Helper()
	p := Models.Product{Name: name, Category: category, Cost: 5}
	require.NoError(t, e.db.Create(&p).Error)
	return p
}

func (e *testEnv) customer(t *testing.T, name string) Models.Customer {
	t.Helper()
	c := Models.Customer{Party: Models.Party{Name: name, Phone: "555-0100", PaymentTerms: 30}}
	require.NoError(t, e.db.Create(&c).Error)
	return c
}

func (e *testEnv) vendor(t *testing.T, name string) Models.Vendor {
	t.Helper()
	v := Models.Vendor{Party: Models.Party{Name: name, PaymentTerms: 30}}
	require.NoError(t, e.db.Create(&v).Error)
	return v
}

func (e *testEnv) receive(t *testing.T, vendorID, productID uint, qty int64) *Models.Purchase {
	t.Helper()
	cost := 5.0
	p, err := e.purchases.Create(ctx(), Models.PurchaseInput{
		Vendor: &vendorID,
		Items:  []Models.PurchaseItemInput{{Product: &productID, Quantity: &qty, Cost: &cost}},
	}, nil)
	require.NoError(t, err)
	return p
}

func (e *testEnv) movementCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&Models.StockMovement{}).Count(&n).Error)
	return n
}

func ptr[T any](v T) *T { return &v }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ctx() context.Context { return context.Background() }
