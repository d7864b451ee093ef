package Models

import (
	"io"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), GormConfig(log))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestDialectorSelection(t *testing.T) {
	cases := map[string]string{
		"":                                       "sqlite",
		"stockbook.db":                           "sqlite",
		"sqlite://data/stock.db":                 "sqlite",
		"postgres://u:p@localhost:5432/stock":    "postgres",
		"postgresql://u:p@localhost/stock":       "postgres",
		"host=localhost user=u dbname=stock":     "postgres",
		"mysql://u:p@db:3306/stock":              "mysql",
		"u:p@tcp(db:3306)/stock?charset=utf8mb4": "mysql",
		"u:p@unix(/var/run/mysqld.sock)/stock":   "mysql",
	}
	for dsn, want := range cases {
		d, err := Dialector(dsn)
		require.NoError(t, err, dsn)
		assert.Equal(t, want, d.Name(), dsn)
	}
}

func TestSQLiteDSNOptions(t *testing.T) {
	assert.Equal(t, "stockbook.db?_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL", sqliteDSN("stockbook.db"))
	assert.Equal(t, "file:x?mode=memory&cache=shared&_txlock=immediate&_busy_timeout=5000",
		sqliteDSN("file:x?mode=memory&cache=shared"))
	assert.Equal(t, "data.db?_busy_timeout=100&_txlock=immediate&_journal_mode=WAL",
		sqliteDSN("data.db?_busy_timeout=100"))
}

func TestMySQLURLToDSN(t *testing.T) {
	dsn, err := mysqlURLToDSN("mysql://app:secret@db:3306/stock?charset=utf8mb4")
	require.NoError(t, err)

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.User)
	assert.Equal(t, "secret", cfg.Passwd)
	assert.Equal(t, "db:3306", cfg.Addr)
	assert.Equal(t, "stock", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "utf8mb4", cfg.Params["charset"])

	_, err = mysqlURLToDSN("mysql:///stock")
	assert.Error(t, err)
}

func TestStockMovementIsAppendOnly(t *testing.T) {
	db := setupTestDB(t)

	movement := StockMovement{ProductID: 1, Quantity: 5, ReferenceType: ReferenceAdjustment, ReferenceID: 1}
	require.NoError(t, db.Create(&movement).Error)

	movement.Quantity = 50
	err := db.Save(&movement).Error
	assert.ErrorIs(t, err, ErrMovementImmutable)

	var stored StockMovement
	require.NoError(t, db.First(&stored, movement.ID).Error)
	assert.Equal(t, int64(5), stored.Quantity)
}

func TestCreditBeforeSaveRecomputes(t *testing.T) {
	db := setupTestDB(t)

	credit := Credit{InvoiceID: 7, TotalAmount: 100, PaidAmount: 25}
	require.NoError(t, db.Create(&credit).Error)

	var stored Credit
	require.NoError(t, db.First(&stored, credit.ID).Error)
	assert.Equal(t, 75.0, stored.DueAmount)
	assert.Equal(t, CreditPartial, stored.Status)
}

func TestInvoiceNumberIsUnique(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&Invoice{InvoiceNumber: "1001", Status: InvoiceDraft}).Error)
	err := db.Create(&Invoice{InvoiceNumber: "1001", Status: InvoiceDraft}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
