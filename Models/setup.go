package Models

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Stockbook/config"
)

// Connect opens the database named by cfg.URL and applies the pool settings.
// The schema is migrated separately by Migrate.
func Connect(cfg config.DatabaseConfig, log *logrus.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, GormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialector.Name(), err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	log.WithField("driver", dialector.Name()).Info("database connected")
	return db, nil
}

// GormConfig routes GORM's logger through logrus. Foreign keys are not
// created so that invoice items may keep pointing at a deleted product.
func GormConfig(log *logrus.Logger) *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	}
}

func Migrate(db *gorm.DB) error {
	// 1. Records without dependencies
	if err := db.AutoMigrate(
		&User{},
		&Customer{},
		&Vendor{},
		&Product{},
		&NumberSequence{},
	); err != nil {
		return fmt.Errorf("migrate base tables: %w", err)
	}

	// 2. Documents and their lines
	if err := db.AutoMigrate(
		&Invoice{},
		&InvoiceItem{},
		&Purchase{},
		&PurchaseItem{},
		&StockAdjustment{},
	); err != nil {
		return fmt.Errorf("migrate document tables: %w", err)
	}

	// 3. Ledger and receivables
	if err := db.AutoMigrate(
		&StockMovement{},
		&Payment{},
		&Credit{},
	); err != nil {
		return fmt.Errorf("migrate ledger tables: %w", err)
	}
	return nil
}

// Dialector picks the driver from the connection string:
// postgres:// or a key=value DSN with host=, mysql:// or a go-sql-driver DSN,
// otherwise a sqlite file path (optionally prefixed with sqlite://).
func Dialector(raw string) (gorm.Dialector, error) {
	dsn := strings.TrimSpace(raw)
	lower := strings.ToLower(dsn)

	switch {
	case dsn == "":
		return sqlite.Open(sqliteDSN("stockbook.db")), nil
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"), strings.Contains(lower, "host="):
		return postgres.Open(dsn), nil
	case strings.HasPrefix(lower, "mysql://"):
		mysqlDSN, err := mysqlURLToDSN(dsn)
		if err != nil {
			return nil, err
		}
		return gormmysql.Open(mysqlDSN), nil
	case strings.Contains(dsn, "@tcp(") || strings.Contains(dsn, "@unix("):
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		return gormmysql.Open(cfg.FormatDSN()), nil
	case strings.HasPrefix(lower, "sqlite://"):
		return sqlite.Open(sqliteDSN(dsn[len("sqlite://"):])), nil
	default:
		return sqlite.Open(sqliteDSN(dsn)), nil
	}
}

// sqliteDSN fills in connection options the DSN does not already set.
// Transactions take the write lock at BEGIN and concurrent writers wait up
// to the busy timeout.
func sqliteDSN(dsn string) string {
	params := []string{"_txlock=immediate", "_busy_timeout=5000"}
	if !strings.Contains(dsn, ":memory:") && !strings.Contains(dsn, "mode=memory") {
		params = append(params, "_journal_mode=WAL")
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, param := range params {
		key := param[:strings.Index(param, "=")+1]
		if strings.Contains(dsn, key) {
			continue
		}
		dsn += sep + param
		sep = "&"
	}
	return dsn
}

func mysqlURLToDSN(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse mysql url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("parse mysql url: missing host")
	}

	cfg := mysql.NewConfig()
	cfg.User = u.User.Username()
	cfg.Passwd, _ = u.User.Password()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.ParseTime = true

	query := u.Query()
	query.Del("parseTime")
	if len(query) > 0 {
		cfg.Params = make(map[string]string, len(query))
		for key := range query {
			cfg.Params[key] = query.Get(key)
		}
	}
	return cfg.FormatDSN(), nil
}
