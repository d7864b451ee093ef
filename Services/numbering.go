package Services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Stockbook/Models"
)

// fallbackInvoiceNumber is used when no earlier invoice number parses as an integer.
const fallbackInvoiceNumber = 1001

// Sequencer hands out invoice numbers. tx is the transaction the invoice is
// being written in.
type Sequencer interface {
	Next(ctx context.Context, tx *gorm.DB) (int64, error)
}

// DBSequencer keeps the counter in a NumberSequence row, locked for update
// on drivers that support it.
type DBSequencer struct {
	Name string
}

func NewDBSequencer() *DBSequencer {
	return &DBSequencer{Name: Models.InvoiceSequence}
}

func (s *DBSequencer) Next(ctx context.Context, tx *gorm.DB) (int64, error) {
	tx = tx.WithContext(ctx)

	var seq Models.NumberSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", s.Name).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seed, err := seedInvoiceNumber(tx)
		if err != nil {
			return 0, err
		}
		seq = Models.NumberSequence{Name: s.Name, Value: seed - 1}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
			return 0, fmt.Errorf("create %s sequence: %w", s.Name, err)
		}
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", s.Name).First(&seq).Error
		if err != nil {
			return 0, fmt.Errorf("read %s sequence: %w", s.Name, err)
		}
	} else if err != nil {
		return 0, fmt.Errorf("read %s sequence: %w", s.Name, err)
	}

	next := seq.Value + 1
	for {
		taken, err := invoiceNumberTaken(tx, next)
		if err != nil {
			return 0, err
		}
		if !taken {
			break
		}
		next++
	}

	if err := tx.Model(&Models.NumberSequence{}).Where("name = ?", s.Name).Update("value", next).Error; err != nil {
		return 0, fmt.Errorf("advance %s sequence: %w", s.Name, err)
	}
	return next, nil
}

// RedisSequencer uses INCR on a single key. The key is seeded from the
// invoices table the first time it is missing.
type RedisSequencer struct {
	client *redis.Client
	key    string
}

func NewRedisSequencer(client *redis.Client) *RedisSequencer {
	return &RedisSequencer{client: client, key: "stockbook:sequence:" + Models.InvoiceSequence}
}

func (s *RedisSequencer) Next(ctx context.Context, tx *gorm.DB) (int64, error) {
	exists, err := s.client.Exists(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis exists %s: %w", s.key, err)
	}
	if exists == 0 {
		seed, err := seedInvoiceNumber(tx.WithContext(ctx))
		if err != nil {
			return 0, err
		}
		if err := s.client.SetNX(ctx, s.key, seed-1, 0).Err(); err != nil {
			return 0, fmt.Errorf("redis setnx %s: %w", s.key, err)
		}
	}

	for {
		next, err := s.client.Incr(ctx, s.key).Result()
		if err != nil {
			return 0, fmt.Errorf("redis incr %s: %w", s.key, err)
		}
		taken, err := invoiceNumberTaken(tx.WithContext(ctx), next)
		if err != nil {
			return 0, err
		}
		if !taken {
			return next, nil
		}
	}
}

// seedInvoiceNumber returns the number after the most recently created
// invoice's, or fallbackInvoiceNumber when that number is not an integer.
func seedInvoiceNumber(tx *gorm.DB) (int64, error) {
	var last Models.Invoice
	err := tx.Order("created_at DESC").Order("id DESC").Select("id", "invoice_number").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fallbackInvoiceNumber, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read last invoice: %w", err)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(last.InvoiceNumber), 10, 64)
	if err != nil {
		return fallbackInvoiceNumber, nil
	}
	return n + 1, nil
}

func invoiceNumberTaken(tx *gorm.DB, n int64) (bool, error) {
	var count int64
	err := tx.Model(&Models.Invoice{}).Where("invoice_number = ?", strconv.FormatInt(n, 10)).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check invoice number %d: %w", n, err)
	}
	return count > 0, nil
}
