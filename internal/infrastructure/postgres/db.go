// Package postgres implements the repositories on GORM over PostgreSQL.
// All conditional semantics the application relies on (conditional payment
// flips, atomic coupon increments, dedup on unique indexes) are expressed as
// single SQL statements so they hold across processes, not just goroutines.
package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domcoupon "github.com/obrador/storefront/internal/domain/coupon"
	dominv "github.com/obrador/storefront/internal/domain/inventory"
	dominvoice "github.com/obrador/storefront/internal/domain/invoice"
	domorder "github.com/obrador/storefront/internal/domain/order"
)

// Open connects to PostgreSQL and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := db.AutoMigrate(
		&domorder.Order{},
		&domorder.Item{},
		&domcoupon.Coupon{},
		&dominvoice.Invoice{},
		&dominvoice.Item{},
		&dominv.Movement{},
		&invoiceSequence{},
	); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return db, nil
}
