package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx. Callers apply the
// schema with RunMigrations.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	return db, nil
}

// RunMigrations applies the schema. Safe to run on every start. The schema
// is plain idempotent DDL; GORM AutoMigrate cannot express the CHECK
// constraints and ON DELETE rules below.
func RunMigrations(db *gorm.DB) error {
	for _, p := range schema {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("schema %q: %w", p.descr, err)
		}
	}
	return nil
}

// Purchases and sales keep their rows when a product is deleted; only the
// reference is cleared. Stock can never go negative.
var schema = []struct{ descr, sql string }{
	{"products", `
CREATE TABLE IF NOT EXISTS products (
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name        TEXT          NOT NULL,
    buy_price   NUMERIC(10,2) NOT NULL CHECK (buy_price >= 0),
    sell_price  NUMERIC(10,2) NOT NULL CHECK (sell_price >= 0),
    stock       INTEGER       NOT NULL DEFAULT 0 CHECK (stock >= 0),
    created_at  TIMESTAMPTZ   NOT NULL DEFAULT now()
)`},
	{"idx_products_name", `CREATE INDEX IF NOT EXISTS idx_products_name ON products (name)`},
	{"purchases", `
CREATE TABLE IF NOT EXISTS purchases (
    id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    product_id      UUID REFERENCES products(id) ON DELETE SET NULL,
    quantity        INTEGER       NOT NULL CHECK (quantity > 0),
    price_per_unit  NUMERIC(10,2) NOT NULL CHECK (price_per_unit >= 0),
    created_at      TIMESTAMPTZ   NOT NULL DEFAULT now()
)`},
	{"idx_purchases_product", `CREATE INDEX IF NOT EXISTS idx_purchases_product ON purchases (product_id)`},
	{"sales", `
CREATE TABLE IF NOT EXISTS sales (
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    product_id  UUID REFERENCES products(id) ON DELETE SET NULL,
    quantity    INTEGER       NOT NULL CHECK (quantity > 0),
    profit      NUMERIC(10,2) NOT NULL,
    created_at  TIMESTAMPTZ   NOT NULL DEFAULT now()
)`},
	{"idx_sales_product", `CREATE INDEX IF NOT EXISTS idx_sales_product ON sales (product_id)`},
	{"idx_sales_created_at", `CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales (created_at DESC)`},
	{"users", `
CREATE TABLE IF NOT EXISTS users (
    id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email          TEXT        NOT NULL UNIQUE,
    password_hash  TEXT        NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"idx_users_email_lower", `CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))`},
	{"admin_users", `
CREATE TABLE IF NOT EXISTS admin_users (
    user_id  UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE
)`},
}
