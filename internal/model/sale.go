package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale records a disposal of stock. Profit is a snapshot taken at sale time
// and never recomputed from later product prices.
type Sale struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity  int             `gorm:"not null"`
	Profit    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `gorm:"index"`
}

// SaleWithProduct is a Sale joined with the current name of its product.
type SaleWithProduct struct {
	Sale
	ProductName *string
}
