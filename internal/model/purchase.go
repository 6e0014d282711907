package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase is an append-only restock record.
// ProductID becomes NULL when the product is deleted; the row itself survives.
type Purchase struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID    *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity     int             `gorm:"not null"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt    time.Time
}
