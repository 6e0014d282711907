package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item sold at the stand.
// Stock is kept non-negative by a CHECK constraint and by the conditional
// decrement in the sale path.
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string          `gorm:"index;not null"`
	BuyPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SellPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock     int             `gorm:"not null;default:0"`
	CreatedAt time.Time
}

// UnitProfit is the margin realised by selling a single unit at current prices.
func (p *Product) UnitProfit() decimal.Decimal {
	return p.SellPrice.Sub(p.BuyPrice)
}
