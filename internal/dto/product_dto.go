package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateProductRequest carries the admin form exactly as typed; parsing and
// validation happen in the catalog service.
type CreateProductRequest struct {
	Name         Input `json:"name"          form:"name"`
	BuyPrice     Input `json:"buy_price"     form:"buy_price"`
	SellPrice    Input `json:"sell_price"    form:"sell_price"`
	InitialStock Input `json:"initial_stock" form:"initial_stock"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	BuyPrice  decimal.Decimal `json:"buy_price"`
	SellPrice decimal.Decimal `json:"sell_price"`
	Stock     int             `json:"stock"`
	CreatedAt string          `json:"created_at"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int               `json:"total"`
}
