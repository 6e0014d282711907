package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RecordSaleRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1,max=1000"`
}

// SaleFilter is bound from the query string of GET /v1/sales.
// Limits outside 1..100 fall back to 100.
type SaleFilter struct {
	Limit int `form:"limit,default=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleResponse struct {
	ID          string          `json:"id"`
	ProductID   *string         `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Profit      decimal.Decimal `json:"profit"`
	CreatedAt   string          `json:"created_at"`
}

// SaleResultResponse is returned after a sale. Clients replace their local
// stock and total with these values instead of computing them.
type SaleResultResponse struct {
	Sale        SaleResponse    `json:"sale"`
	ProductID   string          `json:"product_id"`
	NewStock    int             `json:"new_stock"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	Version     int64           `json:"version"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Limit int            `json:"limit"`
}

type TotalProfitResponse struct {
	TotalProfit decimal.Decimal `json:"total_profit"`
	Version     int64           `json:"version"`
}

// SaleExportRow is one CSV line of the sales export.
type SaleExportRow struct {
	CreatedAt   string `csv:"tidspunkt"`
	ProductName string `csv:"produkt"`
	Quantity    int    `csv:"antall"`
	Profit      string `csv:"fortjeneste"`
}
