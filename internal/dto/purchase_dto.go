package dto

import "github.com/shopspring/decimal"

type RecordPurchaseRequest struct {
	ProductID    Input `json:"product_id"     form:"product_id"`
	Quantity     Input `json:"quantity"       form:"quantity"`
	PricePerUnit Input `json:"price_per_unit" form:"price_per_unit"`
}

type PurchaseResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	NewStock     int             `json:"new_stock"`
	CreatedAt    string          `json:"created_at"`
}
