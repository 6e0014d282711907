package dto

import "github.com/shopspring/decimal"

// DashboardResponse is the snapshot shown on the main page. Version is the
// change-feed sequence observed before loading; a client holding a newer
// version can discard this snapshot.
type DashboardResponse struct {
	Products    []ProductResponse `json:"products"`
	TotalProfit decimal.Decimal   `json:"total_profit"`
	Version     int64             `json:"version"`
	IsAdmin     bool              `json:"is_admin"`
	// Stale names the parts that could not be loaded ("products",
	// "total_profit"); they are sent empty.
	Stale []string `json:"stale,omitempty"`
}
