package model

// Tables and operations carried on the change feed.
const (
	TableProducts  = "products"
	TablePurchases = "purchases"
	TableSales     = "sales"
	TableAuth      = "auth"

	OpInsert         = "insert"
	OpUpdate         = "update"
	OpDelete         = "delete"
	OpSignedIn       = "signed_in"
	OpSignedOut      = "signed_out"
	OpTokenRefreshed = "token_refreshed"
)

// ChangeEvent tells subscribers that rows of Table changed. Consumers must
// not rely on RowID beyond logging; they refetch what they display.
// Seq is the global feed version assigned at publish time.
type ChangeEvent struct {
	Table     string `json:"table"`
	Op        string `json:"op"`
	RowID     string `json:"row_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Seq       int64  `json:"seq"`
}
