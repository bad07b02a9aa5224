package domain

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusOnHold    OrderStatus = "on-hold"
	StatusCompleted OrderStatus = "completed"
)

// ParseStatus maps a raw status value onto one of the three board buckets.
// Unknown values fall back to pending, matching the default board column.
func ParseStatus(s string) OrderStatus {
	switch OrderStatus(s) {
	case StatusPending, StatusOnHold, StatusCompleted:
		return OrderStatus(s)
	default:
		return StatusPending
	}
}

// CatalogItem is static reference data, loaded at startup and never persisted.
type CatalogItem struct {
	Name      string
	UnitPrice int64 // smallest currency unit
}

// CartLine belongs to exactly one in-progress cart. LineTotal is computed
// once, when the line is added.
type CartLine struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal int64  `json:"total_price"`
}

// Order is the persisted entity, keyed by (identity, order id). Items and
// Total are snapshots taken at submission and never recomputed. CreatedAt is
// assigned by the store at write time.
type Order struct {
	ID        string      `json:"id"`
	Identity  string      `json:"identity"`
	Items     []CartLine  `json:"items"`
	Total     int64       `json:"total"`
	CreatedAt time.Time   `json:"created_at"`
	Status    OrderStatus `json:"status"`
}

// Malformed reports a record missing its items, e.g. a partially deleted or
// hand-edited store entry. The board skips and logs these.
func (o Order) Malformed() bool { return len(o.Items) == 0 }
