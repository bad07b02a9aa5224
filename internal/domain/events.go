package domain

import "time"

const (
	ChangeOrderCreated = "order.created"
	ChangeOrderStatus  = "order.status"
	ChangeOrderDeleted = "order.deleted"
)

// ChangeEvent is published to the fanout exchange after every successful
// store mutation. Subscribers treat it as a hint to re-read the full tree;
// the payload carries no order data of its own.
type ChangeEvent struct {
	Kind       string    `json:"kind"`
	Identity   string    `json:"identity"`
	OrderID    string    `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
