// Package store is the system's single rendezvous point: the storefront
// writes order records under identities/{identity}/orders/{orderId}, the
// board subscribes to the whole tree. Implementations deliver the full tree
// on every change, not incremental patches.
package store

import (
	"context"
	"errors"
	"path"
	"sync"

	"storefront-system/internal/domain"
)

// ErrNotFound reports a patch or delete against a record that is not in the
// store.
var ErrNotFound = errors.New("order not found")

// Tree is a full snapshot of the order tree: identity → order id → order.
type Tree map[string]map[string]domain.Order

// OrderPath renders the canonical key path of an order record.
func OrderPath(identity, orderID string) string {
	return path.Join("identities", identity, "orders", orderID)
}

// Orders flattens the tree into one list, each order tagged with its
// identity and id.
func (t Tree) Orders() []domain.Order {
	var out []domain.Order
	for identity, orders := range t {
		for id, o := range orders {
			o.Identity = identity
			o.ID = id
			out = append(out, o)
		}
	}
	return out
}

func (t Tree) clone() Tree {
	out := make(Tree, len(t))
	for identity, orders := range t {
		m := make(map[string]domain.Order, len(orders))
		for id, o := range orders {
			items := make([]domain.CartLine, len(o.Items))
			copy(items, o.Items)
			o.Items = items
			m[id] = o
		}
		out[identity] = m
	}
	return out
}

// Store is the contract of the shared hierarchical order store.
//
// Writes, patches and deletes are asynchronous from the caller's point of
// view only in that the caller never holds any store lock while waiting; a
// hung backend simply never returns and the caller's state is unchanged.
type Store interface {
	// NewOrderKey returns a unique child key without writing anything.
	NewOrderKey() string

	// PutOrder upserts the record at the order's path. CreatedAt is assigned
	// by the store, never by the caller.
	PutOrder(ctx context.Context, o domain.Order) error

	// PatchStatus merges only the status field of the target record.
	PatchStatus(ctx context.Context, identity, orderID string, status domain.OrderStatus) error

	// RemoveOrder deletes the record entirely.
	RemoveOrder(ctx context.Context, identity, orderID string) error

	// Snapshot reads the full tree once.
	Snapshot(ctx context.Context) (Tree, error)

	// Subscribe opens a long-lived subscription that delivers the current
	// tree immediately and again after every change. Terminal failures
	// arrive on the subscription's error channel.
	Subscribe(ctx context.Context) (*Subscription, error)
}

// Subscription is a cancellable stream of full-tree snapshots.
type Subscription struct {
	Updates <-chan Tree
	Errs    <-chan error

	once sync.Once
	stop func()
}

func newSubscription(updates <-chan Tree, errs <-chan error, stop func()) *Subscription {
	return &Subscription{Updates: updates, Errs: errs, stop: stop}
}

// Close tears the subscription down; Updates is closed afterwards. Safe to
// call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.stop != nil {
			s.stop()
		}
	})
}
