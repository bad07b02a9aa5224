// Package board is the admin side: a live, filterable, three-way-partitioned
// view over every identity's orders. It consumes the store subscription as a
// stream of full snapshots and replaces its working set wholesale on each
// event.
package board

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"

	"storefront-system/internal/common/logger"
	"storefront-system/internal/domain"
	"storefront-system/internal/metrics"
	"storefront-system/internal/store"
)

// SubscriptionNotice is the persistent message shown when the live feed is
// lost.
const SubscriptionNotice = "Failed to load orders. Please refresh."

// View is one rendering of the board: every filtered order routed to exactly
// one bucket, newest first within each.
type View struct {
	Pending   []domain.Order `json:"pending"`
	OnHold    []domain.Order `json:"on_hold"`
	Completed []domain.Order `json:"completed"`
	// Empty marks the explicit "no orders" state of all three buckets.
	Empty bool `json:"empty"`
}

type Board struct {
	store store.Store
	met   *metrics.Board
	lg    *logger.Logger

	mu     sync.RWMutex
	orders []domain.Order
	notice string
}

func New(st store.Store, met *metrics.Board) *Board {
	return &Board{store: st, met: met, lg: logger.New("order-board")}
}

// Run consumes the store subscription until the context ends or the feed
// closes. Feed errors set a persistent notice; they never crash the view.
func (b *Board) Run(ctx context.Context) error {
	sub, err := b.store.Subscribe(ctx)
	if err != nil {
		b.setNotice(SubscriptionNotice)
		b.lg.Error("subscribe_failed", err, nil)
		return err
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Errs:
			b.setNotice(SubscriptionNotice)
			b.lg.Error("subscription_error", err, nil)
		case tree, ok := <-sub.Updates:
			if !ok {
				// The feed parks its terminal error before closing the
				// update channel; when the select lands on the close first,
				// the error is still waiting.
				select {
				case err := <-sub.Errs:
					b.setNotice(SubscriptionNotice)
					b.lg.Error("subscription_error", err, nil)
				default:
				}
				return nil
			}
			b.Replace(tree)
		}
	}
}

// Replace flattens the tree into the new working set, dropping the previous
// snapshot entirely. Malformed records (no items) are skipped and logged
// rather than failing the refresh.
func (b *Board) Replace(tree store.Tree) {
	all := tree.Orders()
	kept := all[:0]
	for _, o := range all {
		if o.Malformed() {
			b.met.MalformedOrders.Inc()
			b.lg.Warn("malformed_order_skipped", nil,
				map[string]any{"path": store.OrderPath(o.Identity, o.ID)})
			continue
		}
		kept = append(kept, o)
	}

	b.mu.Lock()
	b.orders = kept
	b.notice = ""
	b.mu.Unlock()

	b.met.Refreshes.Inc()
}

func (b *Board) setNotice(msg string) {
	b.mu.Lock()
	b.notice = msg
	b.mu.Unlock()
}

// Notice returns the persistent subscription-failure message, if any.
func (b *Board) Notice() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.notice
}

// View filters by case-insensitive substring match on identity, sorts by
// creation time descending and partitions by status. Unknown statuses land
// in pending.
func (b *Board) View(search string) View {
	b.mu.RLock()
	orders := make([]domain.Order, len(b.orders))
	copy(orders, b.orders)
	b.mu.RUnlock()

	term := strings.ToLower(search)
	filtered := lo.Filter(orders, func(o domain.Order, _ int) bool {
		return strings.Contains(strings.ToLower(o.Identity), term)
	})

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	if len(filtered) == 0 {
		return View{Empty: true}
	}

	buckets := lo.GroupBy(filtered, func(o domain.Order) domain.OrderStatus {
		return domain.ParseStatus(string(o.Status))
	})
	return View{
		Pending:   buckets[domain.StatusPending],
		OnHold:    buckets[domain.StatusOnHold],
		Completed: buckets[domain.StatusCompleted],
	}
}

// SetStatus patches only the status field of the target order. Best effort:
// failure is logged, never surfaced to the admin.
func (b *Board) SetStatus(ctx context.Context, identity, orderID string, status domain.OrderStatus) {
	if err := b.store.PatchStatus(ctx, identity, orderID, status); err != nil {
		b.lg.Error("status_update_failed", err, map[string]any{
			"path": store.OrderPath(identity, orderID), "status": string(status),
		})
	}
}

// Delete removes the order, but only after an explicit confirmation. Store
// failure is logged, never surfaced.
func (b *Board) Delete(ctx context.Context, identity, orderID string, confirmed bool) error {
	if !confirmed {
		return domain.ErrNotConfirmed
	}
	if err := b.store.RemoveOrder(ctx, identity, orderID); err != nil {
		b.lg.Error("deletion_failed", err, map[string]any{
			"path": store.OrderPath(identity, orderID),
		})
	}
	return nil
}
