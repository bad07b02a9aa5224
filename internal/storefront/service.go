package storefront

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"storefront-system/internal/cart"
	"storefront-system/internal/catalog"
	"storefront-system/internal/common/logger"
	"storefront-system/internal/cooldown"
	"storefront-system/internal/domain"
	"storefront-system/internal/metrics"
	"storefront-system/internal/store"
)

// Service owns the customer side: one cart per active identity, the cooldown
// gate, and order submission into the shared store.
type Service struct {
	catalog *catalog.Catalog
	gate    *cooldown.Gate
	store   store.Store
	met     *metrics.Storefront
	lg      *logger.Logger

	mu    sync.Mutex
	carts map[string]*cart.Cart
}

func New(cat *catalog.Catalog, gate *cooldown.Gate, st store.Store, met *metrics.Storefront) *Service {
	return &Service{
		catalog: cat,
		gate:    gate,
		store:   st,
		met:     met,
		lg:      logger.New("storefront"),
		carts:   make(map[string]*cart.Cart),
	}
}

func (s *Service) Categories() []string                       { return s.catalog.Categories() }
func (s *Service) Items(category string) []domain.CatalogItem { return s.catalog.Items(category) }
func (s *Service) Price(category, item string) int64          { return s.catalog.Price(category, item) }

// normalizeIdentity strips surrounding whitespace so "alice" and " alice "
// share one cart, one order namespace and one cooldown.
func normalizeIdentity(identity string) string { return strings.TrimSpace(identity) }

func (s *Service) cartFor(identity string) *cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[identity]
	if !ok {
		c = cart.New()
		s.carts[identity] = c
	}
	return c
}

// ParseQuantity interprets the raw quantity field; absent or unparseable
// values default to 1.
func ParseQuantity(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// AddLine validates the selection and appends a line to the identity's cart.
func (s *Service) AddLine(identity, category, item string, quantity int) error {
	identity = normalizeIdentity(identity)
	if identity == "" {
		return domain.ErrBlankIdentity
	}
	if category == "" || item == "" {
		return domain.ErrNoSelection
	}
	if !s.catalog.HasCategory(category) {
		return domain.ErrUnknownCategory
	}

	it, ok := s.catalog.Lookup(category, item)
	if !ok {
		// Valid category, unknown item: nothing to add. Not fatal.
		s.lg.Debug("unknown_item_ignored", map[string]any{"category": category, "item": item})
		return nil
	}

	s.cartFor(identity).AddLine(it, quantity)
	return nil
}

// RemoveLine drops the line at index from the identity's cart; out-of-range
// indexes are a no-op.
func (s *Service) RemoveLine(identity string, index int) {
	s.cartFor(normalizeIdentity(identity)).RemoveLine(index)
}

func (s *Service) Cart(identity string) domain.CartView {
	c := s.cartFor(normalizeIdentity(identity))
	return domain.CartView{Lines: c.Lines(), Total: c.Total()}
}

// CooldownRemaining reports how much of the identity's cooldown is left.
func (s *Service) CooldownRemaining(identity string) time.Duration {
	return s.gate.Remaining(normalizeIdentity(identity))
}

// Cooldown reports the identity's current cooldown state for display.
func (s *Service) Cooldown(identity string) domain.CooldownView {
	left := s.CooldownRemaining(identity)
	if left == 0 {
		return domain.CooldownView{}
	}
	return domain.CooldownView{Active: true, Remaining: cooldown.Format(left)}
}

// SubmitOrder snapshots the identity's cart into a pending order and writes
// it to the store. On a store failure the cart is left intact and the
// cooldown is not consumed, so the user can retry.
func (s *Service) SubmitOrder(ctx context.Context, identity string) (domain.SubmitOrderResponse, error) {
	identity = normalizeIdentity(identity)
	if identity == "" {
		return domain.SubmitOrderResponse{}, domain.ErrBlankIdentity
	}

	c := s.cartFor(identity)
	if c.Empty() {
		return domain.SubmitOrderResponse{}, domain.ErrEmptyCart
	}
	if !s.gate.Allow(identity) {
		s.met.CooldownRejections.Inc()
		return domain.SubmitOrderResponse{}, domain.ErrCooldownActive
	}

	items, total := c.Snapshot()
	order := domain.Order{
		ID:       s.store.NewOrderKey(),
		Identity: identity,
		Items:    items,
		Total:    total,
		Status:   domain.StatusPending,
	}

	if err := s.store.PutOrder(ctx, order); err != nil {
		s.met.StoreWriteFailures.Inc()
		s.lg.Error("order_write_failed", err, map[string]any{
			"path": store.OrderPath(identity, order.ID),
		})
		return domain.SubmitOrderResponse{}, &domain.StoreWriteError{Op: "write", Err: err}
	}

	if err := s.gate.Record(identity); err != nil {
		// The order is durable either way; a failed cooldown write only
		// weakens restart safety for this identity.
		s.lg.Warn("cooldown_record_failed", err, map[string]any{"identity": identity})
	}
	c.Clear()

	s.met.OrdersPlaced.Inc()
	s.lg.Info("order_placed", map[string]any{
		"path":  store.OrderPath(identity, order.ID),
		"total": total,
		"items": len(items),
	})
	return domain.SubmitOrderResponse{
		OrderID: order.ID,
		Status:  string(domain.StatusPending),
		Total:   total,
	}, nil
}
