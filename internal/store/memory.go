package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront-system/internal/domain"
)

// Memory is an in-process Store with the same delivery semantics as the
// backed implementation: every mutation fans the full tree out to all live
// subscriptions. It backs tests and the console's offline mode.
type Memory struct {
	// Now stamps CreatedAt on writes; override in tests.
	Now func() time.Time

	mu   sync.Mutex
	tree Tree
	subs map[int]chan Tree
	next int
}

func NewMemory() *Memory {
	return &Memory{
		Now:  time.Now,
		tree: make(Tree),
		subs: make(map[int]chan Tree),
	}
}

func (m *Memory) NewOrderKey() string { return uuid.NewString() }

func (m *Memory) PutOrder(_ context.Context, o domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]domain.CartLine, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	o.CreatedAt = m.Now()

	orders, ok := m.tree[o.Identity]
	if !ok {
		orders = make(map[string]domain.Order)
		m.tree[o.Identity] = orders
	}
	orders[o.ID] = o

	m.broadcastLocked()
	return nil
}

func (m *Memory) PatchStatus(_ context.Context, identity, orderID string, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.tree[identity][orderID]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	m.tree[identity][orderID] = o

	m.broadcastLocked()
	return nil
}

func (m *Memory) RemoveOrder(_ context.Context, identity, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders, ok := m.tree[identity]
	if !ok {
		return ErrNotFound
	}
	if _, ok := orders[orderID]; !ok {
		return ErrNotFound
	}
	delete(orders, orderID)
	if len(orders) == 0 {
		delete(m.tree, identity)
	}

	m.broadcastLocked()
	return nil
}

func (m *Memory) Snapshot(_ context.Context) (Tree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tree.clone(), nil
}

func (m *Memory) Subscribe(_ context.Context) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.next
	m.next++
	ch := make(chan Tree, 4)
	m.subs[id] = ch

	// Current value first, like any live view.
	ch <- m.tree.clone()

	stop := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}
	return newSubscription(ch, make(chan error), stop), nil
}

// broadcastLocked pushes the current tree to every subscriber. A slow
// consumer loses the oldest pending snapshot, never the newest.
func (m *Memory) broadcastLocked() {
	snap := m.tree.clone()
	for _, ch := range m.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
