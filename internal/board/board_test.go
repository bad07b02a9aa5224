package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"storefront-system/internal/domain"
	"storefront-system/internal/metrics"
	"storefront-system/internal/store"
)

func newBoard(st store.Store) *Board {
	return New(st, metrics.NewBoard(prometheus.NewRegistry()))
}

func line(name string, price int64) domain.CartLine {
	return domain.CartLine{Name: name, UnitPrice: price, Quantity: 1, LineTotal: price}
}

func order(identity, id string, status domain.OrderStatus, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:        id,
		Identity:  identity,
		Items:     []domain.CartLine{line("SPRINGS", 2000)},
		Total:     2000,
		CreatedAt: createdAt,
		Status:    status,
	}
}

func treeOf(orders ...domain.Order) store.Tree {
	tree := make(store.Tree)
	for _, o := range orders {
		if _, ok := tree[o.Identity]; !ok {
			tree[o.Identity] = make(map[string]domain.Order)
		}
		tree[o.Identity][o.ID] = o
	}
	return tree
}

func TestView_PartitionCompleteness(t *testing.T) {
	b := newBoard(store.NewMemory())
	now := time.Now()

	b.Replace(treeOf(
		order("alice", "o1", domain.StatusPending, now),
		order("alice", "o2", domain.StatusOnHold, now.Add(time.Minute)),
		order("bob", "o3", domain.StatusCompleted, now.Add(2*time.Minute)),
		order("carol", "o4", "unknown-value", now.Add(3*time.Minute)),
	))

	v := b.View("")
	require.False(t, v.Empty)

	// Every order lands in exactly one bucket; the union is the filtered set.
	total := len(v.Pending) + len(v.OnHold) + len(v.Completed)
	assert.Equal(t, 4, total)

	// Unrecognized status falls back to the pending bucket.
	ids := func(orders []domain.Order) []string {
		out := make([]string, 0, len(orders))
		for _, o := range orders {
			out = append(out, o.ID)
		}
		return out
	}
	assert.ElementsMatch(t, []string{"o1", "o4"}, ids(v.Pending))
	assert.ElementsMatch(t, []string{"o2"}, ids(v.OnHold))
	assert.ElementsMatch(t, []string{"o3"}, ids(v.Completed))
}

func TestView_SortNewestFirst(t *testing.T) {
	b := newBoard(store.NewMemory())
	now := time.Now()

	b.Replace(treeOf(
		order("alice", "oldest", domain.StatusPending, now),
		order("bob", "newest", domain.StatusPending, now.Add(2*time.Hour)),
		order("carol", "middle", domain.StatusPending, now.Add(time.Hour)),
	))

	v := b.View("")
	require.Len(t, v.Pending, 3)
	assert.Equal(t, "newest", v.Pending[0].ID)
	assert.Equal(t, "middle", v.Pending[1].ID)
	assert.Equal(t, "oldest", v.Pending[2].ID)
}

func TestView_SearchFiltersIdentity(t *testing.T) {
	b := newBoard(store.NewMemory())
	now := time.Now()

	b.Replace(treeOf(
		order("Alice", "o1", domain.StatusPending, now),
		order("alicia", "o2", domain.StatusCompleted, now),
		order("bob", "o3", domain.StatusPending, now),
	))

	// Case-insensitive substring match across all buckets.
	v := b.View("ALIC")
	assert.Len(t, v.Pending, 1)
	assert.Len(t, v.Completed, 1)
	assert.Empty(t, v.OnHold)

	// Empty search matches everything.
	v = b.View("")
	assert.Equal(t, 3, len(v.Pending)+len(v.OnHold)+len(v.Completed))

	// No match yields the explicit empty state.
	v = b.View("zeke")
	assert.True(t, v.Empty)
	assert.Empty(t, v.Pending)
}

func TestView_EmptyBoard(t *testing.T) {
	b := newBoard(store.NewMemory())
	b.Replace(store.Tree{})
	assert.True(t, b.View("").Empty)
}

func TestReplace_SkipsMalformedOrders(t *testing.T) {
	b := newBoard(store.NewMemory())
	now := time.Now()

	broken := order("alice", "bad", domain.StatusPending, now)
	broken.Items = nil

	b.Replace(treeOf(
		broken,
		order("bob", "ok", domain.StatusPending, now),
	))

	v := b.View("")
	require.Len(t, v.Pending, 1)
	assert.Equal(t, "ok", v.Pending[0].ID)
}

func TestReplace_IsWholesale(t *testing.T) {
	b := newBoard(store.NewMemory())
	now := time.Now()

	b.Replace(treeOf(order("alice", "o1", domain.StatusPending, now)))
	b.Replace(treeOf(order("bob", "o2", domain.StatusPending, now)))

	v := b.View("")
	require.Len(t, v.Pending, 1)
	assert.Equal(t, "o2", v.Pending[0].ID)
}

// deadFeedStore hands out subscriptions whose feed has already failed: the
// error is parked on Errs and the update channel is closed.
type deadFeedStore struct {
	*store.Memory
}

func (d *deadFeedStore) Subscribe(context.Context) (*store.Subscription, error) {
	updates := make(chan store.Tree)
	close(updates)
	errs := make(chan error, 1)
	errs <- errors.New("snapshot unavailable")
	return &store.Subscription{Updates: updates, Errs: errs}, nil
}

func TestRun_FeedFailureSetsNotice(t *testing.T) {
	// Run's select may land on the closed update channel before the parked
	// error; the notice must survive either ordering, so exercise it
	// repeatedly.
	for i := 0; i < 50; i++ {
		b := newBoard(&deadFeedStore{Memory: store.NewMemory()})
		require.NoError(t, b.Run(context.Background()))
		assert.Equal(t, SubscriptionNotice, b.Notice())
	}
}

func TestBoard_LiveAgainstStore(t *testing.T) {
	defer goleak.VerifyNone(t)

	mem := store.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := newBoard(mem)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = b.Run(ctx)
	}()

	o := order("alice", mem.NewOrderKey(), domain.StatusPending, time.Time{})
	require.NoError(t, mem.PutOrder(ctx, o))

	waitFor(t, func() bool {
		v := b.View("")
		return len(v.Pending) == 1
	})

	// Status change moves the order between buckets and touches nothing else.
	b.SetStatus(ctx, "alice", o.ID, domain.StatusCompleted)
	waitFor(t, func() bool {
		v := b.View("")
		return len(v.Completed) == 1 && len(v.Pending) == 0
	})
	got := b.View("").Completed[0]
	assert.Equal(t, o.Items, got.Items)
	assert.Equal(t, o.Total, got.Total)

	// Unconfirmed deletion leaves the store untouched.
	require.ErrorIs(t, b.Delete(ctx, "alice", o.ID, false), domain.ErrNotConfirmed)
	tree, err := mem.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, tree.Orders(), 1)

	// Confirmed deletion removes it for good.
	require.NoError(t, b.Delete(ctx, "alice", o.ID, true))
	waitFor(t, func() bool { return b.View("").Empty })

	cancel()
	<-done
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached")
}
