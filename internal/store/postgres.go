package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-system/internal/common/logger"
	"storefront-system/internal/connections/rabbitmq"
	"storefront-system/internal/domain"
)

// Postgres persists the order tree in one table keyed (identity, id) and
// fans change notifications out over the RabbitMQ fanout exchange, so every
// live subscription re-reads the tree after each mutation. created_at is
// assigned by the database.
type Postgres struct {
	pool *pgxpool.Pool
	mq   *rabbitmq.Client
	lg   *logger.Logger
}

func NewPostgres(pool *pgxpool.Pool, mq *rabbitmq.Client) *Postgres {
	return &Postgres{pool: pool, mq: mq, lg: logger.New("store")}
}

// EnsureSchema creates the orders table if missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS orders (
    identity   text        NOT NULL,
    id         text        NOT NULL,
    items      jsonb       NOT NULL,
    total      bigint      NOT NULL,
    created_at timestamptz NOT NULL DEFAULT now(),
    status     text        NOT NULL DEFAULT 'pending',
    PRIMARY KEY (identity, id)
)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) NewOrderKey() string { return uuid.NewString() }

func (p *Postgres) PutOrder(ctx context.Context, o domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
INSERT INTO orders (identity, id, items, total, status)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (identity, id) DO UPDATE SET
  items  = EXCLUDED.items,
  total  = EXCLUDED.total,
  status = EXCLUDED.status
`, o.Identity, o.ID, items, o.Total, string(o.Status))
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	p.notify(ctx, domain.ChangeOrderCreated, o.Identity, o.ID)
	return nil
}

func (p *Postgres) PatchStatus(ctx context.Context, identity, orderID string, status domain.OrderStatus) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE orders SET status = $1 WHERE identity = $2 AND id = $3`,
		string(status), identity, orderID)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	p.notify(ctx, domain.ChangeOrderStatus, identity, orderID)
	return nil
}

func (p *Postgres) RemoveOrder(ctx context.Context, identity, orderID string) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM orders WHERE identity = $1 AND id = $2`, identity, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	p.notify(ctx, domain.ChangeOrderDeleted, identity, orderID)
	return nil
}

func (p *Postgres) Snapshot(ctx context.Context) (Tree, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT identity, id, items, total, created_at, status FROM orders`)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	tree := make(Tree)
	for rows.Next() {
		var (
			o        domain.Order
			rawItems []byte
			status   string
		)
		if err := rows.Scan(&o.Identity, &o.ID, &rawItems, &o.Total, &o.CreatedAt, &status); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal(rawItems, &o.Items); err != nil {
			// A corrupt items column leaves the record malformed; the board
			// decides how to treat it.
			p.lg.Warn("order_items_unmarshal_failed", err,
				map[string]any{"path": OrderPath(o.Identity, o.ID)})
		}
		o.Status = domain.OrderStatus(status)

		if _, ok := tree[o.Identity]; !ok {
			tree[o.Identity] = make(map[string]domain.Order)
		}
		tree[o.Identity][o.ID] = o
	}
	return tree, rows.Err()
}

func (p *Postgres) Subscribe(ctx context.Context) (*Subscription, error) {
	deliveries, cancelConsume, err := p.mq.SubscribeFanout("order-board-" + uuid.NewString()[:8])
	if err != nil {
		return nil, fmt.Errorf("subscribe fanout: %w", err)
	}

	updates := make(chan Tree, 1)
	errs := make(chan error, 1)
	done := make(chan struct{})

	emit := func() bool {
		tree, err := p.Snapshot(ctx)
		if err != nil {
			select {
			case errs <- err:
			default:
			}
			return false
		}
		select {
		case updates <- tree:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- tree:
			default:
			}
		}
		return true
	}

	go func() {
		defer close(updates)

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case _, ok := <-deliveries:
				if !ok {
					select {
					case errs <- errors.New("change feed closed"):
					default:
					}
					return
				}
				if !emit() {
					return
				}
			}
		}
	}()

	// Closing must tear down the broker consumer too, or its exclusive
	// queue stays bound until the connection drops.
	return newSubscription(updates, errs, func() {
		close(done)
		cancelConsume()
	}), nil
}

// notify publishes a change event after a successful mutation. Delivery is
// best effort: a failed notification is logged, never propagated, since the
// row is already durable.
func (p *Postgres) notify(ctx context.Context, kind, identity, orderID string) {
	if p.mq == nil {
		return
	}
	body, err := json.Marshal(domain.ChangeEvent{
		Kind:       kind,
		Identity:   identity,
		OrderID:    orderID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		p.lg.Warn("change_event_marshal_failed", err, nil)
		return
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.mq.Publish(pctx, rabbitmq.OrdersExchange, "", body); err != nil {
		p.lg.Warn("change_event_publish_failed", err,
			map[string]any{"kind": kind, "path": OrderPath(identity, orderID)})
	}
}
