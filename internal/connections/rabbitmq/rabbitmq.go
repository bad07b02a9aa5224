package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"storefront-system/internal/config"
)

// OrdersExchange fans a ChangeEvent out to every live board subscription.
const OrdersExchange = "orders_changed_fanout"

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	acks <-chan amqp.Confirmation // publisher confirms
	mu   sync.Mutex               // serializes Publish while waiting for acks
}

func Dial(cfg config.RabbitMQ) (*Client, error) {
	vhost := cfg.VHost
	if vhost == "" {
		vhost = "/"
	}
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, vhost)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	return &Client{conn: conn, ch: ch, acks: acks}, nil
}

func (c *Client) Channel() *amqp.Channel { return c.ch }

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Client) Ping() error {
	if c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// DeclareTopology declares the fanout exchange used for store change
// notifications. Idempotent.
func (c *Client) DeclareTopology() error {
	if c == nil || c.ch == nil {
		return errors.New("nil channel")
	}
	return c.ch.ExchangeDeclare(OrdersExchange, "fanout", true, false, false, false, nil)
}

// Publish sends one message and waits for the broker's ack.
func (c *Client) Publish(ctx context.Context, exchange, key string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ch.PublishWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}); err != nil {
		return err
	}

	select {
	case conf := <-c.acks:
		if conf.Ack {
			return nil
		}
		return errors.New("publish NACK from broker")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubscribeFanout binds an exclusive, auto-deleted queue to the fanout
// exchange and starts consuming it. Each live subscriber gets its own queue.
// The returned cancel func stops the consumer, which also drops the
// auto-deleted queue; callers must invoke it when done.
func (c *Client) SubscribeFanout(consumer string) (<-chan amqp.Delivery, func(), error) {
	q, err := c.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("declare subscriber queue: %w", err)
	}
	if err := c.ch.QueueBind(q.Name, "", OrdersExchange, false, nil); err != nil {
		return nil, nil, fmt.Errorf("bind subscriber queue: %w", err)
	}
	deliveries, err := c.ch.Consume(q.Name, consumer, true, true, false, false, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("consume subscriber queue: %w", err)
	}
	cancel := func() { _ = c.ch.Cancel(consumer, false) }
	return deliveries, cancel, nil
}
