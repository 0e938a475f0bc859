// Package amqp publishes and consumes receipt events over RabbitMQ.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Client wraps a RabbitMQ connection with the exchange and queue topology
// used for receipt.logged events.
type Client struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
}

func NewClient(url, exchange, queue string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	c := &Client{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		queue:    queue,
	}

	if err := c.setup(); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

func (c *Client) setup() error {
	if err := c.channel.ExchangeDeclare(
		c.exchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	q, err := c.channel.QueueDeclare(
		c.queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := c.channel.QueueBind(q.Name, c.queue, c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishReceiptLogged sends a receipt event as a persistent message so it
// survives a broker restart.
func (c *Client) PublishReceiptLogged(ctx context.Context, msg *ReceiptLoggedMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal receipt message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := c.channel.PublishWithContext(ctx,
		c.exchange,
		c.queue, // routing key matches the bound queue
		false,   // mandatory
		false,   // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish receipt message: %w", err)
	}

	slog.DebugContext(ctx, "published receipt event",
		"receipt_no", msg.ReceiptNo,
		"email_log_id", msg.EmailLogID,
	)
	return nil
}

// ConsumeReceiptLogged delivers each receipt event to handler. Messages are
// acked only after handler succeeds; failures are nacked with requeue. Blocks
// until ctx is done or the delivery channel closes.
func (c *Client) ConsumeReceiptLogged(ctx context.Context, handler func(context.Context, *ReceiptLoggedMessage) error) error {
	deliveries, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}

			msg, err := ReceiptLoggedMessageFromJSON(d.Body)
			if err != nil {
				slog.ErrorContext(ctx, "discarding malformed receipt message", "error", err)
				d.Nack(false, false)
				continue
			}

			if err := handler(ctx, msg); err != nil {
				slog.ErrorContext(ctx, "receipt handler failed, requeueing",
					"receipt_no", msg.ReceiptNo,
					"error", err,
				)
				d.Nack(false, true)
				continue
			}

			d.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
