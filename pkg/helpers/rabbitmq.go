package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPQueue is one connection and channel bound to a durable queue. The API
// publishes audit events through it and the audit worker consumes from it.
type AMQPQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	Name string
}

// DialQueue connects, opens a channel and declares the queue. prefetch > 0
// limits unacked deliveries for consumers.
func DialQueue(url, queue string, prefetch int) (*AMQPQueue, error) {
	if queue == "" {
		return nil, errors.New("amqp: empty queue name")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	q := &AMQPQueue{conn: conn, Name: queue}
	if q.ch, err = conn.Channel(); err != nil {
		q.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if prefetch > 0 {
		if err := q.ch.Qos(prefetch, 0, false); err != nil {
			q.Close()
			return nil, fmt.Errorf("amqp qos: %w", err)
		}
	}
	// durable, not auto-deleted, not exclusive
	if _, err := q.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		q.Close()
		return nil, fmt.Errorf("amqp declare %s: %w", queue, err)
	}
	return q, nil
}

// Close is safe on a nil or partially opened queue.
func (q *AMQPQueue) Close() {
	if q == nil {
		return
	}
	if q.ch != nil {
		_ = q.ch.Close()
	}
	if q.conn != nil {
		_ = q.conn.Close()
	}
}

// PublishJSON sends body as a persistent JSON message through the default exchange.
func (q *AMQPQueue) PublishJSON(ctx context.Context, body any) error {
	msg, err := jsonPublishing(body, time.Now().UTC())
	if err != nil {
		return err
	}
	return q.ch.PublishWithContext(ctx, "", q.Name, false, false, msg)
}

// Consume starts a manual-ack consumer on the queue.
func (q *AMQPQueue) Consume(consumer string) (<-chan amqp.Delivery, error) {
	return q.ch.Consume(q.Name, consumer, false, false, false, false, nil)
}

func jsonPublishing(body any, now time.Time) (amqp.Publishing, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode message: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Body:         b,
	}, nil
}
