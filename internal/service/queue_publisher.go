package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/queue"
)

// EventPublisher delivers booking events after the ledger commits.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// NopPublisher discards events. It is used when no broker is configured.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, queue.BookingEvent) error { return nil }

// AMQPPublisher publishes booking events to a durable RabbitMQ queue. The
// connection is dialed lazily and dropped on any failure so the next
// publish redials.
type AMQPPublisher struct {
	url   string
	queue string
	log   *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher returns a publisher for queueName on the broker at url.
func NewAMQPPublisher(url, queueName string, log *zap.Logger) *AMQPPublisher {
	if queueName == "" {
		queueName = queue.DefaultQueue
	}
	return &AMQPPublisher{url: url, queue: queueName, log: log}
}

// Publish sends ev as a persistent JSON message routed to the queue.
func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Type:         string(ev.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// channel returns an open channel, dialing and declaring the queue first
// when needed. p.mu must be held.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	p.conn, p.ch = conn, ch
	p.log.Info("connected to message broker", zap.String("queue", p.queue))
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
