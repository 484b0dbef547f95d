package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Handler processes one decoded booking event. Returning an error rejects
// the delivery without requeueing it.
type Handler func(ctx context.Context, ev BookingEvent) error

// Consumer reads booking events from a durable queue and reconnects with
// exponential backoff when the broker goes away.
type Consumer struct {
	url    string
	queue  string
	log    *zap.Logger
	handle Handler
}

// NewConsumer returns a Consumer for queue on the broker at url. A nil
// handler logs each event.
func NewConsumer(url, queue string, log *zap.Logger, handle Handler) *Consumer {
	if queue == "" {
		queue = DefaultQueue
	}
	c := &Consumer{url: url, queue: queue, log: log, handle: handle}
	if c.handle == nil {
		c.handle = c.logEvent
	}
	return c
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("booking consumer failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("booking consumer loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("booking consumer failed to set QoS", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.deliver(ctx, d.Body); err != nil {
			c.log.Warn("booking consumer rejected message", zap.Error(err))
			_ = d.Nack(false, false) // no requeue, avoids a hot loop on poison messages
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (c *Consumer) deliver(ctx context.Context, body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return c.handle(ctx, ev)
}

func (c *Consumer) logEvent(_ context.Context, ev BookingEvent) error {
	c.log.Info("booking event",
		zap.String("event_id", ev.EventID),
		zap.String("type", string(ev.Type)),
		zap.Uint64("booking_id", ev.BookingID),
		zap.String("booking_number", ev.BookingNumber),
		zap.Uint64("user_id", ev.UserID),
		zap.Uint64("screening_id", ev.ScreeningID),
		zap.Uint64("seat_id", ev.SeatID),
		zap.String("status", string(ev.Status)),
		zap.Int64("total_amount_cents", ev.TotalAmountCents),
		zap.Time("occurred_at", ev.OccurredAt),
	)
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
