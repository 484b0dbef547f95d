package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/model"
)

func TestNewBookingEvent(t *testing.T) {
	b := &model.Booking{ID: 7, BookingNumber: "BK20250110120000-ABCDEF", UserID: 3, ScreeningID: 4, SeatID: 5,
		TotalAmountCents: 1500, Status: model.BookingConfirmed}
	local := time.FixedZone("X", 3600)
	ev := NewBookingEvent(EventForStatus(b.Status), b, 1, time.Date(2025, 1, 10, 13, 0, 0, 0, local))

	assert.Equal(t, BookingConfirmed, ev.Type)
	assert.Len(t, ev.EventID, 36)
	assert.Equal(t, time.UTC, ev.OccurredAt.Location())
	assert.Equal(t, 12, ev.OccurredAt.Hour())

	other := NewBookingEvent(ev.Type, b, 1, time.Now())
	assert.NotEqual(t, ev.EventID, other.EventID)
}

func TestEventForStatus(t *testing.T) {
	assert.Equal(t, BookingCreated, EventForStatus(model.BookingPending))
	assert.Equal(t, BookingConfirmed, EventForStatus(model.BookingConfirmed))
	assert.Equal(t, BookingCancelled, EventForStatus(model.BookingCancelled))
}

func TestConsumer_Deliver(t *testing.T) {
	var got []BookingEvent
	c := NewConsumer("amqp://unused", DefaultQueue, zap.NewNop(), func(_ context.Context, ev BookingEvent) error {
		got = append(got, ev)
		return nil
	})

	body, err := json.Marshal(BookingEvent{EventID: "e1", Type: BookingCreated, BookingID: 9})
	require.NoError(t, err)
	require.NoError(t, c.deliver(context.Background(), body))
	require.Len(t, got, 1)
	assert.Equal(t, uint64(9), got[0].BookingID)

	assert.Error(t, c.deliver(context.Background(), []byte("{not json")))
}

func TestSleep_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleep(ctx, time.Hour))
	assert.True(t, sleep(context.Background(), time.Millisecond))
}
