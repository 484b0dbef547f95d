// Package queue defines the booking lifecycle messages exchanged over
// RabbitMQ and the consumer that processes them.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// DefaultQueue is the durable queue booking events are routed to.
const DefaultQueue = "booking.events"

// EventType names a booking lifecycle change.
type EventType string

const (
	BookingCreated   EventType = "booking.created"
	BookingConfirmed EventType = "booking.confirmed"
	BookingCancelled EventType = "booking.cancelled"
	BookingDeleted   EventType = "booking.deleted"
)

// EventForStatus returns the event emitted when a booking enters status.
func EventForStatus(status model.BookingStatus) EventType {
	switch status {
	case model.BookingConfirmed:
		return BookingConfirmed
	case model.BookingCancelled:
		return BookingCancelled
	}
	return BookingCreated
}

// BookingEvent is published after a ledger change commits. It carries
// enough of the booking for consumers to log or notify without querying the
// database.
type BookingEvent struct {
	EventID          string              `json:"event_id"`
	Type             EventType           `json:"type"`
	BookingID        uint64              `json:"booking_id"`
	BookingNumber    string              `json:"booking_number"`
	UserID           uint64              `json:"user_id"`
	ScreeningID      uint64              `json:"screening_id"`
	SeatID           uint64              `json:"seat_id"`
	Status           model.BookingStatus `json:"status"`
	TotalAmountCents int64               `json:"total_amount_cents"`
	ActorID          uint64              `json:"actor_id"`
	OccurredAt       time.Time           `json:"occurred_at"`
}

// NewBookingEvent builds an event for b with a fresh event id.
func NewBookingEvent(typ EventType, b *model.Booking, actorID uint64, at time.Time) BookingEvent {
	return BookingEvent{
		EventID:          uuid.NewString(),
		Type:             typ,
		BookingID:        b.ID,
		BookingNumber:    b.BookingNumber,
		UserID:           b.UserID,
		ScreeningID:      b.ScreeningID,
		SeatID:           b.SeatID,
		Status:           b.Status,
		TotalAmountCents: b.TotalAmountCents,
		ActorID:          actorID,
		OccurredAt:       at.UTC(),
	}
}
