package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// maxNumberAttempts bounds booking number regeneration after collisions.
const maxNumberAttempts = 5

// Scope selects whose bookings ListBookings returns.
type Scope string

const (
	ScopeSelf Scope = "self"
	ScopeAll  Scope = "all"
)

// ParseScope accepts "", "self" and "all".
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeSelf:
		return ScopeSelf, nil
	case ScopeAll:
		return ScopeAll, nil
	}
	return "", fmt.Errorf("%w: unknown scope %q", ErrValidation, s)
}

// BookingDeps are the collaborators of BookingService.
type BookingDeps struct {
	Tx         Transactor
	Bookings   BookingStore
	Seats      SeatStore
	Screenings ScreeningStore
	Clock      Clock
	Events     EventPublisher
	Log        *zap.Logger
}

// BookingService is the booking ledger. It owns every write to the
// bookings table and the seat status hint that mirrors it.
type BookingService struct {
	tx         Transactor
	bookings   BookingStore
	seats      SeatStore
	screenings ScreeningStore
	clock      Clock
	events     EventPublisher
	log        *zap.Logger

	numbers        NumberGenerator
	publishTimeout time.Duration
}

// BookingOption customises a BookingService.
type BookingOption func(*BookingService)

// WithNumberGenerator replaces the booking number generator.
func WithNumberGenerator(g NumberGenerator) BookingOption {
	return func(s *BookingService) {
		if g != nil {
			s.numbers = g
		}
	}
}

// WithPublishTimeout bounds how long a post-commit event publish may take.
func WithPublishTimeout(d time.Duration) BookingOption {
	return func(s *BookingService) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

// NewBookingService wires a BookingService. Nil Clock, Events and Log fall
// back to the system clock, a no-op publisher and a no-op logger.
func NewBookingService(d BookingDeps, opts ...BookingOption) *BookingService {
	s := &BookingService{
		tx:             d.Tx,
		bookings:       d.Bookings,
		seats:          d.Seats,
		screenings:     d.Screenings,
		clock:          d.Clock,
		events:         d.Events,
		log:            d.Log,
		numbers:        NewBookingNumber,
		publishTimeout: 2 * time.Second,
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	if s.events == nil {
		s.events = NopPublisher{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking reserves seatID for screeningID on behalf of actor. The
// booking starts pending with the screening price as its total. Two
// concurrent calls for the same screening seat cannot both succeed: the
// seat row is locked for the transaction and the storage unique key rejects
// a second active booking regardless.
func (s *BookingService) CreateBooking(ctx context.Context, actor model.Actor, screeningID, seatID uint64) (*model.Booking, error) {
	if err := Authorize(actor, ActionCreateBooking, Resource{}); err != nil {
		return nil, err
	}

	var created *model.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		created = nil
		sc, err := s.screenings.GetByID(ctx, screeningID)
		if err != nil {
			return lookupError(err, "screening", screeningID)
		}
		if !sc.IsActive {
			return fmt.Errorf("%w: screening %d is not open for booking", ErrNotFound, screeningID)
		}
		now := s.clock.Now()
		if !now.Before(sc.StartTime) {
			return fmt.Errorf("%w: screening %d started at %s", ErrScreeningInThePast, sc.ID, sc.StartTime.UTC().Format(time.RFC3339))
		}

		seat, err := s.seats.GetByIDForUpdate(ctx, seatID)
		if err != nil {
			return lookupError(err, "seat", seatID)
		}
		if seat.TheatreID != sc.TheatreID {
			return fmt.Errorf("%w: seat %d is not in theatre %d", ErrNotFound, seat.ID, sc.TheatreID)
		}
		if seat.Status == model.SeatMaintenance {
			return fmt.Errorf("%w: seat %s is under maintenance", ErrSeatUnavailable, seat.Label())
		}

		taken, err := s.bookings.HasActive(ctx, sc.ID, seat.ID)
		if err != nil {
			return err
		}
		if taken {
			return seatTaken(seat, sc.ID)
		}

		b := &model.Booking{
			UserID:           actor.UserID,
			ScreeningID:      sc.ID,
			SeatID:           seat.ID,
			TotalAmountCents: sc.PriceCents,
			Status:           model.BookingPending,
			BookedAt:         now,
		}
		if err := s.insert(ctx, b); err != nil {
			if errors.Is(err, repository.ErrActiveBookingExists) {
				return seatTaken(seat, sc.ID)
			}
			if errors.Is(err, repository.ErrUserNotFound) {
				return fmt.Errorf("%w: user %d is not registered", ErrNotFound, actor.UserID)
			}
			return err
		}
		if err := s.seats.MarkBooked(ctx, seat.ID); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.log.Info("booking created",
		zap.Uint64("booking_id", created.ID),
		zap.String("booking_number", created.BookingNumber),
		zap.Uint64("user_id", created.UserID),
		zap.Uint64("screening_id", created.ScreeningID),
		zap.Uint64("seat_id", created.SeatID))
	s.publish(ctx, queue.BookingCreated, created, actor)
	return created, nil
}

// insert writes b with a fresh booking number, regenerating it when the
// number collides with an existing one.
func (s *BookingService) insert(ctx context.Context, b *model.Booking) error {
	for attempt := 1; ; attempt++ {
		num, err := s.numbers(b.BookedAt)
		if err != nil {
			return fmt.Errorf("generate booking number: %w", err)
		}
		b.BookingNumber = num
		err = s.bookings.Create(ctx, b)
		if !errors.Is(err, repository.ErrDuplicateBookingNumber) {
			return err
		}
		if attempt >= maxNumberAttempts {
			return fmt.Errorf("could not allocate a unique booking number after %d attempts: %w", attempt, err)
		}
		s.log.Debug("booking number collision, regenerating", zap.String("booking_number", num))
	}
}

func seatTaken(seat *model.Seat, screeningID uint64) error {
	return fmt.Errorf("%w: seat %s is already booked for screening %d", ErrSeatUnavailable, seat.Label(), screeningID)
}

// TransitionBooking moves a booking to next. Owners may cancel their own
// bookings; every other change requires an admin. Cancelling releases the
// seat status hint.
func (s *BookingService) TransitionBooking(ctx context.Context, actor model.Actor, bookingID uint64, next model.BookingStatus) (*model.Booking, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	var updated *model.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		updated = nil
		b, err := s.bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return lookupError(err, "booking", bookingID)
		}
		if err := Authorize(actor, transitionAction(next), Resource{OwnerID: b.UserID}); err != nil {
			return err
		}
		if !b.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: booking %d cannot move from %s to %s", ErrInvalidTransition, b.ID, b.Status, next)
		}
		if err := s.bookings.UpdateStatus(ctx, b.ID, b.Status, next); err != nil {
			if errors.Is(err, repository.ErrStaleStatus) {
				return fmt.Errorf("%w: booking %d changed concurrently", ErrInvalidTransition, b.ID)
			}
			return err
		}
		if next == model.BookingCancelled {
			err = s.seats.Release(ctx, b.SeatID)
		} else {
			err = s.seats.MarkBooked(ctx, b.SeatID)
		}
		if err != nil {
			return err
		}
		b.Status = next
		b.UpdatedAt = s.clock.Now()
		updated = b
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.log.Info("booking status changed",
		zap.Uint64("booking_id", updated.ID),
		zap.String("status", string(updated.Status)),
		zap.Uint64("actor_id", actor.UserID))
	s.publish(ctx, queue.EventForStatus(updated.Status), updated, actor)
	return updated, nil
}

// DeleteBooking hard-deletes a booking. Deleting an active booking releases
// the seat status hint; a cancelled one released it already and the seat may
// since have been booked again. It is an administrative correction, not a
// cancellation.
func (s *BookingService) DeleteBooking(ctx context.Context, actor model.Actor, bookingID uint64) error {
	if err := Authorize(actor, ActionDeleteBooking, Resource{}); err != nil {
		return err
	}

	var deleted *model.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return lookupError(err, "booking", bookingID)
		}
		if err := s.bookings.Delete(ctx, b.ID); err != nil {
			return lookupError(err, "booking", bookingID)
		}
		if b.Status.Active() {
			if err := s.seats.Release(ctx, b.SeatID); err != nil {
				return err
			}
		}
		deleted = b
		return nil
	})
	if err != nil {
		return storageError(err)
	}

	s.log.Info("booking deleted",
		zap.Uint64("booking_id", deleted.ID),
		zap.String("booking_number", deleted.BookingNumber),
		zap.Uint64("actor_id", actor.UserID))
	s.publish(ctx, queue.BookingDeleted, deleted, actor)
	return nil
}

// ListBookings returns the actor's bookings, or every booking for ScopeAll,
// newest first.
func (s *BookingService) ListBookings(ctx context.Context, actor model.Actor, scope Scope) ([]model.BookingDetail, error) {
	f := repository.BookingFilter{UserID: actor.UserID}
	switch scope {
	case ScopeAll:
		if err := Authorize(actor, ActionListAllBookings, Resource{}); err != nil {
			return nil, err
		}
		f.UserID = 0
	case ScopeSelf, "":
		if actor.UserID == 0 {
			return nil, fmt.Errorf("%w: authentication required", ErrUnauthorized)
		}
	default:
		return nil, fmt.Errorf("%w: unknown scope %q", ErrValidation, scope)
	}
	list, err := s.bookings.ListDetails(ctx, f)
	if err != nil {
		return nil, storageError(err)
	}
	return list, nil
}

// GetBooking returns one booking to its owner or an admin.
func (s *BookingService) GetBooking(ctx context.Context, actor model.Actor, bookingID uint64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, lookupError(err, "booking", bookingID)
	}
	if err := Authorize(actor, ActionViewBooking, Resource{OwnerID: b.UserID}); err != nil {
		return nil, err
	}
	return b, nil
}

// publish emits a lifecycle event after commit. Failures are logged and
// never reach the caller: the ledger row is already durable.
func (s *BookingService) publish(ctx context.Context, typ queue.EventType, b *model.Booking, actor model.Actor) {
	ev := queue.NewBookingEvent(typ, b, actor.UserID, s.clock.Now())
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.events.Publish(pctx, ev); err != nil {
		s.log.Warn("failed to publish booking event",
			zap.String("type", string(typ)),
			zap.Uint64("booking_id", b.ID),
			zap.Error(err))
	}
}
