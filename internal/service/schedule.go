package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// ScheduleDeps are the collaborators of ScheduleService.
type ScheduleDeps struct {
	Tx         Transactor
	Screenings ScreeningStore
	Theatres   TheatreStore
	Movies     MovieStore
	Bookings   BookingStore
	Clock      Clock
	Log        *zap.Logger
}

// ScheduleService creates and edits screenings while keeping the
// screenings of each theatre free of overlaps.
type ScheduleService struct {
	tx         Transactor
	screenings ScreeningStore
	theatres   TheatreStore
	movies     MovieStore
	bookings   BookingStore
	clock      Clock
	log        *zap.Logger
}

// NewScheduleService wires a ScheduleService.
func NewScheduleService(d ScheduleDeps) *ScheduleService {
	s := &ScheduleService{
		tx:         d.Tx,
		screenings: d.Screenings,
		theatres:   d.Theatres,
		movies:     d.Movies,
		bookings:   d.Bookings,
		clock:      d.Clock,
		log:        d.Log,
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// ScreeningInput carries the fields of a screening create or update. Nil
// pointers keep the current value on update; on create a nil PriceCents
// takes the theatre base price and a nil IsActive means active.
type ScreeningInput struct {
	MovieID    uint64
	TheatreID  uint64
	StartTime  time.Time
	EndTime    time.Time
	PriceCents *int64
	IsActive   *bool
}

func validInterval(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start_time and end_time are required", ErrValidation)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: end_time must be after start_time", ErrValidation)
	}
	return nil
}

// CheckScreeningConflict reports whether another active screening in
// theatreID overlaps [start, end). A non-zero excludeID ignores that
// screening.
func (s *ScheduleService) CheckScreeningConflict(ctx context.Context, theatreID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	overlaps, err := s.Conflicts(ctx, theatreID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return len(overlaps) > 0, nil
}

// Conflicts returns the active screenings in theatreID that overlap
// [start, end), excluding excludeID when it is non-zero.
func (s *ScheduleService) Conflicts(ctx context.Context, theatreID uint64, start, end time.Time, excludeID uint64) ([]model.Screening, error) {
	if err := validInterval(start, end); err != nil {
		return nil, err
	}
	overlaps, err := s.screenings.FindOverlapping(ctx, theatreID, start, end, excludeID)
	if err != nil {
		return nil, storageError(err)
	}
	return overlaps, nil
}

func conflictError(overlaps []model.Screening) error {
	ids := make([]string, 0, len(overlaps))
	for _, o := range overlaps {
		ids = append(ids, fmt.Sprintf("%d (%s to %s)", o.ID,
			o.StartTime.UTC().Format(time.RFC3339), o.EndTime.UTC().Format(time.RFC3339)))
	}
	return fmt.Errorf("%w: overlaps screening %s", ErrConflictingSchedule, strings.Join(ids, ", "))
}

// CreateScreening schedules a screening. The start must lie in the future
// and the interval must not overlap another active screening in the same
// theatre. The theatre row is locked while checking so that concurrent
// creates for one theatre are serialized.
func (s *ScheduleService) CreateScreening(ctx context.Context, in ScreeningInput) (*model.Screening, error) {
	if err := validInterval(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}
	if !in.StartTime.After(s.clock.Now()) {
		return nil, fmt.Errorf("%w: start_time %s is not in the future", ErrScreeningInThePast, in.StartTime.UTC().Format(time.RFC3339))
	}
	if in.PriceCents != nil && *in.PriceCents < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	var created *model.Screening
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		created = nil
		theatre, err := s.theatres.GetByIDForUpdate(ctx, in.TheatreID)
		if err != nil {
			return lookupError(err, "theatre", in.TheatreID)
		}
		if _, err := s.movies.GetByID(ctx, in.MovieID); err != nil {
			return lookupError(err, "movie", in.MovieID)
		}
		sc := &model.Screening{
			MovieID:    in.MovieID,
			TheatreID:  theatre.ID,
			StartTime:  in.StartTime.UTC(),
			EndTime:    in.EndTime.UTC(),
			PriceCents: theatre.PriceCents,
			IsActive:   true,
		}
		if in.PriceCents != nil {
			sc.PriceCents = *in.PriceCents
		}
		if in.IsActive != nil {
			sc.IsActive = *in.IsActive
		}
		if sc.IsActive {
			overlaps, err := s.screenings.FindOverlapping(ctx, sc.TheatreID, sc.StartTime, sc.EndTime, 0)
			if err != nil {
				return err
			}
			if len(overlaps) > 0 {
				return conflictError(overlaps)
			}
		}
		if err := s.screenings.Create(ctx, sc); err != nil {
			return err
		}
		created = sc
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}
	s.log.Info("screening created",
		zap.Uint64("screening_id", created.ID),
		zap.Uint64("theatre_id", created.TheatreID),
		zap.Time("start_time", created.StartTime))
	return created, nil
}

// UpdateScreening edits a screening. Zero IDs and zero times in in keep
// the current values. The overlap check excludes the screening itself; a
// screening with bookings cannot move to another theatre.
func (s *ScheduleService) UpdateScreening(ctx context.Context, id uint64, in ScreeningInput) (*model.Screening, error) {
	if in.PriceCents != nil && *in.PriceCents < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	var updated *model.Screening
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		updated = nil
		cur, err := s.screenings.GetByID(ctx, id)
		if err != nil {
			return lookupError(err, "screening", id)
		}
		next := *cur
		if in.MovieID != 0 {
			next.MovieID = in.MovieID
		}
		if in.TheatreID != 0 {
			next.TheatreID = in.TheatreID
		}
		if !in.StartTime.IsZero() {
			next.StartTime = in.StartTime.UTC()
		}
		if !in.EndTime.IsZero() {
			next.EndTime = in.EndTime.UTC()
		}
		if in.PriceCents != nil {
			next.PriceCents = *in.PriceCents
		}
		if in.IsActive != nil {
			next.IsActive = *in.IsActive
		}
		if err := validInterval(next.StartTime, next.EndTime); err != nil {
			return err
		}

		if next.TheatreID != cur.TheatreID {
			n, err := s.bookings.CountByScreening(ctx, cur.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("%w: screening %d has %d bookings and cannot change theatre", ErrHasDependentBookings, cur.ID, n)
			}
		}
		if _, err := s.theatres.GetByIDForUpdate(ctx, next.TheatreID); err != nil {
			return lookupError(err, "theatre", next.TheatreID)
		}
		if next.MovieID != cur.MovieID {
			if _, err := s.movies.GetByID(ctx, next.MovieID); err != nil {
				return lookupError(err, "movie", next.MovieID)
			}
		}
		if next.IsActive {
			overlaps, err := s.screenings.FindOverlapping(ctx, next.TheatreID, next.StartTime, next.EndTime, next.ID)
			if err != nil {
				return err
			}
			if len(overlaps) > 0 {
				return conflictError(overlaps)
			}
		}
		if err := s.screenings.Update(ctx, &next); err != nil {
			return lookupError(err, "screening", id)
		}
		next.UpdatedAt = s.clock.Now()
		updated = &next
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}
	s.log.Info("screening updated", zap.Uint64("screening_id", updated.ID))
	return updated, nil
}

// DeleteScreening removes a screening that has never been booked.
func (s *ScheduleService) DeleteScreening(ctx context.Context, id uint64) error {
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.screenings.GetByID(ctx, id); err != nil {
			return lookupError(err, "screening", id)
		}
		n, err := s.bookings.CountByScreening(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: screening %d has %d bookings", ErrHasDependentBookings, id, n)
		}
		return s.screenings.Delete(ctx, id)
	})
	if err != nil {
		return storageError(err)
	}
	s.log.Info("screening deleted", zap.Uint64("screening_id", id))
	return nil
}

// GetScreening returns a screening with its movie and theatre names.
func (s *ScheduleService) GetScreening(ctx context.Context, id uint64) (*model.ScreeningDetail, error) {
	d, err := s.screenings.GetDetail(ctx, id)
	if err != nil {
		return nil, lookupError(err, "screening", id)
	}
	return d, nil
}

// ListUpcoming returns active screenings that have not started yet,
// optionally for a single movie.
func (s *ScheduleService) ListUpcoming(ctx context.Context, movieID uint64) ([]model.ScreeningDetail, error) {
	list, err := s.screenings.ListUpcoming(ctx, s.clock.Now(), movieID)
	if err != nil {
		return nil, storageError(err)
	}
	return list, nil
}
