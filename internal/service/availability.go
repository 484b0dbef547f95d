package service

import (
	"context"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// AvailableSeats returns the seats that can be booked for screeningID: the
// seats of its theatre that are not under maintenance and hold no
// non-cancelled booking for this screening. Bookings for other screenings
// of the same theatre do not affect the result.
func (s *BookingService) AvailableSeats(ctx context.Context, screeningID uint64) ([]model.Seat, error) {
	sc, err := s.screenings.GetByID(ctx, screeningID)
	if err != nil {
		return nil, lookupError(err, "screening", screeningID)
	}
	seats, err := s.seats.ListAvailableForScreening(ctx, sc.ID, sc.TheatreID)
	if err != nil {
		return nil, storageError(err)
	}
	return seats, nil
}

// SeatMap returns every seat of the screening's theatre flagged with its
// availability for that screening.
func (s *BookingService) SeatMap(ctx context.Context, screeningID uint64) ([]model.SeatAvailability, error) {
	sc, err := s.screenings.GetByID(ctx, screeningID)
	if err != nil {
		return nil, lookupError(err, "screening", screeningID)
	}
	seats, err := s.seats.ListWithAvailability(ctx, sc.ID, sc.TheatreID)
	if err != nil {
		return nil, storageError(err)
	}
	return seats, nil
}
