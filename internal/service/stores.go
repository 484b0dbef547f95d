package service

import (
	"context"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// Transactor runs a unit of work atomically. Stores called with the
// context passed to fn participate in the same transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// BookingStore is the booking ledger table.
type BookingStore interface {
	HasActive(ctx context.Context, screeningID, seatID uint64) (bool, error)
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) error
	Delete(ctx context.Context, id uint64) error
	ListDetails(ctx context.Context, f repository.BookingFilter) ([]model.BookingDetail, error)
	CountByScreening(ctx context.Context, screeningID uint64) (int64, error)
	CountBySeat(ctx context.Context, seatID uint64) (int64, error)
}

// SeatStore is the seat inventory table.
type SeatStore interface {
	Create(ctx context.Context, s *model.Seat) error
	CreateBulk(ctx context.Context, seats []model.Seat) (int64, error)
	GetByID(ctx context.Context, id uint64) (*model.Seat, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*model.Seat, error)
	ListByTheatre(ctx context.Context, theatreID uint64) ([]model.Seat, error)
	ListAvailableForScreening(ctx context.Context, screeningID, theatreID uint64) ([]model.Seat, error)
	ListWithAvailability(ctx context.Context, screeningID, theatreID uint64) ([]model.SeatAvailability, error)
	Update(ctx context.Context, s *model.Seat) error
	MarkBooked(ctx context.Context, id uint64) error
	Release(ctx context.Context, id uint64) error
	Delete(ctx context.Context, id uint64) error
}

// ScreeningStore is the screenings table.
type ScreeningStore interface {
	Create(ctx context.Context, s *model.Screening) error
	GetByID(ctx context.Context, id uint64) (*model.Screening, error)
	GetDetail(ctx context.Context, id uint64) (*model.ScreeningDetail, error)
	FindOverlapping(ctx context.Context, theatreID uint64, start, end time.Time, excludeID uint64) ([]model.Screening, error)
	Update(ctx context.Context, s *model.Screening) error
	Delete(ctx context.Context, id uint64) error
	ListUpcoming(ctx context.Context, from time.Time, movieID uint64) ([]model.ScreeningDetail, error)
}

// TheatreStore is the subset of the theatres table the core reads.
type TheatreStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Theatre, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*model.Theatre, error)
}

// MovieStore is the subset of the movies table the core reads.
type MovieStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
}
