package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// Bulk layout limits: 26*27 two-letter rows and a generous row width.
const (
	maxBulkRows    = 702
	maxSeatsPerRow = 500
)

// InventoryDeps are the collaborators of InventoryService.
type InventoryDeps struct {
	Tx       Transactor
	Seats    SeatStore
	Theatres TheatreStore
	Bookings BookingStore
	Log      *zap.Logger
}

// InventoryService manages the physical seats of each theatre.
type InventoryService struct {
	tx       Transactor
	seats    SeatStore
	theatres TheatreStore
	bookings BookingStore
	log      *zap.Logger
}

// NewInventoryService wires an InventoryService.
func NewInventoryService(d InventoryDeps) *InventoryService {
	s := &InventoryService{tx: d.Tx, seats: d.Seats, theatres: d.Theatres, bookings: d.Bookings, log: d.Log}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// SeatInput describes a seat to create. An empty Type means regular.
type SeatInput struct {
	Row    string
	Number uint32
	Type   model.SeatType
}

func (in SeatInput) normalize() (SeatInput, error) {
	in.Row = normalizeRowLabel(in.Row)
	if in.Row == "" {
		return in, fmt.Errorf("%w: row is required", ErrValidation)
	}
	if in.Number == 0 {
		return in, fmt.Errorf("%w: number must be positive", ErrValidation)
	}
	if in.Type == "" {
		in.Type = model.SeatRegular
	}
	if !in.Type.Valid() {
		return in, fmt.Errorf("%w: unknown seat type %q", ErrValidation, in.Type)
	}
	return in, nil
}

// CreateSeat adds one seat to a theatre. A seat with the same row and
// number already in the theatre yields ErrDuplicateSeat.
func (s *InventoryService) CreateSeat(ctx context.Context, theatreID uint64, in SeatInput) (*model.Seat, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if _, err := s.theatres.GetByID(ctx, theatreID); err != nil {
		return nil, lookupError(err, "theatre", theatreID)
	}
	seat := &model.Seat{TheatreID: theatreID, Row: in.Row, Number: in.Number, Type: in.Type, Status: model.SeatAvailable}
	if err := s.seats.Create(ctx, seat); err != nil {
		return nil, storageError(err)
	}
	s.log.Info("seat created", zap.Uint64("theatre_id", theatreID), zap.String("seat", seat.Label()))
	return seat, nil
}

// BulkCreateSeats lays out rows × perRow seats labelled A1, A2, ... and
// returns the theatre's full seat list. The insert is atomic: if any
// position already exists nothing is written.
func (s *InventoryService) BulkCreateSeats(ctx context.Context, theatreID uint64, rows, perRow int, typ model.SeatType) ([]model.Seat, error) {
	if rows < 1 || rows > maxBulkRows {
		return nil, fmt.Errorf("%w: rows must be between 1 and %d", ErrValidation, maxBulkRows)
	}
	if perRow < 1 || perRow > maxSeatsPerRow {
		return nil, fmt.Errorf("%w: seats_per_row must be between 1 and %d", ErrValidation, maxSeatsPerRow)
	}
	if typ == "" {
		typ = model.SeatRegular
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown seat type %q", ErrValidation, typ)
	}

	var result []model.Seat
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.theatres.GetByIDForUpdate(ctx, theatreID); err != nil {
			return lookupError(err, "theatre", theatreID)
		}
		layout := make([]model.Seat, 0, rows*perRow)
		for r := 0; r < rows; r++ {
			label := RowLabel(r)
			for n := 1; n <= perRow; n++ {
				layout = append(layout, model.Seat{
					TheatreID: theatreID,
					Row:       label,
					Number:    uint32(n),
					Type:      typ,
					Status:    model.SeatAvailable,
				})
			}
		}
		if _, err := s.seats.CreateBulk(ctx, layout); err != nil {
			return err
		}
		all, err := s.seats.ListByTheatre(ctx, theatreID)
		if err != nil {
			return err
		}
		result = all
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}
	s.log.Info("seats created in bulk",
		zap.Uint64("theatre_id", theatreID), zap.Int("rows", rows), zap.Int("seats_per_row", perRow))
	return result, nil
}

// SeatPatch lists the seat fields to change; nil fields are kept.
type SeatPatch struct {
	Row    *string
	Number *uint32
	Type   *model.SeatType
	Status *model.SeatStatus
}

// UpdateSeat edits a seat. The status may be set to available or
// maintenance; "booked" is maintained by the booking ledger only.
func (s *InventoryService) UpdateSeat(ctx context.Context, id uint64, p SeatPatch) (*model.Seat, error) {
	var updated *model.Seat
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		updated = nil
		seat, err := s.seats.GetByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "seat", id)
		}
		in := SeatInput{Row: seat.Row, Number: seat.Number, Type: seat.Type}
		if p.Row != nil {
			in.Row = *p.Row
		}
		if p.Number != nil {
			in.Number = *p.Number
		}
		if p.Type != nil {
			in.Type = *p.Type
		}
		if in, err = in.normalize(); err != nil {
			return err
		}
		seat.Row, seat.Number, seat.Type = in.Row, in.Number, in.Type
		if p.Status != nil {
			switch *p.Status {
			case model.SeatAvailable, model.SeatMaintenance:
				seat.Status = *p.Status
			default:
				return fmt.Errorf("%w: status must be available or maintenance", ErrValidation)
			}
		}
		if err := s.seats.Update(ctx, seat); err != nil {
			return err
		}
		updated = seat
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}
	s.log.Info("seat updated", zap.Uint64("seat_id", id), zap.String("status", string(updated.Status)))
	return updated, nil
}

// DeleteSeat removes a seat that no booking has ever referenced.
func (s *InventoryService) DeleteSeat(ctx context.Context, id uint64) error {
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		seat, err := s.seats.GetByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "seat", id)
		}
		n, err := s.bookings.CountBySeat(ctx, seat.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: seat %s has %d bookings", ErrHasDependentBookings, seat.Label(), n)
		}
		return s.seats.Delete(ctx, seat.ID)
	})
	if err != nil {
		return storageError(err)
	}
	s.log.Info("seat deleted", zap.Uint64("seat_id", id))
	return nil
}

// ListTheatreSeats returns the seats of a theatre with their status hints.
func (s *InventoryService) ListTheatreSeats(ctx context.Context, theatreID uint64) ([]model.Seat, error) {
	if _, err := s.theatres.GetByID(ctx, theatreID); err != nil {
		return nil, lookupError(err, "theatre", theatreID)
	}
	seats, err := s.seats.ListByTheatre(ctx, theatreID)
	if err != nil {
		return nil, storageError(err)
	}
	return seats, nil
}
