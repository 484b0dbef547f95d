package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/model"
)

const seatColumns = `s.id, s.theatre_id, s.row_label, s.seat_number, s.seat_type, s.status, s.created_at, s.updated_at`

// SeatRepo provides methods to work with seats in the database.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

func scanSeat(sc scanner, s *model.Seat) error {
	return sc.Scan(&s.ID, &s.TheatreID, &s.Row, &s.Number, &s.Type, &s.Status, &s.CreatedAt, &s.UpdatedAt)
}

func collectSeats(rows *sql.Rows) ([]model.Seat, error) {
	defer rows.Close()
	result := []model.Seat{}
	for rows.Next() {
		var s model.Seat
		if err := scanSeat(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts a single seat record. On success the seat's ID is populated.
func (r *SeatRepo) Create(ctx context.Context, s *model.Seat) error {
	const q = `INSERT INTO seats (theatre_id, row_label, seat_number, seat_type, status)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, s.TheatreID, s.Row, s.Number, s.Type, s.Status)
	if err != nil {
		return seatWriteError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// CreateBulk inserts multiple seats in a single statement and returns the
// number of rows written.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) (int64, error) {
	if len(seats) == 0 {
		return 0, nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO seats (theatre_id, row_label, seat_number, seat_type, status) VALUES `)
	args := make([]any, 0, len(seats)*5)
	for i, seat := range seats {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, seat.TheatreID, seat.Row, seat.Number, seat.Type, seat.Status)
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, b.String(), args...)
	if err != nil {
		return 0, seatWriteError(err)
	}
	return res.RowsAffected()
}

func seatWriteError(err error) error {
	switch {
	case isDuplicateKey(err, keySeatPosition):
		return ErrDuplicateSeat
	case isMissingParent(err):
		return ErrTheatreNotFound
	}
	return err
}

// GetByID retrieves a seat by its id.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	return r.get(ctx, `SELECT `+seatColumns+` FROM seats s WHERE s.id = ?`, id)
}

// GetByIDForUpdate retrieves a seat and holds an exclusive row lock on it
// until the surrounding transaction ends. Outside a transaction the lock is
// released immediately, so callers must run it under TxManager.WithTx.
func (r *SeatRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*model.Seat, error) {
	return r.get(ctx, `SELECT `+seatColumns+` FROM seats s WHERE s.id = ? FOR UPDATE`, id)
}

func (r *SeatRepo) get(ctx context.Context, q string, id uint64) (*model.Seat, error) {
	var s model.Seat
	if err := scanSeat(conn(ctx, r.db).QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByTheatre retrieves all seats of a theatre ordered by row then number.
func (r *SeatRepo) ListByTheatre(ctx context.Context, theatreID uint64) ([]model.Seat, error) {
	const q = `SELECT ` + seatColumns + `
	           FROM seats s
	           WHERE s.theatre_id = ?
	           ORDER BY LENGTH(s.row_label), s.row_label, s.seat_number`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, theatreID)
	if err != nil {
		return nil, err
	}
	return collectSeats(rows)
}

// ListAvailableForScreening returns the seats of theatreID that are not in
// maintenance and carry no non-cancelled booking for screeningID. The
// theatre-wide status hint "booked" is deliberately not consulted.
func (r *SeatRepo) ListAvailableForScreening(ctx context.Context, screeningID, theatreID uint64) ([]model.Seat, error) {
	const q = `SELECT ` + seatColumns + `
	           FROM seats s
	           WHERE s.theatre_id = ?
	             AND s.status <> 'maintenance'
	             AND NOT EXISTS (
	                 SELECT 1 FROM bookings b
	                 WHERE b.screening_id = ? AND b.seat_id = s.id AND b.status <> 'cancelled'
	             )
	           ORDER BY LENGTH(s.row_label), s.row_label, s.seat_number`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, theatreID, screeningID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available seats: %w", err)
	}
	return collectSeats(rows)
}

// ListWithAvailability returns every seat of theatreID flagged with whether
// it can be booked for screeningID.
func (r *SeatRepo) ListWithAvailability(ctx context.Context, screeningID, theatreID uint64) ([]model.SeatAvailability, error) {
	const q = `SELECT ` + seatColumns + `,
	                  (s.status <> 'maintenance' AND NOT EXISTS (
	                      SELECT 1 FROM bookings b
	                      WHERE b.screening_id = ? AND b.seat_id = s.id AND b.status <> 'cancelled'
	                  )) AS available
	           FROM seats s
	           WHERE s.theatre_id = ?
	           ORDER BY LENGTH(s.row_label), s.row_label, s.seat_number`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, screeningID, theatreID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seat map: %w", err)
	}
	defer rows.Close()
	result := []model.SeatAvailability{}
	for rows.Next() {
		var sa model.SeatAvailability
		s := &sa.Seat
		if err := rows.Scan(&s.ID, &s.TheatreID, &s.Row, &s.Number, &s.Type, &s.Status,
			&s.CreatedAt, &s.UpdatedAt, &sa.Available); err != nil {
			return nil, err
		}
		result = append(result, sa)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites a seat's position, type and status.
func (r *SeatRepo) Update(ctx context.Context, s *model.Seat) error {
	const q = `UPDATE seats
	           SET row_label = ?, seat_number = ?, seat_type = ?, status = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, s.Row, s.Number, s.Type, s.Status, s.ID)
	if err != nil {
		return seatWriteError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSeatNotFound
	}
	return nil
}

// MarkBooked sets the status hint to booked unless the seat is under
// maintenance.
func (r *SeatRepo) MarkBooked(ctx context.Context, id uint64) error {
	const q = `UPDATE seats SET status = 'booked' WHERE id = ? AND status <> 'maintenance'`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, id)
	return err
}

// Release resets a booked status hint to available. Seats under
// maintenance keep their status.
func (r *SeatRepo) Release(ctx context.Context, id uint64) error {
	const q = `UPDATE seats SET status = 'available' WHERE id = ? AND status = 'booked'`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, id)
	return err
}

// Delete removes a seat. It returns ErrReferenced when bookings still point
// at it.
func (r *SeatRepo) Delete(ctx context.Context, id uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM seats WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrReferenced
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSeatNotFound
	}
	return nil
}
