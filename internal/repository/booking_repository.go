package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-booking/internal/model"
)

const bookingColumns = `b.id, b.booking_number, b.user_id, b.screening_id, b.seat_id, b.total_amount_cents,
       b.status, b.booked_at, b.created_at, b.updated_at`

const bookingDetailSelect = `SELECT ` + bookingColumns + `,
       m.title, t.name, s.row_label, s.seat_number, sc.start_time, sc.end_time
FROM bookings b
JOIN screenings sc ON sc.id = b.screening_id
JOIN movies m ON m.id = sc.movie_id
JOIN theatres t ON t.id = sc.theatre_id
JOIN seats s ON s.id = b.seat_id`

// BookingRepo is the MySQL booking ledger.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

func scanBooking(sc scanner, b *model.Booking) error {
	return sc.Scan(&b.ID, &b.BookingNumber, &b.UserID, &b.ScreeningID, &b.SeatID, &b.TotalAmountCents,
		&b.Status, &b.BookedAt, &b.CreatedAt, &b.UpdatedAt)
}

// HasActive reports whether a non-cancelled booking exists for the
// screening seat. Inside a transaction that already locked the seat row
// the answer is stable until commit.
func (r *BookingRepo) HasActive(ctx context.Context, screeningID, seatID uint64) (bool, error) {
	const q = `SELECT 1 FROM bookings
	           WHERE screening_id = ? AND seat_id = ? AND status <> 'cancelled'
	           LIMIT 1`
	var one int
	err := conn(ctx, r.db).QueryRowContext(ctx, q, screeningID, seatID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check active booking: %w", err)
	}
	return true, nil
}

// Create inserts a booking. The uq_bookings_active_seat key rejects a
// second non-cancelled booking for the same screening seat even when two
// transactions race past HasActive; that rejection is reported as
// ErrActiveBookingExists. A booking number collision is reported as
// ErrDuplicateBookingNumber. A user id with no users row is reported as
// ErrUserNotFound. On success ID, CreatedAt and UpdatedAt are set.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
	               (booking_number, user_id, screening_id, seat_id, total_amount_cents, status, booked_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	db := conn(ctx, r.db)
	res, err := db.ExecContext(ctx, q, b.BookingNumber, b.UserID, b.ScreeningID, b.SeatID,
		b.TotalAmountCents, b.Status, b.BookedAt)
	if err != nil {
		switch {
		case isDuplicateKey(err, keyActiveSeat):
			return ErrActiveBookingExists
		case isDuplicateKey(err, keyBookingNumber):
			return ErrDuplicateBookingNumber
		case isMissingParent(err):
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
	return db.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// GetByID retrieves a booking by id.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = ?`, id)
}

// GetByIDForUpdate retrieves a booking and locks its row for the rest of
// the surrounding transaction.
func (r *BookingRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*model.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = ? FOR UPDATE`, id)
}

func (r *BookingRepo) get(ctx context.Context, q string, id uint64) (*model.Booking, error) {
	var b model.Booking
	if err := scanBooking(conn(ctx, r.db).QueryRowContext(ctx, q, id), &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// UpdateStatus moves a booking from one status to another with a
// compare-and-set on the current status. When the row exists but no
// longer holds from, ErrStaleStatus is returned.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) error {
	const q = `UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`
	db := conn(ctx, r.db)
	res, err := db.ExecContext(ctx, q, to, id, from)
	if err != nil {
		// Re-activating a row can collide with a newer active booking.
		if isDuplicateKey(err, keyActiveSeat) {
			return ErrActiveBookingExists
		}
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	err = db.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	if err != nil {
		return err
	}
	return ErrStaleStatus
}

// Delete hard-deletes a booking row.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// BookingFilter narrows ListDetails. A zero UserID lists every user's
// bookings; a zero Limit returns all rows.
type BookingFilter struct {
	UserID uint64
	Limit  int
}

// ListDetails returns bookings joined with their display fields, newest
// first.
func (r *BookingRepo) ListDetails(ctx context.Context, f BookingFilter) ([]model.BookingDetail, error) {
	q := bookingDetailSelect
	args := []any{}
	if f.UserID != 0 {
		q += ` WHERE b.user_id = ?`
		args = append(args, f.UserID)
	}
	q += ` ORDER BY b.created_at DESC, b.id DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()
	result := []model.BookingDetail{}
	for rows.Next() {
		var d model.BookingDetail
		b := &d.Booking
		if err := rows.Scan(&b.ID, &b.BookingNumber, &b.UserID, &b.ScreeningID, &b.SeatID, &b.TotalAmountCents,
			&b.Status, &b.BookedAt, &b.CreatedAt, &b.UpdatedAt,
			&d.MovieTitle, &d.TheatreName, &d.SeatRow, &d.SeatNumber, &d.StartTime, &d.EndTime); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountByScreening counts bookings of any status for a screening.
func (r *BookingRepo) CountByScreening(ctx context.Context, screeningID uint64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM bookings WHERE screening_id = ?`, screeningID)
}

// CountBySeat counts bookings of any status for a seat.
func (r *BookingRepo) CountBySeat(ctx context.Context, seatID uint64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM bookings WHERE seat_id = ?`, seatID)
}

func (r *BookingRepo) count(ctx context.Context, q string, id uint64) (int64, error) {
	var n int64
	if err := conn(ctx, r.db).QueryRowContext(ctx, q, id).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
