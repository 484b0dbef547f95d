package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

const screeningColumns = `sc.id, sc.movie_id, sc.theatre_id, sc.start_time, sc.end_time, sc.price_cents,
       sc.is_active, sc.created_at, sc.updated_at`

// ScreeningRepo manages persistence for screenings.
type ScreeningRepo struct {
	db *sql.DB
}

// NewScreeningRepo constructs a ScreeningRepo with the given DB handle.
func NewScreeningRepo(db *sql.DB) *ScreeningRepo {
	return &ScreeningRepo{db: db}
}

func scanScreening(sc scanner, s *model.Screening) error {
	return sc.Scan(&s.ID, &s.MovieID, &s.TheatreID, &s.StartTime, &s.EndTime, &s.PriceCents,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt)
}

func collectScreenings(rows *sql.Rows) ([]model.Screening, error) {
	defer rows.Close()
	result := []model.Screening{}
	for rows.Next() {
		var s model.Screening
		if err := scanScreening(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts a screening and populates ID and timestamps.
func (r *ScreeningRepo) Create(ctx context.Context, s *model.Screening) error {
	const q = `INSERT INTO screenings (movie_id, theatre_id, start_time, end_time, price_cents, is_active)
	           VALUES (?, ?, ?, ?, ?, ?)`
	db := conn(ctx, r.db)
	res, err := db.ExecContext(ctx, q, s.MovieID, s.TheatreID, s.StartTime.UTC(), s.EndTime.UTC(), s.PriceCents, s.IsActive)
	if err != nil {
		if isMissingParent(err) {
			return fmt.Errorf("movie or theatre %w", ErrNotFound)
		}
		return fmt.Errorf("failed to insert screening: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM screenings WHERE id = ?`
	return db.QueryRowContext(ctx, sel, s.ID).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a screening by its ID. It returns ErrScreeningNotFound
// if there is no matching row.
func (r *ScreeningRepo) GetByID(ctx context.Context, id uint64) (*model.Screening, error) {
	const q = `SELECT ` + screeningColumns + ` FROM screenings sc WHERE sc.id = ?`
	var s model.Screening
	if err := scanScreening(conn(ctx, r.db).QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScreeningNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetDetail retrieves a screening joined with its movie and theatre.
func (r *ScreeningRepo) GetDetail(ctx context.Context, id uint64) (*model.ScreeningDetail, error) {
	const q = `SELECT ` + screeningColumns + `, m.title, t.name, t.screen_type, t.currency
	           FROM screenings sc
	           JOIN movies m ON m.id = sc.movie_id
	           JOIN theatres t ON t.id = sc.theatre_id
	           WHERE sc.id = ?`
	var d model.ScreeningDetail
	s := &d.Screening
	err := conn(ctx, r.db).QueryRowContext(ctx, q, id).Scan(&s.ID, &s.MovieID, &s.TheatreID, &s.StartTime,
		&s.EndTime, &s.PriceCents, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
		&d.MovieTitle, &d.TheatreName, &d.ScreenType, &d.Currency)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScreeningNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindOverlapping returns the active screenings in theatreID whose interval
// intersects [start, end). Two half-open intervals intersect unless one ends
// at or before the other starts. A non-zero excludeID omits that screening,
// which lets an update overlap its own previous slot.
func (r *ScreeningRepo) FindOverlapping(ctx context.Context, theatreID uint64, start, end time.Time, excludeID uint64) ([]model.Screening, error) {
	const q = `SELECT ` + screeningColumns + `
	           FROM screenings sc
	           WHERE sc.theatre_id = ? AND sc.is_active = 1 AND sc.id <> ?
	             AND NOT (sc.end_time <= ? OR sc.start_time >= ?)
	           ORDER BY sc.start_time`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, theatreID, excludeID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping screenings: %w", err)
	}
	return collectScreenings(rows)
}

// Update rewrites every mutable column of a screening.
func (r *ScreeningRepo) Update(ctx context.Context, s *model.Screening) error {
	const q = `UPDATE screenings
	           SET movie_id = ?, theatre_id = ?, start_time = ?, end_time = ?, price_cents = ?, is_active = ?,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, s.MovieID, s.TheatreID, s.StartTime.UTC(), s.EndTime.UTC(),
		s.PriceCents, s.IsActive, s.ID)
	if err != nil {
		if isMissingParent(err) {
			return fmt.Errorf("movie or theatre %w", ErrNotFound)
		}
		return fmt.Errorf("failed to update screening: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrScreeningNotFound
	}
	return nil
}

// Delete removes a screening. It returns ErrReferenced when bookings still
// point at it.
func (r *ScreeningRepo) Delete(ctx context.Context, id uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM screenings WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrReferenced
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrScreeningNotFound
	}
	return nil
}

// ListUpcoming returns active screenings starting at or after from, joined
// with movie and theatre display fields. A non-zero movieID filters to one
// movie.
func (r *ScreeningRepo) ListUpcoming(ctx context.Context, from time.Time, movieID uint64) ([]model.ScreeningDetail, error) {
	q := `SELECT ` + screeningColumns + `, m.title, t.name, t.screen_type, t.currency
	      FROM screenings sc
	      JOIN movies m ON m.id = sc.movie_id
	      JOIN theatres t ON t.id = sc.theatre_id
	      WHERE sc.is_active = 1 AND sc.start_time >= ?`
	args := []any{from.UTC()}
	if movieID != 0 {
		q += ` AND sc.movie_id = ?`
		args = append(args, movieID)
	}
	q += ` ORDER BY sc.start_time, sc.id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list screenings: %w", err)
	}
	defer rows.Close()
	result := []model.ScreeningDetail{}
	for rows.Next() {
		var d model.ScreeningDetail
		s := &d.Screening
		if err := rows.Scan(&s.ID, &s.MovieID, &s.TheatreID, &s.StartTime, &s.EndTime, &s.PriceCents,
			&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
			&d.MovieTitle, &d.TheatreName, &d.ScreenType, &d.Currency); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
