package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-booking/internal/model"
)

const theatreColumns = `id, name, capacity, screen_type, price_cents, currency, is_active, created_at, updated_at`

// TheatreRepo manages persistence for theatres.
type TheatreRepo struct {
	db *sql.DB
}

// NewTheatreRepo constructs a TheatreRepo with the given DB handle.
func NewTheatreRepo(db *sql.DB) *TheatreRepo {
	return &TheatreRepo{db: db}
}

func scanTheatre(sc scanner, t *model.Theatre) error {
	return sc.Scan(&t.ID, &t.Name, &t.Capacity, &t.ScreenType, &t.PriceCents, &t.Currency,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
}

// Create inserts a theatre. An empty currency defaults to LKR.
func (r *TheatreRepo) Create(ctx context.Context, t *model.Theatre) error {
	if t.Currency == "" {
		t.Currency = model.DefaultCurrency
	}
	const q = `INSERT INTO theatres (name, capacity, screen_type, price_cents, currency, is_active)
	           VALUES (?, ?, ?, ?, ?, ?)`
	db := conn(ctx, r.db)
	res, err := db.ExecContext(ctx, q, t.Name, t.Capacity, t.ScreenType, t.PriceCents, t.Currency, t.IsActive)
	if err != nil {
		return fmt.Errorf("failed to insert theatre: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return db.QueryRowContext(ctx, `SELECT created_at, updated_at FROM theatres WHERE id = ?`, t.ID).
		Scan(&t.CreatedAt, &t.UpdatedAt)
}

// GetByID retrieves a theatre by id.
func (r *TheatreRepo) GetByID(ctx context.Context, id uint64) (*model.Theatre, error) {
	return r.get(ctx, `SELECT `+theatreColumns+` FROM theatres WHERE id = ?`, id)
}

// GetByIDForUpdate retrieves a theatre and locks its row. Schedule writes
// take this lock so that two concurrent screening inserts for one theatre
// cannot both pass the overlap check.
func (r *TheatreRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*model.Theatre, error) {
	return r.get(ctx, `SELECT `+theatreColumns+` FROM theatres WHERE id = ? FOR UPDATE`, id)
}

func (r *TheatreRepo) get(ctx context.Context, q string, id uint64) (*model.Theatre, error) {
	var t model.Theatre
	if err := scanTheatre(conn(ctx, r.db).QueryRowContext(ctx, q, id), &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTheatreNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns theatres ordered by name; activeOnly hides inactive ones.
func (r *TheatreRepo) List(ctx context.Context, activeOnly bool) ([]model.Theatre, error) {
	q := `SELECT ` + theatreColumns + ` FROM theatres`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY name, id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Theatre{}
	for rows.Next() {
		var t model.Theatre
		if err := scanTheatre(rows, &t); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// Update rewrites every mutable column of a theatre.
func (r *TheatreRepo) Update(ctx context.Context, t *model.Theatre) error {
	const q = `UPDATE theatres
	           SET name = ?, capacity = ?, screen_type = ?, price_cents = ?, currency = ?, is_active = ?,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, t.Name, t.Capacity, t.ScreenType, t.PriceCents, t.Currency, t.IsActive, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTheatreNotFound
	}
	return nil
}

// Delete removes a theatre and, through the foreign key cascade, its
// seats. Screenings or bookings still referencing it yield ErrReferenced.
func (r *TheatreRepo) Delete(ctx context.Context, id uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM theatres WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrReferenced
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTheatreNotFound
	}
	return nil
}
