package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-booking/internal/model"
)

const movieColumns = `id, title, description, duration_min, genre, poster_url, trailer_url, release_date,
       is_active, created_at, updated_at`

// MovieRepo manages persistence for movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

func scanMovie(sc scanner, m *model.Movie) error {
	return sc.Scan(&m.ID, &m.Title, &m.Description, &m.DurationMin, &m.Genre, &m.PosterURL, &m.TrailerURL,
		&m.ReleaseDate, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
}

// Create inserts a movie and populates ID and timestamps.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (title, description, duration_min, genre, poster_url, trailer_url, release_date, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	db := conn(ctx, r.db)
	res, err := db.ExecContext(ctx, q, m.Title, m.Description, m.DurationMin, m.Genre, m.PosterURL, m.TrailerURL,
		m.ReleaseDate, m.IsActive)
	if err != nil {
		return fmt.Errorf("failed to insert movie: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return db.QueryRowContext(ctx, `SELECT created_at, updated_at FROM movies WHERE id = ?`, m.ID).
		Scan(&m.CreatedAt, &m.UpdatedAt)
}

// GetByID retrieves a movie by id.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	var m model.Movie
	err := scanMovie(conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id), &m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// List returns movies, newest release first; activeOnly hides inactive ones.
func (r *MovieRepo) List(ctx context.Context, activeOnly bool) ([]model.Movie, error) {
	q := `SELECT ` + movieColumns + ` FROM movies`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY release_date DESC, id DESC`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Movie{}
	for rows.Next() {
		var m model.Movie
		if err := scanMovie(rows, &m); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// Update rewrites every mutable column of a movie.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	const q = `UPDATE movies
	           SET title = ?, description = ?, duration_min = ?, genre = ?, poster_url = ?, trailer_url = ?,
	               release_date = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, m.Title, m.Description, m.DurationMin, m.Genre, m.PosterURL,
		m.TrailerURL, m.ReleaseDate, m.IsActive, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// Delete removes a movie. Screenings still referencing it yield
// ErrReferenced.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrReferenced
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}
