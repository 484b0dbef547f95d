package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// StatsRepo aggregates ledger figures for the admin dashboard.
type StatsRepo struct {
	db       *sql.DB
	bookings *BookingRepo
}

// NewStatsRepo constructs a StatsRepo with the given DB handle.
func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db, bookings: NewBookingRepo(db)}
}

// Dashboard runs the dashboard queries concurrently on separate pool
// connections, so it must not be called with a transaction in ctx.
func (r *StatsRepo) Dashboard(ctx context.Context, now time.Time) (*model.DashboardStats, error) {
	var st model.DashboardStats
	g, gctx := errgroup.WithContext(ctx)

	scalar := func(dst *int64, q string, args ...any) {
		g.Go(func() error {
			if err := r.db.QueryRowContext(gctx, q, args...).Scan(dst); err != nil {
				return fmt.Errorf("failed to load dashboard figure: %w", err)
			}
			return nil
		})
	}
	scalar(&st.TotalMovies, `SELECT COUNT(*) FROM movies`)
	scalar(&st.ActiveScreenings, `SELECT COUNT(*) FROM screenings WHERE is_active = 1 AND start_time >= ?`, now.UTC())
	scalar(&st.TotalBookings, `SELECT COUNT(*) FROM bookings`)
	scalar(&st.RevenueCents, `SELECT COALESCE(SUM(total_amount_cents), 0) FROM bookings WHERE status = 'confirmed'`)

	g.Go(func() error {
		recent, err := r.bookings.ListDetails(gctx, BookingFilter{Limit: 5})
		if err != nil {
			return err
		}
		st.RecentBookings = recent
		return nil
	})

	g.Go(func() error {
		const q = `SELECT m.id, m.title, COUNT(b.id) AS bookings
		           FROM movies m
		           JOIN screenings sc ON sc.movie_id = m.id
		           JOIN bookings b ON b.screening_id = sc.id AND b.status <> 'cancelled'
		           GROUP BY m.id, m.title
		           ORDER BY bookings DESC, m.id
		           LIMIT 5`
		rows, err := r.db.QueryContext(gctx, q)
		if err != nil {
			return fmt.Errorf("failed to load popular movies: %w", err)
		}
		defer rows.Close()
		popular := []model.MoviePopularity{}
		for rows.Next() {
			var p model.MoviePopularity
			if err := rows.Scan(&p.MovieID, &p.Title, &p.Bookings); err != nil {
				return err
			}
			popular = append(popular, p)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		st.PopularMovies = popular
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}
