package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// openTestDB connects to the database named by TEST_MYSQL_DSN, e.g.
// "root:secret@tcp(127.0.0.1:3306)/cinema_test?parseTime=true&loc=UTC&clientFoundRows=true",
// and applies the migrations. The test is skipped when the variable is unset.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := database.NewMigrator(db, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up(context.Background()))
	return db
}

type mysqlFixture struct {
	userID    uint64
	theatre   model.Theatre
	seat      model.Seat
	screening model.Screening
}

func seedMySQL(t *testing.T, db *sql.DB) mysqlFixture {
	t.Helper()
	ctx := context.Background()
	var f mysqlFixture

	res, err := db.ExecContext(ctx, `INSERT INTO users (email, name) VALUES (?, ?)`,
		fmt.Sprintf("it-%d@example.com", time.Now().UnixNano()), "integration")
	require.NoError(t, err)
	id, _ := res.LastInsertId()
	f.userID = uint64(id)

	movie := model.Movie{Title: "Integration", DurationMin: 100, IsActive: true}
	require.NoError(t, repository.NewMovieRepo(db).Create(ctx, &movie))

	f.theatre = model.Theatre{Name: "IT Hall", ScreenType: "2D", PriceCents: 1500, IsActive: true}
	require.NoError(t, repository.NewTheatreRepo(db).Create(ctx, &f.theatre))

	f.seat = model.Seat{TheatreID: f.theatre.ID, Row: "A", Number: 1, Type: model.SeatRegular, Status: model.SeatAvailable}
	require.NoError(t, repository.NewSeatRepo(db).Create(ctx, &f.seat))

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	f.screening = model.Screening{MovieID: movie.ID, TheatreID: f.theatre.ID, StartTime: start, EndTime: start.Add(2 * time.Hour),
		PriceCents: 1500, IsActive: true}
	require.NoError(t, repository.NewScreeningRepo(db).Create(ctx, &f.screening))
	return f
}

func newBooking(f mysqlFixture, n int) *model.Booking {
	return &model.Booking{
		BookingNumber:    fmt.Sprintf("BKIT%d-%06d", time.Now().UnixNano(), n),
		UserID:           f.userID,
		ScreeningID:      f.screening.ID,
		SeatID:           f.seat.ID,
		TotalAmountCents: 1500,
		Status:           model.BookingPending,
		BookedAt:         time.Now().UTC(),
	}
}

func TestMySQL_ActiveSeatKeyRejectsConcurrentInserts(t *testing.T) {
	db := openTestDB(t)
	f := seedMySQL(t, db)
	bookings := repository.NewBookingRepo(db)
	tx := repository.NewTxManager(db)

	const n = 8
	errs := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			errs[i] = tx.WithTx(context.Background(), func(ctx context.Context) error {
				return bookings.Create(ctx, newBooking(f, i))
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, repository.ErrActiveBookingExists):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)
}

func TestMySQL_CancelledBookingFreesTheKey(t *testing.T) {
	db := openTestDB(t)
	f := seedMySQL(t, db)
	ctx := context.Background()
	bookings := repository.NewBookingRepo(db)

	first := newBooking(f, 1)
	require.NoError(t, bookings.Create(ctx, first))
	require.NoError(t, bookings.UpdateStatus(ctx, first.ID, model.BookingPending, model.BookingCancelled))

	second := newBooking(f, 2)
	require.NoError(t, bookings.Create(ctx, second))

	err := bookings.UpdateStatus(ctx, first.ID, model.BookingPending, model.BookingConfirmed)
	assert.ErrorIs(t, err, repository.ErrStaleStatus)

	active, err := bookings.HasActive(ctx, f.screening.ID, f.seat.ID)
	require.NoError(t, err)
	assert.True(t, active)

	avail, err := repository.NewSeatRepo(db).ListAvailableForScreening(ctx, f.screening.ID, f.theatre.ID)
	require.NoError(t, err)
	assert.Empty(t, avail)
}

func TestMySQL_UnknownUserIsNotFound(t *testing.T) {
	db := openTestDB(t)
	f := seedMySQL(t, db)

	b := newBooking(f, 1)
	b.UserID = f.userID + 1_000_000
	err := repository.NewBookingRepo(db).Create(context.Background(), b)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMySQL_FindOverlapping(t *testing.T) {
	db := openTestDB(t)
	f := seedMySQL(t, db)
	ctx := context.Background()
	screenings := repository.NewScreeningRepo(db)

	s := f.screening
	got, err := screenings.FindOverlapping(ctx, f.theatre.ID, s.StartTime.Add(time.Hour), s.EndTime.Add(time.Hour), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, s.ID, got[0].ID)

	got, err = screenings.FindOverlapping(ctx, f.theatre.ID, s.EndTime, s.EndTime.Add(time.Hour), 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = screenings.FindOverlapping(ctx, f.theatre.ID, s.StartTime, s.EndTime, s.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
