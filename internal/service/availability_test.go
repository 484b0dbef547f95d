package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
)

func TestAvailableSeats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	avail, err := f.ledger.AvailableSeats(ctx, f.screening.ID)
	require.NoError(t, err)
	assert.Equal(t, seatIDs(f.seats), seatIDs(avail))

	f.book(t, customer, f.screening.ID, f.seats[1].ID)
	f.db.setSeatStatus(f.seats[2].ID, model.SeatMaintenance)

	avail, err = f.ledger.AvailableSeats(ctx, f.screening.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{f.seats[0].ID}, seatIDs(avail))

	// The later screening only loses the maintenance seat.
	avail, err = f.ledger.AvailableSeats(ctx, f.later.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{f.seats[0].ID, f.seats[1].ID}, seatIDs(avail))

	_, err = f.ledger.AvailableSeats(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAvailableSeats_CancelledBookingsDoNotCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, customer, f.screening.ID, f.seats[0].ID)
	_, err := f.ledger.TransitionBooking(ctx, customer, b.ID, model.BookingCancelled)
	require.NoError(t, err)

	avail, err := f.ledger.AvailableSeats(ctx, f.screening.ID)
	require.NoError(t, err)
	assert.Len(t, avail, 3)
}

func TestSeatMap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, customer, f.screening.ID, f.seats[0].ID)

	seats, err := f.ledger.SeatMap(ctx, f.screening.ID)
	require.NoError(t, err)
	require.Len(t, seats, 3)
	assert.False(t, seats[0].Available)
	assert.True(t, seats[1].Available)
	assert.True(t, seats[2].Available)
	assert.Equal(t, "A1", seats[0].Label())
}
