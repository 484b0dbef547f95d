package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// bookingTransitions lists every permitted status change. Cancelled has no
// outgoing edges.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCancelled},
}

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// Active reports whether a booking in this status holds its seat.
func (s BookingStatus) Active() bool {
	return s != BookingCancelled
}

// CanTransitionTo reports whether a booking may move from s to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking links one user to one seat for one screening. TotalAmountCents is
// a snapshot of the screening price taken when the booking was created.
type Booking struct {
	ID               uint64        `json:"id"`                 // bookings.id
	BookingNumber    string        `json:"booking_number"`     // bookings.booking_number (unique)
	UserID           uint64        `json:"user_id"`            // bookings.user_id
	ScreeningID      uint64        `json:"screening_id"`       // bookings.screening_id
	SeatID           uint64        `json:"seat_id"`            // bookings.seat_id
	TotalAmountCents int64         `json:"total_amount_cents"` // bookings.total_amount_cents
	Status           BookingStatus `json:"status"`             // bookings.status
	BookedAt         time.Time     `json:"booked_at"`          // bookings.booked_at
	CreatedAt        time.Time     `json:"created_at"`         // bookings.created_at
	UpdatedAt        time.Time     `json:"updated_at"`         // bookings.updated_at
}

// BookingDetail is a booking with the movie, theatre, seat and schedule
// fields needed to render it in a list.
type BookingDetail struct {
	Booking
	MovieTitle  string    `json:"movie_title"`
	TheatreName string    `json:"theatre_name"`
	SeatRow     string    `json:"seat_row"`
	SeatNumber  uint32    `json:"seat_number"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}
