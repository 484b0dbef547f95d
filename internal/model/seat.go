package model

import (
	"strconv"
	"time"
)

// SeatStatus is the theatre-wide status hint stored on a seat row. It is
// maintained by the booking ledger for convenience views only; per-screening
// occupancy is always derived from bookings.
type SeatStatus string

const (
	SeatAvailable   SeatStatus = "available"
	SeatBooked      SeatStatus = "booked"
	SeatMaintenance SeatStatus = "maintenance"
)

// Valid reports whether s is a known seat status.
func (s SeatStatus) Valid() bool {
	switch s {
	case SeatAvailable, SeatBooked, SeatMaintenance:
		return true
	}
	return false
}

// SeatType classifies the physical seat.
type SeatType string

const (
	SeatRegular    SeatType = "regular"
	SeatPremium    SeatType = "premium"
	SeatWheelchair SeatType = "wheelchair"
)

// Valid reports whether t is a known seat type.
func (t SeatType) Valid() bool {
	switch t {
	case SeatRegular, SeatPremium, SeatWheelchair:
		return true
	}
	return false
}

// Seat describes a physical seat in a theatre. Seats are uniquely
// identified by their theatre, row label and seat number and are reused by
// every screening in that theatre.
type Seat struct {
	ID        uint64     `json:"id"`         // seats.id
	TheatreID uint64     `json:"theatre_id"` // seats.theatre_id
	Row       string     `json:"row"`        // seats.row_label
	Number    uint32     `json:"number"`     // seats.seat_number
	Type      SeatType   `json:"type"`       // seats.seat_type
	Status    SeatStatus `json:"status"`     // seats.status (hint)
	CreatedAt time.Time  `json:"created_at"` // seats.created_at
	UpdatedAt time.Time  `json:"updated_at"` // seats.updated_at
}

// Label returns the printable seat identity, e.g. "C12".
func (s Seat) Label() string {
	return s.Row + strconv.FormatUint(uint64(s.Number), 10)
}

// SeatAvailability pairs a seat with its occupancy for one screening.
type SeatAvailability struct {
	Seat
	Available bool `json:"available"`
}
