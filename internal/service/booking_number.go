package service

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// bookingNumberPrefix starts every booking number.
const bookingNumberPrefix = "BK"

// NumberGenerator produces a booking number for a booking created at now.
type NumberGenerator func(now time.Time) (string, error)

// NewBookingNumber returns "BK" + UTC timestamp (YYYYMMDDHHMMSS) + "-" + six
// random hex digits, e.g. BK20250110140000-3FA9C1. Uniqueness is enforced
// by the bookings.booking_number unique key; callers regenerate on a
// collision.
func NewBookingNumber(now time.Time) (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return bookingNumberPrefix + now.UTC().Format("20060102150405") + "-" + strings.ToUpper(hex.EncodeToString(buf)), nil
}
