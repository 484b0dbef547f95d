// Package repository defines the MySQL storage layer and the sentinel
// errors it reports. Higher layers translate these sentinels into the
// booking error taxonomy; they never inspect driver errors themselves.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every per-entity not-found sentinel so callers
// can match either the specific or the generic value.
var ErrNotFound = errors.New("not found")

var (
	ErrMovieNotFound     = fmt.Errorf("movie %w", ErrNotFound)
	ErrTheatreNotFound   = fmt.Errorf("theatre %w", ErrNotFound)
	ErrSeatNotFound      = fmt.Errorf("seat %w", ErrNotFound)
	ErrScreeningNotFound = fmt.Errorf("screening %w", ErrNotFound)
	ErrBookingNotFound   = fmt.Errorf("booking %w", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
)

// ErrActiveBookingExists is returned when an insert hits the unique key that
// admits one non-cancelled booking per screening seat.
var ErrActiveBookingExists = errors.New("seat already has an active booking for this screening")

// ErrDuplicateBookingNumber is returned when a generated booking number
// collides with an existing one. Callers regenerate and retry.
var ErrDuplicateBookingNumber = errors.New("booking number already exists")

// ErrDuplicateSeat is returned when a seat with the same theatre, row and
// number already exists.
var ErrDuplicateSeat = errors.New("seat position already exists in theatre")

// ErrStaleStatus is returned by compare-and-set status updates when the row
// no longer holds the expected status.
var ErrStaleStatus = errors.New("booking status changed concurrently")

// ErrReferenced is returned when a delete is rejected by a foreign key
// because dependent rows still exist.
var ErrReferenced = errors.New("row is still referenced")

// ErrUnavailable is returned by TxManager once transient storage failures
// have exhausted the retry budget.
var ErrUnavailable = errors.New("storage temporarily unavailable")
