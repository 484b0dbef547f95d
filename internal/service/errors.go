// Package service implements the booking core: the booking ledger, the
// availability query, screening scheduling with its conflict checker, seat
// inventory and the authorization policy shared by all of them.
package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-booking/internal/repository"
)

// Business-rule rejections. Operations wrap them with a detail message;
// match with errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrSeatUnavailable      = errors.New("seat unavailable")
	ErrScreeningInThePast   = errors.New("screening in the past")
	ErrInvalidTransition    = errors.New("invalid transition")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrConflictingSchedule  = errors.New("conflicting schedule")
	ErrHasDependentBookings = errors.New("has dependent bookings")
	ErrDuplicateSeat        = errors.New("duplicate seat")
	ErrValidation           = errors.New("invalid input")
)

// ErrUnavailable reports a storage fault that persisted through the
// transaction retry budget.
var ErrUnavailable = errors.New("service unavailable")

// lookupError converts a repository lookup failure into the taxonomy,
// naming the missing entity.
func lookupError(err error, what string, id uint64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}
	return storageError(err)
}

// storageError maps repository sentinels that can escape a unit of work.
// Errors already in the taxonomy pass through unchanged.
func storageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case errors.Is(err, repository.ErrDuplicateSeat):
		return fmt.Errorf("%w: %v", ErrDuplicateSeat, err)
	case errors.Is(err, repository.ErrReferenced):
		return fmt.Errorf("%w: %v", ErrHasDependentBookings, err)
	case errors.Is(err, repository.ErrActiveBookingExists):
		return fmt.Errorf("%w: %v", ErrSeatUnavailable, err)
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
