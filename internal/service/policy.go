package service

import (
	"fmt"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// Action names a capability checked by Authorize.
type Action string

const (
	ActionCreateBooking     Action = "booking:create"
	ActionViewBooking       Action = "booking:view"
	ActionCancelBooking     Action = "booking:cancel"
	ActionConfirmBooking    Action = "booking:confirm"
	ActionTransitionBooking Action = "booking:transition"
	ActionDeleteBooking     Action = "booking:delete"
	ActionListAllBookings   Action = "booking:list_all"
	ActionManageCatalog     Action = "catalog:manage"
	ActionViewDashboard     Action = "dashboard:view"
)

// Resource describes the object an action targets. OwnerID is zero for
// actions that do not target a single booking.
type Resource struct {
	OwnerID uint64
}

// ownerActions may be performed by the booking's owner as well as by an
// admin.
var ownerActions = map[Action]bool{
	ActionViewBooking:   true,
	ActionCancelBooking: true,
}

// Authorize is the single capability check of the booking core. It returns
// nil when actor may perform action on res, and an error wrapping
// ErrUnauthorized otherwise.
func Authorize(actor model.Actor, action Action, res Resource) error {
	if actor.UserID == 0 {
		return fmt.Errorf("%w: authentication required", ErrUnauthorized)
	}
	if actor.IsAdmin() {
		return nil
	}
	switch {
	case action == ActionCreateBooking:
		return nil
	case ownerActions[action] && res.OwnerID != 0 && res.OwnerID == actor.UserID:
		return nil
	}
	return fmt.Errorf("%w: %s not permitted for user %d", ErrUnauthorized, action, actor.UserID)
}

// transitionAction maps a requested booking status to the capability it
// requires.
func transitionAction(next model.BookingStatus) Action {
	switch next {
	case model.BookingCancelled:
		return ActionCancelBooking
	case model.BookingConfirmed:
		return ActionConfirmBooking
	}
	return ActionTransitionBooking
}
