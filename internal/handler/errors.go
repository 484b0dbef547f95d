package handler // handler contains the HTTP handlers of the booking API

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// errorStatus maps a service error to an HTTP status and a stable code.
// Order matters: the first matching sentinel wins.
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrValidation, http.StatusBadRequest, "validation"},
	{service.ErrUnauthorized, http.StatusForbidden, "unauthorized"},
	{service.ErrNotFound, http.StatusNotFound, "not_found"},
	{service.ErrSeatUnavailable, http.StatusConflict, "seat_unavailable"},
	{service.ErrScreeningInThePast, http.StatusUnprocessableEntity, "screening_in_the_past"},
	{service.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{service.ErrConflictingSchedule, http.StatusConflict, "conflicting_schedule"},
	{service.ErrHasDependentBookings, http.StatusConflict, "has_dependent_bookings"},
	{service.ErrDuplicateSeat, http.StatusConflict, "duplicate_seat"},
	{service.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
	// Catalog handlers talk to repositories directly.
	{repository.ErrNotFound, http.StatusNotFound, "not_found"},
	{repository.ErrReferenced, http.StatusConflict, "has_dependent_bookings"},
	{repository.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
}

// errorResponse writes err as {"error": message, "code": code}. Unknown
// errors become a 500 without leaking the underlying message; echo's error
// handler logs them through the request logger.
func errorResponse(c echo.Context, err error) error {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return c.JSON(e.status, echo.Map{"error": err.Error(), "code": e.code})
		}
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error", "code": "internal"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "code": "validation"})
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// parseQueryID reads an optional numeric query parameter; absent means 0.
func parseQueryID(c echo.Context, name string) (uint64, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// parseTime parses an RFC 3339 timestamp; an empty string yields the zero
// time.
func parseTime(s, field string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("invalid " + field + " format, want RFC3339")
	}
	return t.UTC(), nil
}
