package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// BookingLedger is the part of service.BookingService the HTTP layer uses.
type BookingLedger interface {
	CreateBooking(ctx context.Context, actor model.Actor, screeningID, seatID uint64) (*model.Booking, error)
	TransitionBooking(ctx context.Context, actor model.Actor, bookingID uint64, next model.BookingStatus) (*model.Booking, error)
	DeleteBooking(ctx context.Context, actor model.Actor, bookingID uint64) error
	ListBookings(ctx context.Context, actor model.Actor, scope service.Scope) ([]model.BookingDetail, error)
	GetBooking(ctx context.Context, actor model.Actor, bookingID uint64) (*model.Booking, error)
	AvailableSeats(ctx context.Context, screeningID uint64) ([]model.Seat, error)
	SeatMap(ctx context.Context, screeningID uint64) ([]model.SeatAvailability, error)
}

// BookingHandler serves the booking ledger and the availability queries.
type BookingHandler struct {
	Ledger BookingLedger
}

// NewBookingHandler panics on a nil ledger.
func NewBookingHandler(ledger BookingLedger) *BookingHandler {
	if ledger == nil {
		panic("nil ledger passed to NewBookingHandler")
	}
	return &BookingHandler{Ledger: ledger}
}

// Create handles POST /v1/bookings with {"screening_id", "seat_id"}. The
// booking is created pending and returned with 201.
func (h *BookingHandler) Create(c echo.Context) error {
	var body struct {
		ScreeningID uint64 `json:"screening_id"`
		SeatID      uint64 `json:"seat_id"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.ScreeningID == 0 || body.SeatID == 0 {
		return badRequest(c, "screening_id and seat_id are required")
	}
	b, err := h.Ledger.CreateBooking(c.Request().Context(), middleware.ActorFrom(c), body.ScreeningID, body.SeatID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// List handles GET /v1/bookings?scope=self|all.
func (h *BookingHandler) List(c echo.Context) error {
	scope, err := service.ParseScope(c.QueryParam("scope"))
	if err != nil {
		return errorResponse(c, err)
	}
	list, err := h.Ledger.ListBookings(c.Request().Context(), middleware.ActorFrom(c), scope)
	if err != nil {
		return errorResponse(c, err)
	}
	if list == nil {
		list = []model.BookingDetail{}
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list, "count": len(list)})
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	b, err := h.Ledger.GetBooking(c.Request().Context(), middleware.ActorFrom(c), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// UpdateStatus handles PATCH /v1/bookings/:id/status with {"status"}.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var body struct {
		Status model.BookingStatus `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Status == "" {
		return badRequest(c, "status is required")
	}
	b, err := h.Ledger.TransitionBooking(c.Request().Context(), middleware.ActorFrom(c), id, body.Status)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Delete handles DELETE /v1/bookings/:id (admin only).
func (h *BookingHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.Ledger.DeleteBooking(c.Request().Context(), middleware.ActorFrom(c), id); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AvailableSeats handles GET /v1/screenings/:id/available-seats.
func (h *BookingHandler) AvailableSeats(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	seats, err := h.Ledger.AvailableSeats(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	if seats == nil {
		seats = []model.Seat{}
	}
	return c.JSON(http.StatusOK, echo.Map{"screening_id": id, "seats": seats, "count": len(seats)})
}

// SeatMap handles GET /v1/screenings/:id/seats: every seat with its
// availability flag.
func (h *BookingHandler) SeatMap(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	seats, err := h.Ledger.SeatMap(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	if seats == nil {
		seats = []model.SeatAvailability{}
	}
	return c.JSON(http.StatusOK, echo.Map{"screening_id": id, "seats": seats})
}
