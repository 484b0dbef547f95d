package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// SeatInventory is the part of service.InventoryService the HTTP layer uses.
type SeatInventory interface {
	CreateSeat(ctx context.Context, theatreID uint64, in service.SeatInput) (*model.Seat, error)
	BulkCreateSeats(ctx context.Context, theatreID uint64, rows, perRow int, typ model.SeatType) ([]model.Seat, error)
	UpdateSeat(ctx context.Context, id uint64, p service.SeatPatch) (*model.Seat, error)
	DeleteSeat(ctx context.Context, id uint64) error
	ListTheatreSeats(ctx context.Context, theatreID uint64) ([]model.Seat, error)
}

// SeatHandler serves admin seat management.
type SeatHandler struct {
	Inventory SeatInventory
}

// NewSeatHandler panics on a nil inventory.
func NewSeatHandler(inv SeatInventory) *SeatHandler {
	if inv == nil {
		panic("nil inventory passed to NewSeatHandler")
	}
	return &SeatHandler{Inventory: inv}
}

// List handles GET /v1/admin/theatres/:id/seats.
func (h *SeatHandler) List(c echo.Context) error {
	theatreID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	seats, err := h.Inventory.ListTheatreSeats(c.Request().Context(), theatreID)
	if err != nil {
		return errorResponse(c, err)
	}
	if seats == nil {
		seats = []model.Seat{}
	}
	return c.JSON(http.StatusOK, echo.Map{"theatre_id": theatreID, "seats": seats, "count": len(seats)})
}

// Create handles POST /v1/admin/theatres/:id/seats with
// {"row", "number", "type"}.
func (h *SeatHandler) Create(c echo.Context) error {
	theatreID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var body struct {
		Row    string         `json:"row"`
		Number uint32         `json:"number"`
		Type   model.SeatType `json:"type"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	seat, err := h.Inventory.CreateSeat(c.Request().Context(), theatreID,
		service.SeatInput{Row: body.Row, Number: body.Number, Type: body.Type})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, seat)
}

// BulkCreate handles POST /v1/admin/theatres/:id/seats/bulk with
// {"rows", "seats_per_row", "type"}.
func (h *SeatHandler) BulkCreate(c echo.Context) error {
	theatreID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var body struct {
		Rows        int            `json:"rows"`
		SeatsPerRow int            `json:"seats_per_row"`
		Type        model.SeatType `json:"type"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	seats, err := h.Inventory.BulkCreateSeats(c.Request().Context(), theatreID, body.Rows, body.SeatsPerRow, body.Type)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"theatre_id": theatreID, "seats": seats, "count": len(seats)})
}

// Update handles PUT /v1/admin/seats/:id. Omitted fields are unchanged.
func (h *SeatHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var body struct {
		Row    *string           `json:"row"`
		Number *uint32           `json:"number"`
		Type   *model.SeatType   `json:"type"`
		Status *model.SeatStatus `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	seat, err := h.Inventory.UpdateSeat(c.Request().Context(), id,
		service.SeatPatch{Row: body.Row, Number: body.Number, Type: body.Type, Status: body.Status})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, seat)
}

// Delete handles DELETE /v1/admin/seats/:id.
func (h *SeatHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.Inventory.DeleteSeat(c.Request().Context(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
