package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// Scheduler is the part of service.ScheduleService the HTTP layer uses.
type Scheduler interface {
	CreateScreening(ctx context.Context, in service.ScreeningInput) (*model.Screening, error)
	UpdateScreening(ctx context.Context, id uint64, in service.ScreeningInput) (*model.Screening, error)
	DeleteScreening(ctx context.Context, id uint64) error
	GetScreening(ctx context.Context, id uint64) (*model.ScreeningDetail, error)
	ListUpcoming(ctx context.Context, movieID uint64) ([]model.ScreeningDetail, error)
	Conflicts(ctx context.Context, theatreID uint64, start, end time.Time, excludeID uint64) ([]model.Screening, error)
}

// ScreeningHandler serves public screening reads and admin scheduling.
type ScreeningHandler struct {
	Schedule Scheduler
}

// NewScreeningHandler panics on a nil scheduler.
func NewScreeningHandler(s Scheduler) *ScreeningHandler {
	if s == nil {
		panic("nil scheduler passed to NewScreeningHandler")
	}
	return &ScreeningHandler{Schedule: s}
}

type screeningBody struct {
	MovieID    uint64 `json:"movie_id"`
	TheatreID  uint64 `json:"theatre_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	PriceCents *int64 `json:"price_cents"`
	IsActive   *bool  `json:"is_active"`
}

func (b screeningBody) input() (service.ScreeningInput, error) {
	start, err := parseTime(b.StartTime, "start_time")
	if err != nil {
		return service.ScreeningInput{}, err
	}
	end, err := parseTime(b.EndTime, "end_time")
	if err != nil {
		return service.ScreeningInput{}, err
	}
	return service.ScreeningInput{
		MovieID:    b.MovieID,
		TheatreID:  b.TheatreID,
		StartTime:  start,
		EndTime:    end,
		PriceCents: b.PriceCents,
		IsActive:   b.IsActive,
	}, nil
}

// List handles GET /v1/screenings?movie_id=.
func (h *ScreeningHandler) List(c echo.Context) error {
	movieID, err := parseQueryID(c, "movie_id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	list, err := h.Schedule.ListUpcoming(c.Request().Context(), movieID)
	if err != nil {
		return errorResponse(c, err)
	}
	if list == nil {
		list = []model.ScreeningDetail{}
	}
	return c.JSON(http.StatusOK, echo.Map{"screenings": list, "count": len(list)})
}

// Get handles GET /v1/screenings/:id.
func (h *ScreeningHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	d, err := h.Schedule.GetScreening(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Create handles POST /v1/admin/screenings.
func (h *ScreeningHandler) Create(c echo.Context) error {
	var body screeningBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.MovieID == 0 || body.TheatreID == 0 {
		return badRequest(c, "movie_id and theatre_id are required")
	}
	in, err := body.input()
	if err != nil {
		return badRequest(c, err.Error())
	}
	sc, err := h.Schedule.CreateScreening(c.Request().Context(), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, sc)
}

// Update handles PUT /v1/admin/screenings/:id. Omitted fields keep their
// current values.
func (h *ScreeningHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var body screeningBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	in, err := body.input()
	if err != nil {
		return badRequest(c, err.Error())
	}
	sc, err := h.Schedule.UpdateScreening(c.Request().Context(), id, in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, sc)
}

// Delete handles DELETE /v1/admin/screenings/:id.
func (h *ScreeningHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.Schedule.DeleteScreening(c.Request().Context(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Conflicts handles GET /v1/admin/theatres/:id/schedule-conflicts. It
// reports whether [start_time, end_time) would clash and with which
// screenings.
func (h *ScreeningHandler) Conflicts(c echo.Context) error {
	theatreID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	start, err := parseTime(c.QueryParam("start_time"), "start_time")
	if err != nil {
		return badRequest(c, err.Error())
	}
	end, err := parseTime(c.QueryParam("end_time"), "end_time")
	if err != nil {
		return badRequest(c, err.Error())
	}
	exclude, err := parseQueryID(c, "exclude_id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	overlaps, err := h.Schedule.Conflicts(c.Request().Context(), theatreID, start, end, exclude)
	if err != nil {
		return errorResponse(c, err)
	}
	if overlaps == nil {
		overlaps = []model.Screening{}
	}
	return c.JSON(http.StatusOK, echo.Map{"conflict": len(overlaps) > 0, "screenings": overlaps})
}
