package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// StatsSource computes the admin dashboard figures.
type StatsSource interface {
	Dashboard(ctx context.Context, now time.Time) (*model.DashboardStats, error)
}

// DashboardHandler serves GET /v1/admin/dashboard.
type DashboardHandler struct {
	Stats StatsSource
	Now   func() time.Time
}

// NewDashboardHandler panics on a nil source.
func NewDashboardHandler(stats StatsSource, now func() time.Time) *DashboardHandler {
	if stats == nil {
		panic("nil stats source passed to NewDashboardHandler")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &DashboardHandler{Stats: stats, Now: now}
}

// Get returns the dashboard summary.
func (h *DashboardHandler) Get(c echo.Context) error {
	stats, err := h.Stats.Dashboard(c.Request().Context(), h.Now())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
