package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/handler"
)

// registerBookings mounts the booking ledger under /v1/bookings. Every
// route requires a valid JWT; ownership is checked by the ledger itself
// because it needs the booking row.
func registerBookings(e *echo.Echo, h *handler.BookingHandler, mw Middlewares) {
	g := e.Group("/v1/bookings", chain(mw.Auth)...)
	g.POST("", h.Create, chain(mw.RateLimit)...)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PATCH("/:id/status", h.UpdateStatus)
	g.DELETE("/:id", h.Delete)
}
