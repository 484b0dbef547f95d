package router // package router registers the HTTP routes of the booking API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/handler"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Health     echo.HandlerFunc
	Catalog    *handler.CatalogHandler
	Screenings *handler.ScreeningHandler
	Bookings   *handler.BookingHandler
	Seats      *handler.SeatHandler
	Dashboard  *handler.DashboardHandler
}

// Middlewares carries the cross-cutting middleware built in main. Nil
// entries are skipped.
type Middlewares struct {
	Auth      echo.MiddlewareFunc // JWT validation for /v1/bookings and /v1/admin
	Cache     echo.MiddlewareFunc // response cache for public catalog reads
	RateLimit echo.MiddlewareFunc // token bucket for booking creation
}

// RegisterRoutes mounts the public, booking and admin route groups.
func RegisterRoutes(e *echo.Echo, h Handlers, mw Middlewares) {
	e.GET("/healthz", h.Health)
	registerPublic(e, h, mw)
	registerBookings(e, h.Bookings, mw)
	registerAdmin(e, h, mw)
}

func chain(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
