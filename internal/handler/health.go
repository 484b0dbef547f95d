package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health returns a health-check endpoint used by load balancers. With a
// non-nil db it also pings the database and answers 503 when it is down.
func Health(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "database": "down"})
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}
}
