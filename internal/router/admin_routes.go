package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// registerAdmin mounts catalog, scheduling and seat management under
// /v1/admin. All routes require the catalog:manage capability except the
// dashboard, which requires dashboard:view.
func registerAdmin(e *echo.Echo, h Handlers, mw Middlewares) {
	admin := e.Group("/v1/admin", chain(mw.Auth)...)
	admin.GET("/dashboard", h.Dashboard.Get, middleware.RequireAction(service.ActionViewDashboard))

	g := admin.Group("", middleware.RequireAction(service.ActionManageCatalog))

	g.POST("/movies", h.Catalog.CreateMovie)
	g.PUT("/movies/:id", h.Catalog.UpdateMovie)
	g.DELETE("/movies/:id", h.Catalog.DeleteMovie)

	g.POST("/theatres", h.Catalog.CreateTheatre)
	g.PUT("/theatres/:id", h.Catalog.UpdateTheatre)
	g.DELETE("/theatres/:id", h.Catalog.DeleteTheatre)
	g.GET("/theatres/:id/schedule-conflicts", h.Screenings.Conflicts)
	g.GET("/theatres/:id/seats", h.Seats.List)
	g.POST("/theatres/:id/seats", h.Seats.Create)
	g.POST("/theatres/:id/seats/bulk", h.Seats.BulkCreate)

	g.PUT("/seats/:id", h.Seats.Update)
	g.DELETE("/seats/:id", h.Seats.Delete)

	g.POST("/screenings", h.Screenings.Create)
	g.PUT("/screenings/:id", h.Screenings.Update)
	g.DELETE("/screenings/:id", h.Screenings.Delete)
}
