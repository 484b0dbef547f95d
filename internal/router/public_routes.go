package router

import "github.com/labstack/echo/v4"

// registerPublic mounts the unauthenticated browse endpoints. Catalog reads
// go through the response cache; seat availability never does because it
// must reflect the ledger at the time of the request.
func registerPublic(e *echo.Echo, h Handlers, mw Middlewares) {
	cached := e.Group("/v1", chain(mw.Cache)...)
	cached.GET("/movies", h.Catalog.ListMovies)
	cached.GET("/movies/:id", h.Catalog.GetMovie)
	cached.GET("/theatres", h.Catalog.ListTheatres)
	cached.GET("/screenings", h.Screenings.List)
	cached.GET("/screenings/:id", h.Screenings.Get)

	e.GET("/v1/screenings/:id/available-seats", h.Bookings.AvailableSeats)
	e.GET("/v1/screenings/:id/seats", h.Bookings.SeatMap)
}
