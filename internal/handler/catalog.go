package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// MovieStore is the movie persistence the catalog handlers need.
type MovieStore interface {
	Create(ctx context.Context, m *model.Movie) error
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
	List(ctx context.Context, activeOnly bool) ([]model.Movie, error)
	Update(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, id uint64) error
}

// TheatreStore is the theatre persistence the catalog handlers need.
type TheatreStore interface {
	Create(ctx context.Context, t *model.Theatre) error
	GetByID(ctx context.Context, id uint64) (*model.Theatre, error)
	List(ctx context.Context, activeOnly bool) ([]model.Theatre, error)
	Update(ctx context.Context, t *model.Theatre) error
	Delete(ctx context.Context, id uint64) error
}

// CatalogHandler serves movies and theatres. Catalog rows carry no booking
// invariants, so the handlers talk to the repositories directly.
type CatalogHandler struct {
	Movies   MovieStore
	Theatres TheatreStore
}

// NewCatalogHandler panics if either store is nil.
func NewCatalogHandler(movies MovieStore, theatres TheatreStore) *CatalogHandler {
	if movies == nil || theatres == nil {
		panic("nil store passed to NewCatalogHandler")
	}
	return &CatalogHandler{Movies: movies, Theatres: theatres}
}

type movieBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DurationMin *uint32 `json:"duration"`
	Genre       *string `json:"genre"`
	PosterURL   *string `json:"poster_url"`
	TrailerURL  *string `json:"trailer_url"`
	ReleaseDate *string `json:"release_date"` // YYYY-MM-DD
	IsActive    *bool   `json:"is_active"`
}

// apply copies the present fields onto m.
func (b movieBody) apply(m *model.Movie) string {
	if b.Title != nil {
		m.Title = strings.TrimSpace(*b.Title)
	}
	if b.Description != nil {
		m.Description = *b.Description
	}
	if b.DurationMin != nil {
		m.DurationMin = *b.DurationMin
	}
	if b.Genre != nil {
		m.Genre = strings.TrimSpace(*b.Genre)
	}
	if b.PosterURL != nil {
		m.PosterURL = *b.PosterURL
	}
	if b.TrailerURL != nil {
		m.TrailerURL = *b.TrailerURL
	}
	if b.ReleaseDate != nil {
		if s := strings.TrimSpace(*b.ReleaseDate); s == "" {
			m.ReleaseDate = nil
		} else {
			d, err := time.Parse(time.DateOnly, s)
			if err != nil {
				return "invalid release_date format, want YYYY-MM-DD"
			}
			m.ReleaseDate = &d
		}
	}
	if b.IsActive != nil {
		m.IsActive = *b.IsActive
	}
	switch {
	case m.Title == "":
		return "title is required"
	case m.DurationMin == 0:
		return "duration must be positive"
	}
	return ""
}

// ListMovies handles GET /v1/movies. Only active titles are listed.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	list, err := h.Movies.List(c.Request().Context(), true)
	if err != nil {
		return errorResponse(c, err)
	}
	if list == nil {
		list = []model.Movie{}
	}
	return c.JSON(http.StatusOK, echo.Map{"movies": list, "count": len(list)})
}

// GetMovie handles GET /v1/movies/:id.
func (h *CatalogHandler) GetMovie(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	m, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// CreateMovie handles POST /v1/admin/movies.
func (h *CatalogHandler) CreateMovie(c echo.Context) error {
	var body movieBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	m := &model.Movie{IsActive: true}
	if msg := body.apply(m); msg != "" {
		return badRequest(c, msg)
	}
	if err := h.Movies.Create(c.Request().Context(), m); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// UpdateMovie handles PUT /v1/admin/movies/:id.
func (h *CatalogHandler) UpdateMovie(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var body movieBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	ctx := c.Request().Context()
	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return errorResponse(c, err)
	}
	if msg := body.apply(m); msg != "" {
		return badRequest(c, msg)
	}
	if err := h.Movies.Update(ctx, m); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// DeleteMovie handles DELETE /v1/admin/movies/:id. Movies with screenings
// are rejected with 409.
func (h *CatalogHandler) DeleteMovie(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.Movies.Delete(c.Request().Context(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type theatreBody struct {
	Name       *string `json:"name"`
	Capacity   *uint32 `json:"capacity"`
	ScreenType *string `json:"screen_type"`
	PriceCents *int64  `json:"price_cents"`
	Currency   *string `json:"currency"`
	IsActive   *bool   `json:"is_active"`
}

func (b theatreBody) apply(t *model.Theatre) string {
	if b.Name != nil {
		t.Name = strings.TrimSpace(*b.Name)
	}
	if b.Capacity != nil {
		t.Capacity = *b.Capacity
	}
	if b.ScreenType != nil {
		t.ScreenType = strings.TrimSpace(*b.ScreenType)
	}
	if b.PriceCents != nil {
		t.PriceCents = *b.PriceCents
	}
	if b.Currency != nil {
		t.Currency = strings.ToUpper(strings.TrimSpace(*b.Currency))
	}
	if b.IsActive != nil {
		t.IsActive = *b.IsActive
	}
	switch {
	case t.Name == "":
		return "name is required"
	case t.PriceCents < 0:
		return "price_cents must not be negative"
	case t.Currency != "" && len(t.Currency) != 3:
		return "currency must be a 3-letter code"
	}
	return ""
}

// ListTheatres handles GET /v1/theatres.
func (h *CatalogHandler) ListTheatres(c echo.Context) error {
	list, err := h.Theatres.List(c.Request().Context(), true)
	if err != nil {
		return errorResponse(c, err)
	}
	if list == nil {
		list = []model.Theatre{}
	}
	return c.JSON(http.StatusOK, echo.Map{"theatres": list, "count": len(list)})
}

// CreateTheatre handles POST /v1/admin/theatres.
func (h *CatalogHandler) CreateTheatre(c echo.Context) error {
	var body theatreBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	t := &model.Theatre{ScreenType: "2D", IsActive: true}
	if msg := body.apply(t); msg != "" {
		return badRequest(c, msg)
	}
	if err := h.Theatres.Create(c.Request().Context(), t); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// UpdateTheatre handles PUT /v1/admin/theatres/:id.
func (h *CatalogHandler) UpdateTheatre(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var body theatreBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	ctx := c.Request().Context()
	t, err := h.Theatres.GetByID(ctx, id)
	if err != nil {
		return errorResponse(c, err)
	}
	if msg := body.apply(t); msg != "" {
		return badRequest(c, msg)
	}
	if err := h.Theatres.Update(ctx, t); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// DeleteTheatre handles DELETE /v1/admin/theatres/:id. Seats go with the
// theatre; screenings or bookings block the delete with 409.
func (h *CatalogHandler) DeleteTheatre(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.Theatres.Delete(c.Request().Context(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
