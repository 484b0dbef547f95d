package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

type mockMovies struct {
	mock.Mock
}

func (m *mockMovies) Create(ctx context.Context, mv *model.Movie) error {
	args := m.Called(ctx, mv)
	mv.ID = 11
	return args.Error(0)
}

func (m *mockMovies) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	args := m.Called(ctx, id)
	mv, _ := args.Get(0).(*model.Movie)
	return mv, args.Error(1)
}

func (m *mockMovies) List(ctx context.Context, activeOnly bool) ([]model.Movie, error) {
	args := m.Called(ctx, activeOnly)
	l, _ := args.Get(0).([]model.Movie)
	return l, args.Error(1)
}

func (m *mockMovies) Update(ctx context.Context, mv *model.Movie) error {
	return m.Called(ctx, mv).Error(0)
}

func (m *mockMovies) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockTheatres struct {
	mock.Mock
}

func (m *mockTheatres) Create(ctx context.Context, t *model.Theatre) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTheatres) GetByID(ctx context.Context, id uint64) (*model.Theatre, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*model.Theatre)
	return t, args.Error(1)
}

func (m *mockTheatres) List(ctx context.Context, activeOnly bool) ([]model.Theatre, error) {
	args := m.Called(ctx, activeOnly)
	l, _ := args.Get(0).([]model.Theatre)
	return l, args.Error(1)
}

func (m *mockTheatres) Update(ctx context.Context, t *model.Theatre) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTheatres) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

var (
	_ MovieStore   = (*repository.MovieRepo)(nil)
	_ TheatreStore = (*repository.TheatreRepo)(nil)
)

func TestCatalogHandler_CreateMovie(t *testing.T) {
	movies := new(mockMovies)
	movies.On("Create", mock.Anything, mock.MatchedBy(func(m *model.Movie) bool {
		return m.Title == "Arrival" && m.DurationMin == 116 && m.IsActive && m.ReleaseDate != nil
	})).Return(nil).Once()
	h := NewCatalogHandler(movies, new(mockTheatres))

	c, rec := newContext(http.MethodPost, "/v1/admin/movies",
		`{"title":"  Arrival ","duration":116,"release_date":"2016-11-11"}`, admin)
	require.NoError(t, h.CreateMovie(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, float64(11), out["id"])
	assert.Equal(t, "Arrival", out["title"])
	movies.AssertExpectations(t)
}

func TestCatalogHandler_MovieValidation(t *testing.T) {
	tests := map[string]string{
		"no title":     `{"duration":100}`,
		"no duration":  `{"title":"Arrival"}`,
		"bad date":     `{"title":"Arrival","duration":100,"release_date":"11/11/2016"}`,
		"invalid json": `{"title":`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			movies := new(mockMovies)
			c, rec := newContext(http.MethodPost, "/v1/admin/movies", body, admin)
			require.NoError(t, NewCatalogHandler(movies, new(mockTheatres)).CreateMovie(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			movies.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCatalogHandler_UpdateMovieKeepsOmittedFields(t *testing.T) {
	movies := new(mockMovies)
	movies.On("GetByID", mock.Anything, uint64(3)).
		Return(&model.Movie{ID: 3, Title: "Arrival", DurationMin: 116, Genre: "sci-fi", IsActive: true}, nil).Once()
	movies.On("Update", mock.Anything, mock.MatchedBy(func(m *model.Movie) bool {
		return m.Title == "Arrival" && m.Genre == "sci-fi" && !m.IsActive
	})).Return(nil).Once()

	c, rec := newContext(http.MethodPut, "/v1/admin/movies/3", `{"is_active":false}`, admin)
	require.NoError(t, NewCatalogHandler(movies, new(mockTheatres)).UpdateMovie(withID(c, "3")))
	assert.Equal(t, http.StatusOK, rec.Code)
	movies.AssertExpectations(t)
}

func TestCatalogHandler_DeleteErrors(t *testing.T) {
	movies := new(mockMovies)
	movies.On("Delete", mock.Anything, uint64(3)).Return(repository.ErrReferenced).Once()
	theatres := new(mockTheatres)
	theatres.On("Delete", mock.Anything, uint64(4)).Return(repository.ErrNotFound).Once()
	h := NewCatalogHandler(movies, theatres)

	c, rec := newContext(http.MethodDelete, "/v1/admin/movies/3", "", admin)
	require.NoError(t, h.DeleteMovie(withID(c, "3")))
	assert.Equal(t, http.StatusConflict, rec.Code)

	c, rec = newContext(http.MethodDelete, "/v1/admin/theatres/4", "", admin)
	require.NoError(t, h.DeleteTheatre(withID(c, "4")))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	movies.AssertExpectations(t)
	theatres.AssertExpectations(t)
}

func TestCatalogHandler_CreateTheatre(t *testing.T) {
	theatres := new(mockTheatres)
	theatres.On("Create", mock.Anything, mock.MatchedBy(func(th *model.Theatre) bool {
		return th.Name == "Hall 1" && th.ScreenType == "2D" && th.Currency == "USD" && th.IsActive
	})).Return(nil).Once()
	h := NewCatalogHandler(new(mockMovies), theatres)

	c, rec := newContext(http.MethodPost, "/v1/admin/theatres", `{"name":"Hall 1","price_cents":1500,"currency":"usd"}`, admin)
	require.NoError(t, h.CreateTheatre(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newContext(http.MethodPost, "/v1/admin/theatres", `{"name":"Hall 2","currency":"US"}`, admin)
	require.NoError(t, h.CreateTheatre(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newContext(http.MethodPost, "/v1/admin/theatres", `{"name":"Hall 3","price_cents":-1}`, admin)
	require.NoError(t, h.CreateTheatre(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	theatres.AssertExpectations(t)
}
