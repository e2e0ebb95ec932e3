package handler_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Houeta/meridian/internal/handler"
	"github.com/Houeta/meridian/internal/models"
	"github.com/Houeta/meridian/internal/resolver"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) RecordFromIP(ctx context.Context, ip, categ string) error {
	return m.Called(ctx, ip, categ).Error(0)
}

func (m *mockService) RecordFromPhone(ctx context.Context, number, categ string) error {
	return m.Called(ctx, number, categ).Error(0)
}

func (m *mockService) CoordinatesByRadius(
	ctx context.Context,
	dateStart, dateEnd time.Time,
	center models.Coordinates,
	radiusKm float64,
) ([]models.ClusterGroup, error) {
	args := m.Called(ctx, dateStart, dateEnd, center, radiusKm)
	if groups := args.Get(0); groups != nil {
		return groups.([]models.ClusterGroup), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) TopCoordinates(ctx context.Context, day time.Time) ([]models.ScoredEntry, error) {
	args := m.Called(ctx, day)
	if entries := args.Get(0); entries != nil {
		return entries.([]models.ScoredEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) HitMap(ctx context.Context, day time.Time) ([]models.ScoredEntry, error) {
	args := m.Called(ctx, day)
	if entries := args.Get(0); entries != nil {
		return entries.([]models.ScoredEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestRouter(service *mockService) http.Handler {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	router := chi.NewRouter()
	handler.New(service, logger).Register(router)
	return router
}

func TestRecordEndpoints(t *testing.T) {
	t.Run("accepted ip sighting returns 202", func(t *testing.T) {
		service := new(mockService)
		service.On("RecordFromIP", mock.Anything, "8.8.8.8", "Map").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/geo/ip", strings.NewReader(`{"ip":"8.8.8.8","categ":"Map"}`))
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		service.AssertExpectations(t)
	})

	t.Run("accepted phone sighting returns 202", func(t *testing.T) {
		service := new(mockService)
		service.On("RecordFromPhone", mock.Anything, "+33612345678", "Map").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/geo/phone",
			strings.NewReader(`{"number":"+33612345678","categ":"Map"}`))
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		service.AssertExpectations(t)
	})

	t.Run("dropped sighting returns 422 with the reason", func(t *testing.T) {
		service := new(mockService)
		service.On("RecordFromIP", mock.Anything, "not-an-ip", "Map").
			Return(resolver.ErrMalformedInput).Once()

		req := httptest.NewRequest(http.MethodPost, "/geo/ip", strings.NewReader(`{"ip":"not-an-ip","categ":"Map"}`))
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.JSONEq(t, `{"error":"identifier could not be parsed"}`, rec.Body.String())
	})

	t.Run("store failure returns 500 without the internal error", func(t *testing.T) {
		service := new(mockService)
		service.On("RecordFromIP", mock.Anything, "8.8.8.8", "Map").Return(assert.AnError).Once()

		req := httptest.NewRequest(http.MethodPost, "/geo/ip", strings.NewReader(`{"ip":"8.8.8.8","categ":"Map"}`))
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		service := new(mockService)

		req := httptest.NewRequest(http.MethodPost, "/geo/ip", strings.NewReader(`not json`))
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "RecordFromIP", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing ip returns 400", func(t *testing.T) {
		service := new(mockService)

		req := httptest.NewRequest(http.MethodPost, "/geo/ip", strings.NewReader(`{"categ":"Map"}`))
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRadiusEndpoint(t *testing.T) {
	t.Run("returns the merged groups", func(t *testing.T) {
		service := new(mockService)
		start := time.Date(2026, 8, 29, 0, 0, 0, 0, time.Local)
		end := time.Date(2026, 8, 30, 0, 0, 0, 0, time.Local)
		service.On("CoordinatesByRadius", mock.Anything, start, end,
			models.Coordinates{Lat: 48.85, Lon: 2.35}, 50.0).
			Return([]models.ClusterGroup{
				{Members: []string{"a", "b"}, Coord: models.Coordinates{Lat: 48.8566, Lon: 2.3522}},
			}, nil).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/geo/radius?start=2026-08-29&end=2026-08-30&lat=48.85&lon=2.35&radius=50", nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t,
			`[{"members":["a","b"],"coord":{"lat":48.8566,"lon":2.3522}}]`,
			rec.Body.String())
		service.AssertExpectations(t)
	})

	t.Run("bad date returns 400", func(t *testing.T) {
		service := new(mockService)

		req := httptest.NewRequest(http.MethodGet,
			"/geo/radius?start=yesterday&end=2026-08-30&lat=48.85&lon=2.35&radius=50", nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "CoordinatesByRadius",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad radius returns 400", func(t *testing.T) {
		service := new(mockService)

		req := httptest.NewRequest(http.MethodGet,
			"/geo/radius?start=2026-08-29&end=2026-08-30&lat=48.85&lon=2.35&radius=wide", nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("query failure returns 500", func(t *testing.T) {
		service := new(mockService)
		service.On("CoordinatesByRadius", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, assert.AnError).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/geo/radius?start=2026-08-29&end=2026-08-30&lat=48.85&lon=2.35&radius=50", nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestScoredQueryEndpoints(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.Local)

	t.Run("top returns the scored entries", func(t *testing.T) {
		service := new(mockService)
		service.On("TopCoordinates", mock.Anything, day).
			Return([]models.ScoredEntry{{Member: `{"lat":46,"lon":2}`, Score: 3}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/geo/top?date=2026-08-30", nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[{"member":"{\"lat\":46,\"lon\":2}","score":3}]`, rec.Body.String())
	})

	t.Run("hitmap returns the scored entries", func(t *testing.T) {
		service := new(mockService)
		service.On("HitMap", mock.Anything, day).
			Return([]models.ScoredEntry{{Member: "FR", Score: 5}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/geo/hitmap?date=2026-08-30", nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[{"member":"FR","score":5}]`, rec.Body.String())
	})

	t.Run("missing date returns 400", func(t *testing.T) {
		service := new(mockService)

		req := httptest.NewRequest(http.MethodGet, "/geo/top", nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "TopCoordinates", mock.Anything, mock.Anything)
	})

	t.Run("query failure returns 500", func(t *testing.T) {
		service := new(mockService)
		service.On("HitMap", mock.Anything, day).Return(nil, assert.AnError).Once()

		req := httptest.NewRequest(http.MethodGet, "/geo/hitmap?date=2026-08-30", nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
