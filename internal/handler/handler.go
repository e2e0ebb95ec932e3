// Package handler exposes the sighting pipeline and the aggregate queries
// over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Houeta/meridian/internal/geo"
	"github.com/Houeta/meridian/internal/lookup"
	"github.com/Houeta/meridian/internal/models"
	"github.com/Houeta/meridian/internal/resolver"
)

// dateLayout is the calendar-date format of query parameters.
const dateLayout = "2006-01-02"

// Service defines the pipeline and query operations the handler exposes.
type Service interface {
	RecordFromIP(ctx context.Context, ip, categ string) error
	RecordFromPhone(ctx context.Context, number, categ string) error
	CoordinatesByRadius(ctx context.Context, dateStart, dateEnd time.Time, center models.Coordinates, radiusKm float64) ([]models.ClusterGroup, error)
	TopCoordinates(ctx context.Context, day time.Time) ([]models.ScoredEntry, error)
	HitMap(ctx context.Context, day time.Time) ([]models.ScoredEntry, error)
}

// Handler wires the geo endpoints to the service.
type Handler struct {
	service Service
	log     *slog.Logger
}

// New constructs a handler with its dependencies.
func New(service Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Register mounts the geo endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/geo/ip", h.handleRecordIP)
	r.Post("/geo/phone", h.handleRecordPhone)
	r.Get("/geo/radius", h.handleRadius)
	r.Get("/geo/top", h.handleTop)
	r.Get("/geo/hitmap", h.handleHitMap)
}

type recordIPRequest struct {
	IP    string `json:"ip"`
	Categ string `json:"categ"`
}

type recordPhoneRequest struct {
	Number string `json:"number"`
	Categ  string `json:"categ"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleRecordIP handles POST /geo/ip requests.
func (h *Handler) handleRecordIP(w http.ResponseWriter, r *http.Request) {
	var req recordIPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IP == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be JSON with a non-empty ip"})
		return
	}
	h.record(w, r, func(ctx context.Context) error {
		return h.service.RecordFromIP(ctx, req.IP, req.Categ)
	})
}

// handleRecordPhone handles POST /geo/phone requests.
func (h *Handler) handleRecordPhone(w http.ResponseWriter, r *http.Request) {
	var req recordPhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Number == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be JSON with a non-empty number"})
		return
	}
	h.record(w, r, func(ctx context.Context) error {
		return h.service.RecordFromPhone(ctx, req.Number, req.Categ)
	})
}

// record runs one pipeline call and maps its outcome to a status code:
// accepted sightings return 202, dropped sightings 422 with the reason,
// store and publish failures 500.
func (h *Handler) record(w http.ResponseWriter, r *http.Request, call func(ctx context.Context) error) {
	err := call(r.Context())
	switch {
	case err == nil:
		w.WriteHeader(http.StatusAccepted)
	case errors.Is(err, resolver.ErrMalformedInput),
		errors.Is(err, resolver.ErrNotFound),
		errors.Is(err, lookup.ErrMissingEntry),
		errors.Is(err, geo.ErrInvalidCoordinate):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to record sighting"})
	}
}

// handleRadius handles GET /geo/radius requests.
func (h *Handler) handleRadius(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	start, err := time.ParseInLocation(dateLayout, query.Get("start"), time.Local)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "start must be a YYYY-MM-DD date"})
		return
	}
	end, err := time.ParseInLocation(dateLayout, query.Get("end"), time.Local)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "end must be a YYYY-MM-DD date"})
		return
	}
	lat, err := strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "lat must be a number"})
		return
	}
	lon, err := strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "lon must be a number"})
		return
	}
	radius, err := strconv.ParseFloat(query.Get("radius"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "radius must be a number of kilometers"})
		return
	}

	groups, err := h.service.CoordinatesByRadius(r.Context(), start, end, models.Coordinates{Lat: lat, Lon: lon}, radius)
	if err != nil {
		h.log.ErrorContext(r.Context(), "Radius query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to query points"})
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// handleTop handles GET /geo/top requests.
func (h *Handler) handleTop(w http.ResponseWriter, r *http.Request) {
	h.scoredQuery(w, r, h.service.TopCoordinates)
}

// handleHitMap handles GET /geo/hitmap requests.
func (h *Handler) handleHitMap(w http.ResponseWriter, r *http.Request) {
	h.scoredQuery(w, r, h.service.HitMap)
}

func (h *Handler) scoredQuery(
	w http.ResponseWriter,
	r *http.Request,
	query func(ctx context.Context, day time.Time) ([]models.ScoredEntry, error),
) {
	day, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("date"), time.Local)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be a YYYY-MM-DD date"})
		return
	}

	entries, err := query(r.Context(), day)
	if err != nil {
		h.log.ErrorContext(r.Context(), "Counter query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to query counters"})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
