// Package service wires resolution, validation, aggregation and publishing
// into the sighting pipeline, and answers the read queries over the per-day
// aggregates.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Houeta/meridian/internal/geo"
	"github.com/Houeta/meridian/internal/lookup"
	"github.com/Houeta/meridian/internal/metrics"
	"github.com/Houeta/meridian/internal/models"
	"github.com/Houeta/meridian/internal/publisher"
	"github.com/Houeta/meridian/internal/repository"
	"github.com/Houeta/meridian/internal/resolver"
)

// defaultTopCount is how many entries the top-coordinates query returns.
const defaultTopCount = 6

// Sighting sources, used for logging and metrics labels.
const (
	sourceIP    = "ip"
	sourcePhone = "phone"
)

// GeoService processes one sighting end-to-end and serves the query path.
// It keeps no mutable state between calls; all counters live in the store,
// so concurrent callers need no coordination here.
type GeoService struct {
	log           *slog.Logger         // Logger for logging service activities
	repo          repository.Interface // Day-bucketed aggregate store
	ipResolver    resolver.Resolver    // Resolver for IP address sightings
	phoneResolver resolver.Resolver    // Resolver for phone number sightings
	publisher     publisher.Interface  // Event fan-out for accepted sightings
	metrics       *metrics.Metrics     // Metrics for tracking pipeline outcomes
	threshold     float64              // Coordinate-space clustering threshold
}

// NewGeoService creates a new instance of GeoService. The clustering
// distance is given in meters and mapped once to the coordinate-space
// threshold used by radius queries.
func NewGeoService(
	log *slog.Logger,
	repo repository.Interface,
	ipResolver resolver.Resolver,
	phoneResolver resolver.Resolver,
	pub publisher.Interface,
	appMetrics *metrics.Metrics,
	clusterDistanceMeters float64,
) *GeoService {
	return &GeoService{
		log:           log,
		repo:          repo,
		ipResolver:    ipResolver,
		phoneResolver: phoneResolver,
		publisher:     pub,
		metrics:       appMetrics,
		threshold:     geo.ClusterThreshold(clusterDistanceMeters),
	}
}

// RecordFromIP resolves an IP address sighting and records it. Resolution
// and validation failures drop the sighting with a logged warning; the
// returned error carries the typed failure for the caller to inspect.
func (gs *GeoService) RecordFromIP(ctx context.Context, ip, categ string) error {
	return gs.record(ctx, sourceIP, gs.ipResolver, ip, categ)
}

// RecordFromPhone resolves a phone number sighting and records it.
func (gs *GeoService) RecordFromPhone(ctx context.Context, number, categ string) error {
	return gs.record(ctx, sourcePhone, gs.phoneResolver, number, categ)
}

// record runs the resolve, validate, aggregate, publish pipeline for one
// sighting. Failures never terminate the process and are never retried: a
// sighting is either fully accepted or dropped where it failed. The one
// exception is a rejected geospatial insert, which skips only that write
// since the counters were already updated and the condition is not
// retryable.
func (gs *GeoService) record(ctx context.Context, source string, res resolver.Resolver, value, categ string) error {
	location, err := res.Resolve(ctx, value)
	if err != nil {
		gs.log.WarnContext(ctx, "Failed to resolve sighting", "source", source, "value", value, "error", err)
		gs.dropped(source, err)
		return err
	}

	coord := location.Coordinates
	if !geo.Valid(coord.Lat, coord.Lon) {
		err = geo.ErrInvalidCoordinate
		gs.log.WarnContext(ctx, "Resolved coordinate failed validation",
			"source", source, "value", value, "lat", coord.Lat, "lon", coord.Lon)
		gs.dropped(source, err)
		return err
	}

	entry := models.CoordEntry{Lat: coord.Lat, Lon: coord.Lon, Categ: categ, Value: value}
	if err = gs.repo.IncrCoordinate(ctx, entry); err != nil {
		gs.log.ErrorContext(ctx, "Failed to record coordinate counter", "value", value, "error", err)
		gs.metrics.StoreWriteFailures.Inc()
		gs.dropped(source, err)
		return err
	}
	if err = gs.repo.IncrCountry(ctx, location.RegionCode); err != nil {
		gs.log.ErrorContext(ctx, "Failed to record country counter", "value", value, "error", err)
		gs.metrics.StoreWriteFailures.Inc()
		gs.dropped(source, err)
		return err
	}
	if err = gs.repo.AddGeoPoint(ctx, coord, models.GeoPayload{Categ: categ, Value: value}); err != nil {
		// Not retryable and already logged with a hint by the store; the
		// counters above are in place, so the pipeline continues.
		gs.metrics.StoreWriteFailures.Inc()
	}

	event := models.GeoEvent{
		Coord:           coord,
		Categ:           categ,
		Value:           value,
		Country:         location.CountryName,
		SubdivisionName: location.SubdivisionName,
		CityName:        location.CityName,
		RegionCode:      location.RegionCode,
	}
	if err = gs.publisher.Publish(ctx, event); err != nil {
		gs.log.ErrorContext(ctx, "Failed to publish event", "value", value, "error", err)
		gs.dropped(source, err)
		return err
	}

	gs.metrics.SightingsProcessed.WithLabelValues(source, "accepted").Inc()
	return nil
}

// dropped counts one dropped sighting with its classified failure reason.
func (gs *GeoService) dropped(source string, err error) {
	gs.metrics.SightingsProcessed.WithLabelValues(source, "dropped").Inc()
	gs.metrics.ResolutionFailures.WithLabelValues(failureReason(err)).Inc()
}

// failureReason maps a pipeline error to its metrics label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, resolver.ErrMalformedInput):
		return "malformed_input"
	case errors.Is(err, resolver.ErrNotFound):
		return "not_found"
	case errors.Is(err, lookup.ErrMissingEntry):
		return "missing_lookup_entry"
	case errors.Is(err, geo.ErrInvalidCoordinate):
		return "invalid_coordinate"
	default:
		return "store"
	}
}

// CoordinatesByRadius collects every geo-indexed point of each day in the
// inclusive [dateStart, dateEnd] range that falls inside the query circle,
// and merges near-identical points into groups.
//
// The merge is a greedy single pass in bucket visit order: the first
// existing group (insertion order) whose representative coordinate is within
// the clustering threshold absorbs the point, otherwise the point starts a
// new group keyed by its own coordinate. Representatives never move, so
// groupings are order dependent and not transitive. That is accepted
// behavior, not something to correct: consumers rely on the exact grouping.
func (gs *GeoService) CoordinatesByRadius(
	ctx context.Context,
	dateStart, dateEnd time.Time,
	center models.Coordinates,
	radiusKm float64,
) ([]models.ClusterGroup, error) {
	timer := prometheus.NewTimer(gs.metrics.RadiusQuerySeconds)
	defer timer.ObserveDuration()

	groups := []models.ClusterGroup{}
	for day := dateStart; !day.After(dateEnd); day = day.AddDate(0, 0, 1) {
		hits, err := gs.repo.SearchRadius(ctx, day, center, radiusKm)
		if err != nil {
			return nil, err
		}
		for _, hit := range hits {
			groups = gs.merge(groups, hit)
		}
	}

	gs.log.DebugContext(ctx, "Radius query finished",
		"start", dateStart.Format("2006-01-02"),
		"end", dateEnd.Format("2006-01-02"),
		"groups", len(groups))
	return groups, nil
}

// merge adds one point to the first close-enough group, or appends a new
// group for it.
func (gs *GeoService) merge(groups []models.ClusterGroup, hit models.RadiusHit) []models.ClusterGroup {
	for idx := range groups {
		if geo.CloseTo(groups[idx].Coord, hit.Coord, gs.threshold) {
			groups[idx].Members = append(groups[idx].Members, hit.Member)
			return groups
		}
	}
	return append(groups, models.ClusterGroup{
		Members: []string{hit.Member},
		Coord:   hit.Coord,
	})
}

// TopCoordinates returns the highest-frequency coordinate entries recorded
// on one day, capped at the default count.
func (gs *GeoService) TopCoordinates(ctx context.Context, day time.Time) ([]models.ScoredEntry, error) {
	return gs.repo.TopCoordinates(ctx, day, defaultTopCount)
}

// HitMap returns every country hit counter recorded on one day.
func (gs *GeoService) HitMap(ctx context.Context, day time.Time) ([]models.ScoredEntry, error) {
	return gs.repo.HitMap(ctx, day)
}
