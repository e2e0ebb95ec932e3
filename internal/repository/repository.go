// Package repository persists and reads the day-bucketed aggregates: the
// coordinate frequency counter, the country hit counter and the geospatial
// index. Buckets are keyed by calendar date and are append-only from the
// pipeline's point of view; entries are incremented, never overwritten.
package repository

import (
	"context"
	"time"

	"github.com/Houeta/meridian/internal/models"
)

// Day-bucket key prefixes. The full key is "<prefix>:<YYYY-MM-DD>" in the
// process's local timezone.
const (
	keyCoordinate = "GEO_COORD"
	keyCountry    = "GEO_COUNTRY"
	keyRadius     = "GEO_RAD"
)

// dateLayout is the calendar-date format of the bucket keys.
const dateLayout = "2006-01-02"

// Interface is the aggregate store contract. Write methods always bucket by
// the current system date; read methods take caller-supplied dates. Repeated
// writes of an identical entry accumulate on one counter, they do not
// deduplicate.
type Interface interface {
	IncrCoordinate(ctx context.Context, entry models.CoordEntry) error
	IncrCountry(ctx context.Context, regionCode string) error
	AddGeoPoint(ctx context.Context, coord models.Coordinates, payload models.GeoPayload) error
	SearchRadius(ctx context.Context, day time.Time, center models.Coordinates, radiusKm float64) ([]models.RadiusHit, error)
	TopCoordinates(ctx context.Context, day time.Time, limit int) ([]models.ScoredEntry, error)
	HitMap(ctx context.Context, day time.Time) ([]models.ScoredEntry, error)
}

// dayKey builds the bucket key of a category prefix for a calendar date.
func dayKey(prefix string, day time.Time) string {
	return prefix + ":" + day.Format(dateLayout)
}
