package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Houeta/meridian/internal/models"
)

// Repository is the Redis implementation of Interface, backed by per-day
// sorted sets and a per-day geospatial index.
type Repository struct {
	db  redis.Cmdable
	log *slog.Logger
	now func() time.Time
}

// NewRepository creates a Redis-backed repository. The clock is the system
// clock; tests may override it with WithClock.
func NewRepository(db redis.Cmdable, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log, now: time.Now}
}

// WithClock replaces the clock used to derive write-time day buckets.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// IncrCoordinate increments the current day's frequency counter for the
// serialized coordinate entry by one.
func (r *Repository) IncrCoordinate(ctx context.Context, entry models.CoordEntry) error {
	member, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to serialize coordinate entry: %w", err)
	}
	return r.incr(ctx, keyCoordinate, string(member))
}

// IncrCountry increments the current day's hit counter for a region code by
// one.
func (r *Repository) IncrCountry(ctx context.Context, regionCode string) error {
	return r.incr(ctx, keyCountry, regionCode)
}

func (r *Repository) incr(ctx context.Context, prefix, member string) error {
	keyname := dayKey(prefix, r.now())
	if err := r.db.ZIncrBy(ctx, keyname, 1, member).Err(); err != nil {
		return fmt.Errorf("failed to increment %s: %w", keyname, err)
	}
	r.log.DebugContext(ctx, "Incremented counter", "key", keyname, "member", member)
	return nil
}

// AddGeoPoint inserts a payload into the current day's geospatial index at
// the given coordinate. A server that rejects the insert (no geospatial
// command support) is a configuration problem that cannot be retried: the
// error is logged with a remediation hint and returned so the caller can
// skip this single write and continue.
func (r *Repository) AddGeoPoint(ctx context.Context, coord models.Coordinates, payload models.GeoPayload) error {
	member, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize geo payload: %w", err)
	}

	keyname := dayKey(keyRadius, r.now())
	err = r.db.GeoAdd(ctx, keyname, &redis.GeoLocation{
		Name:      string(member),
		Longitude: coord.Lon,
		Latitude:  coord.Lat,
	}).Err()
	if err != nil {
		r.log.ErrorContext(ctx, "Geospatial insert rejected by the store",
			"key", keyname,
			"error", err,
			"hint", "make sure the redis server supports the GEOADD command: echo \"help GEOADD\" | redis-cli")
		return fmt.Errorf("failed to insert geo point into %s: %w", keyname, err)
	}

	r.log.DebugContext(ctx, "Added geo point", "key", keyname, "lon", coord.Lon, "lat", coord.Lat)
	return nil
}

// SearchRadius returns the members of one day's geospatial index within
// radiusKm of the center, together with their coordinates.
func (r *Repository) SearchRadius(
	ctx context.Context,
	day time.Time,
	center models.Coordinates,
	radiusKm float64,
) ([]models.RadiusHit, error) {
	keyname := dayKey(keyRadius, day)
	locations, err := r.db.GeoSearchLocation(ctx, keyname, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  center.Lon,
			Latitude:   center.Lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
		},
		WithCoord: true,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", keyname, err)
	}

	hits := make([]models.RadiusHit, 0, len(locations))
	for _, loc := range locations {
		hits = append(hits, models.RadiusHit{
			Member: loc.Name,
			Coord:  models.Coordinates{Lat: loc.Latitude, Lon: loc.Longitude},
		})
	}
	return hits, nil
}

// TopCoordinates returns up to limit highest-frequency coordinate entries of
// one day, most frequent first.
func (r *Repository) TopCoordinates(ctx context.Context, day time.Time, limit int) ([]models.ScoredEntry, error) {
	return r.revRange(ctx, dayKey(keyCoordinate, day), int64(limit)-1)
}

// HitMap returns every region-code counter of one day, most frequent first.
func (r *Repository) HitMap(ctx context.Context, day time.Time) ([]models.ScoredEntry, error) {
	return r.revRange(ctx, dayKey(keyCountry, day), -1)
}

func (r *Repository) revRange(ctx context.Context, keyname string, stop int64) ([]models.ScoredEntry, error) {
	members, err := r.db.ZRevRangeWithScores(ctx, keyname, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", keyname, err)
	}

	entries := make([]models.ScoredEntry, 0, len(members))
	for _, member := range members {
		value, ok := member.Member.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected member type %T in %s", member.Member, keyname)
		}
		entries = append(entries, models.ScoredEntry{Member: value, Score: member.Score})
	}
	return entries, nil
}
