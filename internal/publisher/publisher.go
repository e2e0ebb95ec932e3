// Package publisher fans accepted sightings out to the display channel and
// the capped recent-activity cache. Delivery is fire-and-forget: nothing in
// the pipeline ever blocks on a subscriber.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Houeta/meridian/internal/models"
)

// Interface publishes one event per accepted sighting.
type Interface interface {
	Publish(ctx context.Context, event models.GeoEvent) error
}

// Publisher publishes events to a Redis channel and mirrors them into a
// capped list so late subscribers can replay recent activity.
type Publisher struct {
	db       redis.Cmdable
	channel  string
	cacheKey string
	cacheLen int64
	log      *slog.Logger
}

// NewPublisher creates a publisher for the given channel. The recent-activity
// cache keeps at most cacheLen entries under cacheKey.
func NewPublisher(db redis.Cmdable, channel, cacheKey string, cacheLen int64, log *slog.Logger) *Publisher {
	return &Publisher{
		db:       db,
		channel:  channel,
		cacheKey: cacheKey,
		cacheLen: cacheLen,
		log:      log,
	}
}

// Publish serializes the event once and hands it to the channel and the
// cache. The cache write is best-effort: its failure is logged and does not
// fail the publish.
func (p *Publisher) Publish(ctx context.Context, event models.GeoEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	if err = p.db.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", p.channel, err)
	}

	if err = p.appendToCache(ctx, payload); err != nil {
		p.log.WarnContext(ctx, "Failed to append event to recent-activity cache", "error", err)
	}

	p.log.InfoContext(ctx, "Published event", "channel", p.channel, "value", event.Value)
	return nil
}

// appendToCache pushes the serialized event onto the recent-activity list and
// trims it to the configured length.
func (p *Publisher) appendToCache(ctx context.Context, payload []byte) error {
	if err := p.db.LPush(ctx, p.cacheKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to push to %s: %w", p.cacheKey, err)
	}
	if err := p.db.LTrim(ctx, p.cacheKey, 0, p.cacheLen-1).Err(); err != nil {
		return fmt.Errorf("failed to trim %s: %w", p.cacheKey, err)
	}
	return nil
}
