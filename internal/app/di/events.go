package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"chronicle_backend/internal/app/config"
	"chronicle_backend/internal/platform/events"
)

// NewEventPublisher creates the rating event publisher: the in-process bus,
// which logs every event, plus the configured external backend.
// The returned close function releases the external backend.
func NewEventPublisher(cfg config.Config, rdb *redis.Client) (events.Publisher, func() error, error) {
	bus := events.NewBus()
	bus.Subscribe(func(ctx context.Context, ev events.RatingSubmitted) {
		slog.InfoContext(ctx, "rating submitted",
			"poi_id", ev.PoiID,
			"rating_id", ev.RatingID,
			"user_id", ev.UserID,
			"rating", ev.Rating,
		)
	})
	noClose := func() error { return nil }

	switch cfg.EventsBackend {
	case config.EventsNone, "":
		return bus, noClose, nil
	case config.EventsRedis:
		if rdb == nil {
			return nil, nil, fmt.Errorf("events backend redis: %w", ErrBackendUnavailable)
		}
		return events.Fanout{bus, events.NewRedisPublisher(rdb, events.TopicRatingSubmitted)}, noClose, nil
	case config.EventsKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, nil, errors.New("events backend kafka requires KAFKA_BROKERS")
		}
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, events.TopicRatingSubmitted)
		return events.Fanout{bus, kp}, kp.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown events backend %q", cfg.EventsBackend)
	}
}
