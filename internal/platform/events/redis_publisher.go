package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes events as JSON on a Redis pub/sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher creates a RedisPublisher. An empty channel defaults to TopicRatingSubmitted.
func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = TopicRatingSubmitted
	}
	return &RedisPublisher{rdb: rdb, channel: channel}
}

// PublishRatingSubmitted implements Publisher.
func (p *RedisPublisher) PublishRatingSubmitted(ctx context.Context, ev RatingSubmitted) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", p.channel, err)
	}
	return nil
}
