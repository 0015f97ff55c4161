package events

import (
	"context"
	"fmt"

	"p2plending/internal/domain/loan"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher fans events out over redis pub/sub.
type RedisPublisher struct {
	rdb     redis.Cmdable
	channel string
}

func NewRedisPublisher(rdb redis.Cmdable, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, e loan.Event) error {
	payload, err := NewEnvelope(e).marshal()
	if err != nil {
		return fmt.Errorf("events: marshal: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("events: redis publish %s: %w", e.Topic, err)
	}
	return nil
}
