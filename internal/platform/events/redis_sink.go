package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/invsvc/inventory-service/internal/platform/logger"
)

const defaultChannel = "inventory:events"

// RedisSink publishes every event to a pub/sub channel so other services
// can react to stock changes without polling. Publish failures are logged,
// never propagated — a Sink must never be able to fail the transition.
type RedisSink struct {
	client  *redis.Client
	channel string
	logger  logger.Logger
}

func NewRedisSink(client *redis.Client, log logger.Logger) *RedisSink {
	return &RedisSink{client: client, channel: defaultChannel, logger: log}
}

func (s *RedisSink) Publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("event marshal failed", zap.Error(err))
		return
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		s.logger.Error("redis publish failed", zap.String("channel", s.channel), zap.Error(err))
	}
}
