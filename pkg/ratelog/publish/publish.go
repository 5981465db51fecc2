// Package publish mirrors rate observations to external consumers over Redis
// pub/sub. Storage and aggregation of the published samples stay with the
// consumer; this package only serializes and sends.
package publish

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	mferrors "github.com/vnykmshr/metricflow/pkg/common/errors"
	"github.com/vnykmshr/metricflow/pkg/common/validation"
	"github.com/vnykmshr/metricflow/pkg/ratelog"
)

// RedisPublisher publishes rate samples as JSON to a Redis channel.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
	logger  *zap.Logger
}

// NewRedis creates a publisher sending to channel via client. A nil logger
// silences publish failures reported through Hook.
func NewRedis(client redis.UniversalClient, channel string, logger *zap.Logger) (*RedisPublisher, error) {
	if err := validation.ValidateNotNil("publish", "client", client); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotEmpty("publish", "channel", channel); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPublisher{client: client, channel: channel, logger: logger}, nil
}

// Publish sends one sample. The sample is serialized as JSON; delivery
// follows Redis pub/sub semantics (at-most-once, no backlog for absent
// subscribers).
func (p *RedisPublisher) Publish(ctx context.Context, s ratelog.Sample) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return mferrors.NewOperationError("publish", "Publish", err).WithContext(p.channel)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return mferrors.NewOperationError("publish", "Publish", err).WithContext(p.channel)
	}
	return nil
}

// Hook adapts the publisher to ratelog.Config.Publish. Publish failures are
// logged, not propagated; a sampling tick must not fail because a mirror
// target is down.
func (p *RedisPublisher) Hook(ctx context.Context) func(ratelog.Sample) {
	return func(s ratelog.Sample) {
		if err := p.Publish(ctx, s); err != nil {
			p.logger.Warn("rate sample publish failed", zap.Error(err))
		}
	}
}
