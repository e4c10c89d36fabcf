// Package events announces subscription changes to other services of the
// marketplace.
package events

import (
	"context"
	"time"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/config"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/Douglas360/auction-intel-estate-sub000/pkg/messaging"
	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

// Publisher is a closable subscription change publisher.
type Publisher interface {
	PublishSubscriptionChanged(ctx context.Context, event entity.SubscriptionChanged) error
	Close() error
}

// NewPublisher connects to redis, or returns a NopPublisher when no address
// is configured.
func NewPublisher(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (Publisher, error) {
	if cfg.Addr == "" {
		logger.Info("Redis not configured, subscription events are not published")
		return NopPublisher{}, nil
	}
	client, err := messaging.NewRedisClient(ctx, messaging.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: publishTimeout,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Publishing subscription events", zap.String("addr", cfg.Addr), zap.String("channel", cfg.Channel))
	return NewRedisPublisher(client, cfg.Channel, logger), nil
}

// RedisPublisher publishes SubscriptionChanged events as JSON on a redis
// channel.
type RedisPublisher struct {
	client  messaging.Client
	channel string
	logger  *zap.Logger
}

func NewRedisPublisher(client messaging.Client, channel string, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

// PublishSubscriptionChanged detaches from the request context so a client
// disconnect does not drop the event, but stays bounded.
func (p *RedisPublisher) PublishSubscriptionChanged(ctx context.Context, event entity.SubscriptionChanged) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.client.Publish(ctx, p.channel, event); err != nil {
		return err
	}
	p.logger.Debug("Published subscription change",
		zap.String("channel", p.channel),
		zap.String("user_id", event.UserID.String()),
		zap.String("status", event.Status))
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// NopPublisher is used when no redis address is configured.
type NopPublisher struct{}

func (NopPublisher) PublishSubscriptionChanged(context.Context, entity.SubscriptionChanged) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
