package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/Douglas360/auction-intel-estate-sub000/pkg/messaging"
	"go.uber.org/zap"
)

// Watch passes every SubscriptionChanged published on channel to handle
// until ctx is cancelled or handle fails. Undecodable messages are logged
// and skipped.
func Watch(ctx context.Context, client messaging.Client, channel string, logger *zap.Logger, handle func(entity.SubscriptionChanged) error) error {
	msgs, err := client.Subscribe(ctx, channel)
	if err != nil {
		return err
	}
	logger.Info("Watching subscription events", zap.String("channel", channel))

	for msg := range msgs {
		var event entity.SubscriptionChanged
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			logger.Warn("Skipping malformed subscription event", zap.String("channel", msg.Channel), zap.Error(err))
			continue
		}
		if err := handle(event); err != nil {
			return fmt.Errorf("handle subscription event for user %s: %w", event.UserID, err)
		}
	}
	return ctx.Err()
}
