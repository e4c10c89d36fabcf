package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/events"
	"github.com/Douglas360/auction-intel-estate-sub000/pkg/messaging"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print subscription change events as JSON lines until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.Redis.Addr == "" {
				return errors.New("redis.addr is not configured")
			}
			client, err := messaging.NewRedisClient(cmd.Context(), messaging.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err != nil {
				return err
			}
			defer client.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			err = events.Watch(cmd.Context(), client, cfg.Redis.Channel, log, func(e entity.SubscriptionChanged) error {
				return enc.Encode(e)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("watch %s: %w", cfg.Redis.Channel, err)
			}
			return nil
		},
	}
}
