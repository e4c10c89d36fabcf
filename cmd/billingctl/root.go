package main

import (
	"fmt"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/config"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/database"
	"github.com/Douglas360/auction-intel-estate-sub000/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "billingctl",
		Short:         "Maintenance commands for the subscription billing service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file (default configs/billing.yaml)")

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSyncPlansCmd())
	root.AddCommand(newReconcileCmd())
	root.AddCommand(newWatchCmd())
	return root
}

// env is what every subcommand needs: config, a logger and the database.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

// loadConfig reads the config file and builds a console logger on stderr,
// keeping stdout for command output.
func loadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      "console",
		Output:      "stderr",
		Development: cfg.Log.Development,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	db, err := database.NewConnection(cmd.Context(), &cfg.Database, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return &env{cfg: cfg, logger: log, db: db}, nil
}

func (e *env) Close() {
	if err := database.Close(e.db, e.logger); err != nil {
		e.logger.Error("Failed to close database connection", zap.Error(err))
	}
	_ = e.logger.Sync()
}
