package main

import (
	"github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the billing tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()
			return database.Migrate(e.db, e.logger)
		},
	}
}
