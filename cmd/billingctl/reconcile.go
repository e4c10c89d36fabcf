package main

import (
	"encoding/json"
	"fmt"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/database"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/events"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/provider"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/usecase"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newReconcileCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Refresh one user's subscription row from Stripe",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(user)
			if err != nil {
				return fmt.Errorf("--user must be a UUID: %w", err)
			}

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			billing, err := provider.NewBillingProvider(e.cfg.Stripe, e.logger)
			if err != nil {
				return err
			}
			publisher, err := events.NewPublisher(cmd.Context(), e.cfg.Redis, e.logger)
			if err != nil {
				return err
			}
			defer publisher.Close()

			repos := database.NewRepositories(e.db, e.logger)
			reconciler := usecase.NewReconciler(repos.Subscription, repos.Plan, billing, publisher, e.logger)

			status, err := reconciler.Reconcile(cmd.Context(), userID)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
