package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/config"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/database"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/infrastructure/provider"
	"github.com/Douglas360/auction-intel-estate-sub000/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSyncPlansCmd() *cobra.Command {
	var (
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "sync-plans",
		Short: "Upsert the plan catalog and link Stripe prices",
		Long: "Reads the plan catalog file, creates or updates plans by title and, for plans\n" +
			"with a Stripe product but no explicit price ids, links the active monthly and\n" +
			"annual prices of that product.",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := config.LoadPlanCatalog(file)
			if err != nil {
				return err
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
			repos := database.NewRepositories(e.db, e.logger)
			sync := usecase.NewPlanSyncService(repos.Plan, billing, e.logger)

			result, err := sync.SyncCatalog(cmd.Context(), toPlanInputs(catalog), dryRun)
			if result != nil {
				printSyncResult(cmd.OutOrStdout(), result, dryRun)
			}
			if err != nil {
				return err
			}
			e.logger.Info("Plan catalog synced",
				zap.Int("created", len(result.Created)),
				zap.Int("updated", len(result.Updated)),
				zap.Int("linked", len(result.Linked)),
				zap.Int("failed", len(result.Failed)))
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d plan(s) failed to sync", len(result.Failed))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "configs/plans.yaml", "plan catalog file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing")
	return cmd
}

func toPlanInputs(catalog []config.PlanCatalogEntry) []usecase.PlanInput {
	inputs := make([]usecase.PlanInput, 0, len(catalog))
	for _, p := range catalog {
		inputs = append(inputs, usecase.PlanInput{
			Title:                p.Title,
			Description:          p.Description,
			MonthlyPrice:         p.MonthlyPrice,
			AnnualPrice:          p.AnnualPrice,
			Currency:             p.Currency,
			Benefits:             p.Benefits,
			SortOrder:            p.SortOrder,
			Status:               entity.PlanStatus(p.Status),
			StripeProductID:      p.StripeProductID,
			StripeMonthlyPriceID: p.StripeMonthlyPriceID,
			StripeAnnualPriceID:  p.StripeAnnualPriceID,
		})
	}
	return inputs
}

func printSyncResult(w io.Writer, r *usecase.SyncResult, dryRun bool) {
	if dryRun {
		fmt.Fprintln(w, "Dry run, nothing written.")
	}
	for _, line := range []struct {
		label  string
		titles []string
	}{
		{"Created", r.Created},
		{"Updated", r.Updated},
		{"Linked", r.Linked},
		{"Failed", r.Failed},
	} {
		if len(line.titles) == 0 {
			continue
		}
		fmt.Fprintf(w, "%-8s %s\n", line.label+":", strings.Join(line.titles, ", "))
	}
}
