package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khoahotran/talent-match/adapters/persistence"
	enrichmentUC "github.com/khoahotran/talent-match/internal/application/usecase/enrichment"
	opportunityUC "github.com/khoahotran/talent-match/internal/application/usecase/opportunity"
)

var backfillLimit int

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Embed talents and opportunities that are missing a vector",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		talentRepo := persistence.NewPostgresTalentRepo(d.pool, d.log)
		talents, err := enrichmentUC.NewBackfillUseCase(talentRepo, d.readiness, d.log).
			Execute(cmd.Context(), enrichmentUC.BackfillInput{Limit: backfillLimit})
		if err != nil {
			return err
		}

		opportunityRepo := persistence.NewPostgresOpportunityRepo(d.pool)
		opps, err := opportunityUC.NewEmbedBackfillUseCase(opportunityRepo, d.embedder, d.log).
			Execute(cmd.Context(), opportunityUC.EmbedBackfillInput{Limit: backfillLimit})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "talents: enriched=%d failed=%d\nopportunities: embedded=%d failed=%d\n",
			talents.Enriched, talents.Failed, opps.Embedded, opps.Failed)
		return nil
	},
}

func init() {
	backfillCmd.Flags().IntVar(&backfillLimit, "limit", 50, "maximum rows per kind")
}
