package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	enrichmentUC "github.com/khoahotran/talent-match/internal/application/usecase/enrichment"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <user-id>",
	Short: "Run the readiness check for one talent, enriching the profile if needed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}

		d, err := buildDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		out, err := d.readiness.Execute(cmd.Context(), enrichmentUC.ReadinessInput{UserID: userID})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "state=%s ready=%t\n", out.State, out.Ready)
		if out.EnrichmentErr != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "failed step=%s error=%v\n", enrichmentUC.FailedStep(out.EnrichmentErr), out.EnrichmentErr)
		}
		return nil
	},
}
