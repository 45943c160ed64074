package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"podopt/internal/api"
	"podopt/internal/optimize"
)

func newCreditsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "credits",
		Short: "Show remaining Auphonic credits",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.auphonicClient()
			if err != nil {
				return err
			}
			checker := optimize.NewQuotaChecker(client, cfg.Auphonic.LowCreditThreshold, 0, ctx.cliLogger())
			quota, err := checker.Check(cmd.Context())
			if err != nil {
				return fmt.Errorf("read credits: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd, api.FromQuota(quota))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Credits remaining: %.2f hours\n", quota.Credits)
			if quota.Low {
				fmt.Fprintf(out, "Below the %.0f hour threshold; top up the Auphonic account.\n", quota.Threshold)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
