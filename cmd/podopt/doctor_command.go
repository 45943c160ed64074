package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"podopt/internal/catalog"
	"podopt/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check storage, catalog and Auphonic readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			results = append(results, catalogResult(ctx, cmd))

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failures := 0
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
					failures++
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d checks failed", failures, len(results))
			}
			fmt.Fprintln(out, renderStatusLine("Summary", statusInfo, "all checks passed", colorize))
			return nil
		},
	}
}

func catalogResult(ctx *commandContext, cmd *cobra.Command) preflight.Result {
	result := preflight.Result{Name: "Catalog"}
	err := ctx.withStore(func(store *catalog.Store) error {
		if err := store.Ping(cmd.Context()); err != nil {
			return err
		}
		result.Detail = store.Path()
		return nil
	})
	if err != nil {
		result.Detail = err.Error()
		return result
	}
	result.Passed = true
	return result
}
