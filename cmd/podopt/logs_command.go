package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"podopt/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines     int
		follow    bool
		episodeID int64
		level     string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the podopt log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, "podopt.log")

			var episodeFilter logs.Filter
			if episodeID > 0 {
				episodeFilter = logs.EpisodeFilter(episodeID)
			}
			filter := logs.All(episodeFilter, logs.LevelFilter(level))

			records, offset, err := logs.Tail(path, lines, filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, record := range records {
				fmt.Fprintln(out, record.String())
			}
			if !follow {
				return nil
			}

			followCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return logs.Follow(followCtx, path, offset, 0, filter, func(record logs.Record) {
				fmt.Fprintln(out, record.String())
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of records to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new records")
	cmd.Flags().Int64Var(&episodeID, "episode", 0, "Only show records about this episode")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level (info, warn, error)")
	return cmd
}
