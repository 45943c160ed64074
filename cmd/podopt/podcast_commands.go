package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"podopt/internal/api"
	"podopt/internal/catalog"
)

func newPodcastCommand(ctx *commandContext) *cobra.Command {
	podcastCmd := &cobra.Command{
		Use:   "podcast",
		Short: "Manage podcasts",
	}
	podcastCmd.AddCommand(newPodcastAddCommand(ctx))
	podcastCmd.AddCommand(newPodcastListCommand(ctx))
	return podcastCmd
}

func newPodcastAddCommand(ctx *commandContext) *cobra.Command {
	var private bool
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a podcast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				podcast, err := store.CreatePodcast(cmd.Context(), args[0], private)
				if err != nil {
					return err
				}
				visibility := "public"
				if podcast.PrivateShow {
					visibility = "private"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created podcast %d: %s (%s storage)\n", podcast.ID, podcast.Title, visibility)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&private, "private", false, "Store episode audio on the private disk")
	return cmd
}

func newPodcastListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List podcasts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				podcasts, err := store.ListPodcasts(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					out := make([]api.Podcast, 0, len(podcasts))
					for _, podcast := range podcasts {
						out = append(out, api.FromPodcast(podcast))
					}
					return writeJSON(cmd, out)
				}
				if len(podcasts) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No podcasts")
					return nil
				}
				rows := make([][]string, 0, len(podcasts))
				for _, podcast := range podcasts {
					rows = append(rows, []string{
						strconv.FormatInt(podcast.ID, 10),
						podcast.Title,
						yesNo(podcast.PrivateShow),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Private"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
