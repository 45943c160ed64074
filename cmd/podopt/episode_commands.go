package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"podopt/internal/api"
	"podopt/internal/catalog"
	"podopt/internal/services"
	"podopt/internal/storage"
)

func newEpisodeCommand(ctx *commandContext) *cobra.Command {
	episodeCmd := &cobra.Command{
		Use:   "episode",
		Short: "Manage episodes",
	}
	episodeCmd.AddCommand(newEpisodeAddCommand(ctx))
	episodeCmd.AddCommand(newEpisodeListCommand(ctx))
	episodeCmd.AddCommand(newEpisodeShowCommand(ctx))
	episodeCmd.AddCommand(newEpisodeResetCommand(ctx))
	return episodeCmd
}

func newEpisodeAddCommand(ctx *commandContext) *cobra.Command {
	var importPath string
	cmd := &cobra.Command{
		Use:   "add <podcast-id> <title> [audio-file]",
		Short: "Create an episode",
		Long: "Create an episode whose audio lives at audio-file, relative to the podcast's storage disk.\n" +
			"With --import the local file is copied onto the disk first and audio-file defaults to a cleaned-up copy of its base name.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			podcastID, err := parseID(args[0])
			if err != nil {
				return err
			}
			var audioFile string
			if len(args) == 3 {
				audioFile = args[2]
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *catalog.Store) error {
				podcast, err := store.GetPodcast(cmd.Context(), podcastID)
				if err != nil {
					return err
				}
				if podcast == nil {
					return fmt.Errorf("podcast %d not found", podcastID)
				}
				disk := storage.NewDisks(cfg).For(podcast.PrivateShow)

				if importPath != "" {
					if audioFile == "" {
						audioFile = storage.ImportName(importPath)
					}
					if err := importAudio(disk, importPath, audioFile); err != nil {
						return err
					}
				} else if audioFile == "" {
					return fmt.Errorf("audio-file is required without --import")
				} else if exists, err := disk.Exists(audioFile); err != nil {
					return err
				} else if !exists {
					fmt.Fprintf(cmd.ErrOrStderr(), "warn: %s is not on the %s disk yet\n", audioFile, disk.Name())
				}

				episode, err := store.CreateEpisode(cmd.Context(), podcastID, args[1], audioFile)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created episode %d: %s (%s:%s)\n", episode.ID, episode.Title, episode.Disk(), episode.AudioFile)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&importPath, "import", "", "Copy a local audio file onto the storage disk")
	return cmd
}

func importAudio(disk storage.Disk, source, relPath string) error {
	file, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open %s: %w", source, err)
	}
	defer file.Close()
	if _, err := disk.Put(relPath, file); err != nil {
		return fmt.Errorf("import %s: %w", source, err)
	}
	return nil
}

func newEpisodeListCommand(ctx *commandContext) *cobra.Command {
	var (
		podcastID    int64
		statusFilter string
		jsonOutput   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			var wantStatus *catalog.Status
			if cmd.Flags().Changed("status") {
				status, err := catalog.ParseStatus(statusFilter)
				if err != nil {
					return err
				}
				wantStatus = &status
			}
			return ctx.withStore(func(store *catalog.Store) error {
				episodes, err := store.ListEpisodes(cmd.Context(), podcastID)
				if err != nil {
					return err
				}
				if wantStatus != nil {
					episodes = filterByStatus(episodes, *wantStatus)
				}
				if jsonOutput {
					return writeJSON(cmd, api.EpisodeListResponse{Episodes: api.FromEpisodes(episodes)})
				}
				if len(episodes) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No episodes")
					return nil
				}
				rows := make([][]string, 0, len(episodes))
				for _, episode := range episodes {
					rows = append(rows, []string{
						strconv.FormatInt(episode.ID, 10),
						episode.PodcastTitle,
						episode.Title,
						statusLabel(episode.AuphonicStatus),
						episode.AudioFile,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Podcast", "Title", "Status", "Audio"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&podcastID, "podcast", 0, "Only list episodes of this podcast")
	cmd.Flags().StringVar(&statusFilter, "status", "", "Only list episodes in this status (unset, queued, started, completed, failed)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newEpisodeShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "show <episode-id>",
		Short: "Show episode details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *catalog.Store) error {
				episode, err := store.GetEpisode(cmd.Context(), id)
				if err != nil {
					return err
				}
				if episode == nil {
					return services.Wrap(services.ErrNotFound, "cli", "episode show", fmt.Sprintf("episode %d not found", id), nil)
				}
				if jsonOutput {
					return writeJSON(cmd, api.EpisodeResponse{Episode: api.FromEpisode(episode)})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Episode %d: %s\n", episode.ID, episode.Title)
				fmt.Fprintf(out, "  Podcast:    %s (#%d)\n", episode.PodcastTitle, episode.PodcastID)
				fmt.Fprintf(out, "  Audio:      %s:%s\n", episode.Disk(), episode.AudioFile)
				fmt.Fprintf(out, "  Status:     %s\n", statusLabel(episode.AuphonicStatus))
				if episode.AuphonicID != "" {
					fmt.Fprintf(out, "  Production: %s\n", episode.AuphonicID)
				}
				fmt.Fprintf(out, "  Updated:    %s\n", episode.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func filterByStatus(episodes []*catalog.Episode, status catalog.Status) []*catalog.Episode {
	filtered := episodes[:0]
	for _, episode := range episodes {
		if episode.AuphonicStatus == status {
			filtered = append(filtered, episode)
		}
	}
	return filtered
}

func newEpisodeResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <episode-id>",
		Short: "Clear the production reference so the episode can be optimized again",
		Long: "Use when a production never called back, for example after it was deleted in the\n" +
			"Auphonic web UI. The audio file is left untouched.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *catalog.Store) error {
				if err := store.ResetOptimization(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Episode %d reset\n", id)
				return nil
			})
		},
	}
}

var titleCaser = cases.Title(language.English)

func statusLabel(status catalog.Status) string {
	if status == catalog.StatusUnset {
		return "-"
	}
	return titleCaser.String(status.String())
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}
