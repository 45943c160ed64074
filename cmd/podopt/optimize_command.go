package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"podopt/internal/auphonic"
	"podopt/internal/catalog"
	"podopt/internal/notifications"
	"podopt/internal/optimize"
	"podopt/internal/services"
	"podopt/internal/storage"
)

type settingsOverrides struct {
	format         string
	bitrate        int
	loudnessTarget int
	noiseReduction string
	leveler        bool
	normalization  bool
	filtering      bool
	humReduction   bool
}

func newOptimizeCommand(ctx *commandContext) *cobra.Command {
	var overrides settingsOverrides
	cmd := &cobra.Command{
		Use:   "optimize <episode-id>",
		Short: "Submit an episode to Auphonic and wait until the production starts",
		Long: "Runs create, upload, configure and start in the foreground using the [optimization]\n" +
			"defaults plus any flag overrides. The result arrives later through the webhook of a\n" +
			"running podopt serve.\n\n" +
			"The STARTED notification goes to ntfy only. Clients following an episode's event\n" +
			"stream on podopt serve see the status from the webhook onwards; use\n" +
			"POST /api/episodes/<id>/optimize-audio to have the daemon announce the start too.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			settings, err := optimize.DefaultSettings(cfg)
			if err != nil {
				return fmt.Errorf("optimization defaults: %w", err)
			}
			if err := overrides.apply(cmd, &settings); err != nil {
				return err
			}
			client, err := ctx.auphonicClient()
			if err != nil {
				return err
			}

			return ctx.withStore(func(store *catalog.Store) error {
				episode, err := store.GetEpisode(cmd.Context(), id)
				if err != nil {
					return err
				}
				if err := optimize.CheckSubmittable(episode); err != nil {
					return err
				}

				runCtx := services.WithEpisodeID(cmd.Context(), id)
				orchestrator := optimize.NewOrchestrator(client, store, storage.NewDisks(cfg),
					notifications.NewService(cfg), cfg.WebhookURL(), ctx.cliLogger())
				if err := orchestrator.Run(runCtx, episode, settings); err != nil {
					return err
				}

				started, err := store.GetEpisode(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Production %s started for episode %d (%s, %d kbps, %d LUFS, noise reduction %s)\n",
					started.AuphonicID, started.ID,
					settings.OutputFormat(), settings.Bitrate(), settings.LoudnessTarget(),
					auphonic.NoiseReductionLabel(settings.NoiseReductionAmount()))
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&overrides.format, "format", "", "Output format (mp3, wav, alac, aac)")
	flags.IntVar(&overrides.bitrate, "bitrate", 0, "Output bitrate in kbps")
	flags.IntVar(&overrides.loudnessTarget, "loudness-target", 0, "Loudness target in LUFS")
	flags.StringVar(&overrides.noiseReduction, "noise-reduction", "", "Noise reduction amount (auto, disabled or dB)")
	flags.BoolVar(&overrides.leveler, "leveler", false, "Enable the adaptive leveler")
	flags.BoolVar(&overrides.normalization, "normalize", false, "Enable loudness normalization")
	flags.BoolVar(&overrides.filtering, "filtering", false, "Enable filtering")
	flags.BoolVar(&overrides.humReduction, "hum-reduction", false, "Enable noise and hum reduction")
	return cmd
}

// apply sets only the flags the user passed explicitly.
func (o settingsOverrides) apply(cmd *cobra.Command, settings *auphonic.Settings) error {
	flags := cmd.Flags()
	if flags.Changed("format") {
		if err := settings.SetOutputFormat(o.format); err != nil {
			return err
		}
	}
	if flags.Changed("bitrate") {
		if err := settings.SetBitrate(o.bitrate); err != nil {
			return err
		}
	}
	if flags.Changed("loudness-target") {
		if err := settings.SetLoudnessTarget(o.loudnessTarget); err != nil {
			return err
		}
	}
	if flags.Changed("noise-reduction") {
		amount, err := auphonic.ParseNoiseReductionAmount(o.noiseReduction)
		if err != nil {
			return err
		}
		if err := settings.SetNoiseReductionAmount(amount); err != nil {
			return err
		}
	}
	if flags.Changed("leveler") {
		settings.SetAdaptiveLeveler(o.leveler)
	}
	if flags.Changed("normalize") {
		settings.SetLoudnessNormalization(o.normalization)
	}
	if flags.Changed("filtering") {
		settings.SetFiltering(o.filtering)
	}
	if flags.Changed("hum-reduction") {
		settings.SetNoiseHumReduction(o.humReduction)
	}
	return nil
}
