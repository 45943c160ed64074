package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"podopt/internal/auphonic"
	"podopt/internal/config"
	"podopt/internal/optimize"
	"podopt/internal/preflight"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set auphonic.token (or export AUPHONIC_TOKEN) and server.public_url before running podopt serve.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration podopt serve and optimize will use",
		Long: "Loads the configuration, creates the storage directories and reports the\n" +
			"Auphonic token source, the webhook URL Auphonic will call back, API\n" +
			"authentication and the default optimization settings.",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			var problems, warnings int
			report := func(label string, kind statusKind, message string) {
				switch kind {
				case statusError:
					problems++
				case statusWarn:
					warnings++
				}
				fmt.Fprintln(out, renderStatusLine(label, kind, message, colorize))
			}

			if exists {
				report("Config file", statusOK, resolved)
			} else {
				report("Config file", statusWarn, resolved+" not found; defaults and environment used")
			}
			report("Auphonic token", statusOK, "set via "+auphonicTokenSource(cfg))

			webhook := preflight.CheckWebhookURL(cfg.WebhookURL())
			if webhook.Passed {
				report("Webhook URL", statusOK, cfg.WebhookURL())
			} else {
				report("Webhook URL", statusError, webhook.Detail+"; set server.public_url to an address Auphonic can reach")
			}

			if cfg.Server.APIToken == "" {
				report("API token", statusWarn, "empty; /api/episodes routes accept unauthenticated requests")
			} else {
				report("API token", statusOK, "set")
			}

			if settings, err := optimize.DefaultSettings(cfg); err != nil {
				report("Default settings", statusError, err.Error())
			} else {
				report("Default settings", statusOK, fmt.Sprintf("%s %d kbps, %d LUFS, noise reduction %s",
					settings.OutputFormat(), settings.Bitrate(), settings.LoudnessTarget(),
					auphonic.NoiseReductionLabel(settings.NoiseReductionAmount())))
			}
			report("Storage", statusOK, fmt.Sprintf("private %s, public %s", cfg.Paths.PrivateDir, cfg.Paths.PublicDir))

			if problems > 0 {
				return fmt.Errorf("configuration has %d problem(s)", problems)
			}
			if strict && warnings > 0 {
				return fmt.Errorf("configuration has %d warning(s) and --strict is set", warnings)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as failures")
	return cmd
}

func auphonicTokenSource(cfg *config.Config) string {
	if value := strings.TrimSpace(os.Getenv("AUPHONIC_TOKEN")); value != "" && value == cfg.Auphonic.Token {
		return "AUPHONIC_TOKEN"
	}
	return "config file"
}
