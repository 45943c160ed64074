package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"podopt/internal/config"
)

func TestLoadDefaultConfigUsesEnvTokenAndExpandsPaths(t *testing.T) {
	t.Setenv("AUPHONIC_TOKEN", "test-token")
	t.Setenv("PODOPT_API_TOKEN", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "podopt")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.PrivateDir != filepath.Join(wantData, "storage", "private") {
		t.Fatalf("unexpected private dir: %q", cfg.Paths.PrivateDir)
	}
	if cfg.Auphonic.Token != "test-token" {
		t.Fatalf("expected token from env, got %q", cfg.Auphonic.Token)
	}
	if cfg.Auphonic.BaseURL != "https://auphonic.com/api" {
		t.Fatalf("unexpected base url: %q", cfg.Auphonic.BaseURL)
	}
	if cfg.WebhookURL() != "http://127.0.0.1:7590/api/auphonic" {
		t.Fatalf("unexpected webhook url: %q", cfg.WebhookURL())
	}
	if cfg.AuphonicTimeout() != 120*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.AuphonicTimeout())
	}
	if cfg.QuotaCheckInterval() != 0 {
		t.Fatalf("expected periodic quota checks disabled by default, got %s", cfg.QuotaCheckInterval())
	}
	opt := cfg.Optimization
	if opt.OutputFormat != "mp3" || opt.Bitrate != 128 || opt.NoiseReductionAmount != "auto" {
		t.Fatalf("unexpected optimization defaults: %+v", opt)
	}
	if !opt.AdaptiveLeveler || !opt.Filtering || !opt.LoudnessNormalization || !opt.NoiseHumReduction {
		t.Fatalf("expected all toggles enabled by default: %+v", opt)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("AUPHONIC_TOKEN", "")
	t.Setenv("HOME", t.TempDir())

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected error when token missing")
	}
	if !strings.Contains(err.Error(), "auphonic.token") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("AUPHONIC_TOKEN", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "config.toml")
	cfg := config.Default()
	cfg.Auphonic.Token = "file-token"
	cfg.Paths.DataDir = "~/data"
	cfg.Server.PublicURL = "https://pods.example.com/"
	cfg.Optimization.OutputFormat = " AAC "
	cfg.Logging.Format = "JSON"

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected existing config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if loaded.Paths.DataDir != filepath.Join(tempHome, "data") {
		t.Fatalf("unexpected data dir: %q", loaded.Paths.DataDir)
	}
	if loaded.WebhookURL() != "https://pods.example.com/api/auphonic" {
		t.Fatalf("unexpected webhook url: %q", loaded.WebhookURL())
	}
	if loaded.Optimization.OutputFormat != "aac" {
		t.Fatalf("expected normalized output format, got %q", loaded.Optimization.OutputFormat)
	}
	if loaded.Logging.Format != "json" {
		t.Fatalf("expected normalized log format, got %q", loaded.Logging.Format)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"relative base url", func(c *config.Config) { c.Auphonic.BaseURL = "auphonic.com/api" }, "auphonic.base_url"},
		{"zero timeout", func(c *config.Config) { c.Auphonic.TimeoutSeconds = 0 }, "auphonic.timeout_seconds"},
		{"negative threshold", func(c *config.Config) { c.Auphonic.LowCreditThreshold = -1 }, "low_credit_threshold"},
		{"empty noise reduction", func(c *config.Config) { c.Optimization.NoiseReductionAmount = "" }, "optimization.noise_reduction_amount"},
		{"zero workers", func(c *config.Config) { c.Optimization.Workers = 0 }, "optimization.workers"},
		{"bad ntfy topic", func(c *config.Config) { c.Notifications.NtfyTopic = "my-topic" }, "notifications.ntfy_topic"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Auphonic.Token = "token"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("AUPHONIC_TOKEN", "sample-token")
	t.Setenv("HOME", t.TempDir())

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Optimization.LoudnessTarget != -16 {
		t.Fatalf("unexpected loudness target from sample: %d", cfg.Optimization.LoudnessTarget)
	}
}

func TestEnsureDirectoriesCreatesStorageRoots(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.PrivateDir = filepath.Join(base, "private")
	cfg.Paths.PublicDir = filepath.Join(base, "public")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.PrivateDir, cfg.Paths.PublicDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
	if cfg.DatabasePath() != filepath.Join(base, "data", "podopt.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
}
