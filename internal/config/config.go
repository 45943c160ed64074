package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`
	PrivateDir string `toml:"private_dir"`
	PublicDir  string `toml:"public_dir"`
}

// Server contains the HTTP listener configuration.
type Server struct {
	Bind      string `toml:"bind"`
	APIToken  string `toml:"api_token"`
	PublicURL string `toml:"public_url"`
}

// Auphonic contains the remote optimization service credentials and limits.
type Auphonic struct {
	BaseURL                   string  `toml:"base_url"`
	Token                     string  `toml:"token"`
	TimeoutSeconds            int     `toml:"timeout_seconds"`
	LowCreditThreshold        float64 `toml:"low_credit_threshold"`
	QuotaCheckIntervalMinutes int     `toml:"quota_check_interval_minutes"`
}

// Optimization contains the default settings bundle used by the optimize
// trigger plus the dispatcher sizing.
type Optimization struct {
	OutputFormat          string `toml:"output_format"`
	Bitrate               int    `toml:"bitrate"`
	AdaptiveLeveler       bool   `toml:"adaptive_leveler"`
	LoudnessNormalization bool   `toml:"loudness_normalization"`
	LoudnessTarget        int    `toml:"loudness_target"`
	Filtering             bool   `toml:"filtering"`
	NoiseHumReduction     bool   `toml:"noise_hum_reduction"`
	NoiseReductionAmount  string `toml:"noise_reduction_amount"`
	Workers               int    `toml:"workers"`
	QueueSize             int    `toml:"queue_size"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for podopt.
//
// Configuration sections by subsystem:
//   - Paths: database, log, and storage disk roots
//   - Server: HTTP bind address, trigger token, and public callback URL
//   - Auphonic: API endpoint, token, timeout, and credit monitoring
//   - Optimization: default settings bundle and dispatcher sizing
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Server        Server        `toml:"server"`
	Auphonic      Auphonic      `toml:"auphonic"`
	Optimization  Optimization  `toml:"optimization"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("podopt.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for server operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.PrivateDir, c.Paths.PublicDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite catalog location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "podopt.db")
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "podopt.lock")
}

// WebhookURL returns the absolute callback URL registered with Auphonic.
func (c *Config) WebhookURL() string {
	return strings.TrimRight(c.Server.PublicURL, "/") + webhookRoute
}

// AuphonicTimeout returns the remote call timeout.
func (c *Config) AuphonicTimeout() time.Duration {
	return time.Duration(c.Auphonic.TimeoutSeconds) * time.Second
}

// QuotaCheckInterval returns the periodic credit check interval; zero disables it.
func (c *Config) QuotaCheckInterval() time.Duration {
	return time.Duration(c.Auphonic.QuotaCheckIntervalMinutes) * time.Minute
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
