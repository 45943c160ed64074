package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

func (c *Config) normalize() error {
	if err := loadDotEnv(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeAuphonic()
	c.normalizeOptimization()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

// loadDotEnv reads ./.env without overriding variables already exported.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.PrivateDir) == "" {
		c.Paths.PrivateDir = defaultPrivateDir
	}
	if c.Paths.PrivateDir, err = expandPath(c.Paths.PrivateDir); err != nil {
		return fmt.Errorf("paths.private_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.PublicDir) == "" {
		c.Paths.PublicDir = defaultPublicDir
	}
	if c.Paths.PublicDir, err = expandPath(c.Paths.PublicDir); err != nil {
		return fmt.Errorf("paths.public_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	if c.Server.APIToken == "" {
		if value, ok := os.LookupEnv("PODOPT_API_TOKEN"); ok {
			c.Server.APIToken = value
		}
	}
	c.Server.APIToken = strings.TrimSpace(c.Server.APIToken)
	c.Server.PublicURL = strings.TrimRight(strings.TrimSpace(c.Server.PublicURL), "/")
	if c.Server.PublicURL == "" {
		c.Server.PublicURL = defaultPublicURL
	}
}

func (c *Config) normalizeAuphonic() {
	if c.Auphonic.Token == "" {
		if value, ok := os.LookupEnv("AUPHONIC_TOKEN"); ok {
			c.Auphonic.Token = value
		}
	}
	c.Auphonic.Token = strings.TrimSpace(c.Auphonic.Token)
	c.Auphonic.BaseURL = strings.TrimRight(strings.TrimSpace(c.Auphonic.BaseURL), "/")
	if c.Auphonic.BaseURL == "" {
		c.Auphonic.BaseURL = defaultAuphonicBaseURL
	}
}

func (c *Config) normalizeOptimization() {
	c.Optimization.OutputFormat = strings.ToLower(strings.TrimSpace(c.Optimization.OutputFormat))
	c.Optimization.NoiseReductionAmount = strings.ToLower(strings.TrimSpace(c.Optimization.NoiseReductionAmount))
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
