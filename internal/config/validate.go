package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAuphonic(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateOptimization(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAuphonic() error {
	if c.Auphonic.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("auphonic.token is required. Set AUPHONIC_TOKEN env var or edit %s (create with 'podopt config init')", defaultPath)
	}
	if err := validateAbsoluteURL("auphonic.base_url", c.Auphonic.BaseURL); err != nil {
		return err
	}
	if c.Auphonic.TimeoutSeconds <= 0 {
		return errors.New("auphonic.timeout_seconds must be positive")
	}
	if c.Auphonic.LowCreditThreshold < 0 {
		return errors.New("auphonic.low_credit_threshold must be >= 0")
	}
	if c.Auphonic.QuotaCheckIntervalMinutes < 0 {
		return errors.New("auphonic.quota_check_interval_minutes must be >= 0")
	}
	return nil
}

func (c *Config) validateServer() error {
	return validateAbsoluteURL("server.public_url", c.Server.PublicURL)
}

func (c *Config) validateOptimization() error {
	if c.Optimization.OutputFormat == "" {
		return errors.New("optimization.output_format must be set")
	}
	if c.Optimization.NoiseReductionAmount == "" {
		return errors.New("optimization.noise_reduction_amount must be set (auto, disabled or a dB amount)")
	}
	return ensurePositiveMap(map[string]int{
		"optimization.bitrate":    c.Optimization.Bitrate,
		"optimization.workers":    c.Optimization.Workers,
		"optimization.queue_size": c.Optimization.QueueSize,
	})
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	return validateAbsoluteURL("notifications.ntfy_topic", c.Notifications.NtfyTopic)
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
}

func validateAbsoluteURL(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must be set", key)
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", key, value)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
