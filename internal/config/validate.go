package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures mid-pass.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return fmt.Errorf("config: staging_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return fmt.Errorf("config: data_dir must be set")
	}
	if c.Organize.MaxAgeMinutes <= 0 {
		return fmt.Errorf("config: max_age_minutes must be positive, got %d", c.Organize.MaxAgeMinutes)
	}
	if c.Organize.ContentSampleSize <= 0 {
		return fmt.Errorf("config: content_sample_size must be positive, got %d", c.Organize.ContentSampleSize)
	}
	if c.Sheets.RetryAttempts < 1 {
		return fmt.Errorf("config: retry_attempts must be at least 1, got %d", c.Sheets.RetryAttempts)
	}
	if c.Sheets.RetryDelaySeconds < 0 {
		return fmt.Errorf("config: retry_delay_seconds must not be negative, got %d", c.Sheets.RetryDelaySeconds)
	}
	if c.Sheets.RequestTimeout <= 0 {
		return fmt.Errorf("config: request_timeout must be positive, got %d", c.Sheets.RequestTimeout)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: logging format %q not supported", c.Logging.Format)
	}
	return nil
}
