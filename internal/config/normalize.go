package config

import (
	"path/filepath"
	"strings"
)

// normalize expands and cleans path fields and fills derived defaults.
func (c *Config) normalize() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(strings.TrimSpace(c.Paths.StagingDir)); err != nil {
		return err
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return err
	}

	manifestPath := strings.TrimSpace(c.Paths.ManifestPath)
	if manifestPath == "" {
		manifestPath = filepath.Join(c.Paths.DataDir, "upload_manifest.json")
	} else if manifestPath, err = expandPath(manifestPath); err != nil {
		return err
	}
	c.Paths.ManifestPath = manifestPath

	c.Sheets.BaseURL = strings.TrimRight(strings.TrimSpace(c.Sheets.BaseURL), "/")
	c.Sheets.APIToken = strings.TrimSpace(c.Sheets.APIToken)
	c.Sheets.SpreadsheetID = strings.TrimSpace(c.Sheets.SpreadsheetID)
	if c.Sheets.TabMappings == nil {
		c.Sheets.TabMappings = DefaultTabMappings()
	}

	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}
