package config

import (
	"fmt"
	"strings"
)

var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate checks configuration invariants after normalization.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		return fmt.Errorf("paths.download_dir is required")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return fmt.Errorf("paths.log_dir is required")
	}
	if c.Limits.MaxPerClient > c.Limits.MaxGlobal {
		return fmt.Errorf("limits.max_per_client (%d) cannot exceed limits.max_global (%d)",
			c.Limits.MaxPerClient, c.Limits.MaxGlobal)
	}
	if strings.TrimSpace(c.Downloader.Binary) == "" {
		return fmt.Errorf("downloader.binary is required")
	}
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if _, ok := validLogLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
