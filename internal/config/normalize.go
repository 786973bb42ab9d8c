package config

import (
	"fmt"
	"os"
	"strings"
)

// Well-known system trust bundle locations, probed when no explicit
// ca_bundle is configured.
var caBundleCandidates = []string{
	"/etc/ssl/certs/ca-certificates.crt",
	"/etc/pki/tls/certs/ca-bundle.crt",
	"/etc/ssl/ca-bundle.pem",
	"/etc/ssl/cert.pem",
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDownloader(); err != nil {
		return err
	}
	c.normalizeLimits()
	c.normalizeRetention()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		c.Paths.DownloadDir = defaultDownloadDir
	}
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeDownloader() error {
	c.Downloader.Binary = strings.TrimSpace(c.Downloader.Binary)
	if c.Downloader.Binary == "" {
		c.Downloader.Binary = defaultDownloaderBinary
	}
	c.Downloader.CABundle = strings.TrimSpace(c.Downloader.CABundle)
	if c.Downloader.CABundle == "" {
		for _, candidate := range caBundleCandidates {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				c.Downloader.CABundle = candidate
				break
			}
		}
	} else {
		expanded, err := expandPath(c.Downloader.CABundle)
		if err != nil {
			return fmt.Errorf("downloader.ca_bundle: %w", err)
		}
		c.Downloader.CABundle = expanded
	}
	c.Downloader.FFmpegLocation = strings.TrimSpace(c.Downloader.FFmpegLocation)
	if c.Downloader.FFmpegLocation != "" {
		expanded, err := expandPath(c.Downloader.FFmpegLocation)
		if err != nil {
			return fmt.Errorf("downloader.ffmpeg_location: %w", err)
		}
		c.Downloader.FFmpegLocation = expanded
	}
	if c.Downloader.TitleTimeoutSeconds <= 0 {
		c.Downloader.TitleTimeoutSeconds = defaultTitleTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeLimits() {
	if c.Limits.MaxPerClient <= 0 {
		c.Limits.MaxPerClient = defaultMaxPerClient
	}
	if c.Limits.MaxGlobal <= 0 {
		c.Limits.MaxGlobal = defaultMaxGlobal
	}
}

func (c *Config) normalizeRetention() {
	if c.Retention.JobRetentionMinutes <= 0 {
		c.Retention.JobRetentionMinutes = defaultJobRetentionMinutes
	}
	if c.Retention.ReapIntervalSeconds <= 0 {
		c.Retention.ReapIntervalSeconds = defaultReapIntervalSeconds
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
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
