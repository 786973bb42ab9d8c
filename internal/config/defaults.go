package config

const (
	defaultDownloadDir         = "~/.local/share/yotdl/downloads"
	defaultLogDir              = "~/.local/share/yotdl/logs"
	defaultAPIBind             = "127.0.0.1:7910"
	defaultMaxPerClient        = 2
	defaultMaxGlobal           = 4
	defaultDownloaderBinary    = "yt-dlp"
	defaultTitleTimeoutSeconds = 30
	defaultJobRetentionMinutes = 60
	defaultReapIntervalSeconds = 60
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir: defaultDownloadDir,
			LogDir:      defaultLogDir,
			APIBind:     defaultAPIBind,
		},
		Limits: Limits{
			MaxPerClient: defaultMaxPerClient,
			MaxGlobal:    defaultMaxGlobal,
		},
		Downloader: Downloader{
			Binary:              defaultDownloaderBinary,
			TitleTimeoutSeconds: defaultTitleTimeoutSeconds,
		},
		Retention: Retention{
			JobRetentionMinutes: defaultJobRetentionMinutes,
			ReapIntervalSeconds: defaultReapIntervalSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Completed:      true,
			Failed:         true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
