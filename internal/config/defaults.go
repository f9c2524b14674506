package config

const (
	defaultStagingDir        = "~/Downloads"
	defaultDataDir           = "~/.local/share/dfs/downloads"
	defaultLogDir            = "~/.local/share/dfs/logs"
	defaultMaxAgeMinutes     = 30
	defaultContentSampleSize = 500
	defaultRequestTimeout    = 30
	defaultRetryAttempts     = 3
	defaultRetryDelaySeconds = 5
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultNotifyTimeout     = 10
)

// DefaultTabMappings returns the stock category-to-tab associations.
func DefaultTabMappings() map[string]string {
	return map[string]string{
		"projections": "Projections",
		"draftkings":  "Salaries",
		"nfl_odds":    "Odds",
		"sos":         "SOS",
		"sos-qb":      "SOS QB",
		"sos-rb":      "SOS RB",
		"sos-wr":      "SOS WR",
		"sos-te":      "SOS TE",
		"sos-dst":     "SOS DST",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
		},
		Organize: Organize{
			MaxAgeMinutes:     defaultMaxAgeMinutes,
			ContentSampleSize: defaultContentSampleSize,
			KeepSnapshots:     true,
		},
		Sheets: Sheets{
			RequestTimeout:    defaultRequestTimeout,
			RetryAttempts:     defaultRetryAttempts,
			RetryDelaySeconds: defaultRetryDelaySeconds,
			ClearBeforeUpload: true,
			CreateMissingTabs: true,
			TabMappings:       DefaultTabMappings(),
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Runs:           true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
