package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-r remote store base URL
//	-d local queue database DSN (SQLite file path)
//	-c/-config json file path with configs
//	-request-timeout remote dispatch timeout (e.g., "15s")
//	-max-retries retry cap per queue item
//	-backoff-base delay before the first retry (e.g., "2s")
//	-backoff-max cap for the exponential backoff delay (e.g., "5m")
//	-sync-interval periodic sync job interval (e.g., "15s")
//	-probe-url connectivity probe endpoint
//	-probe-interval connectivity probe interval (e.g., "30s")
//	-log-file log file path (empty for stdout)
func ParseFlags() *StructuredConfig {
	var remoteBaseURL string
	var databaseDSN string
	var jsonConfigPath string
	var requestTimeout time.Duration
	var maxRetries int
	var backoffBase time.Duration
	var backoffMax time.Duration
	var syncInterval time.Duration
	var probeURL string
	var probeInterval time.Duration
	var logFile string

	flag.StringVar(&remoteBaseURL, "r", "", "Remote store base URL")
	flag.StringVar(&databaseDSN, "d", "", "Queue database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Remote dispatch timeout (e.g., 15s)")
	flag.IntVar(&maxRetries, "max-retries", 0, "Retry cap per queue item")
	flag.DurationVar(&backoffBase, "backoff-base", 0, "Delay before the first retry (e.g., 2s)")
	flag.DurationVar(&backoffMax, "backoff-max", 0, "Exponential backoff cap (e.g., 5m)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync interval (e.g., 15s)")
	flag.StringVar(&probeURL, "probe-url", "", "Connectivity probe endpoint")
	flag.DurationVar(&probeInterval, "probe-interval", 0, "Connectivity probe interval (e.g., 30s)")
	flag.StringVar(&logFile, "log-file", "", "Log file path")

	flag.Parse()

	return &StructuredConfig{
		Remote: Remote{
			BaseURL:        remoteBaseURL,
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Sync: Sync{
			MaxRetries:  maxRetries,
			BackoffBase: backoffBase,
			BackoffMax:  backoffMax,
			Interval:    syncInterval,
		},
		Connectivity: Connectivity{
			ProbeURL:      probeURL,
			ProbeInterval: probeInterval,
		},
		Logging: Logging{
			FilePath: logFile,
		},
		JSONFilePath: jsonConfigPath,
	}
}
