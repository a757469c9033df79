package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// offline-sync client. It aggregates all sub-configurations and is populated
// by merging values from environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Remote holds the remote table-store endpoint settings.
	Remote Remote `envPrefix:"REMOTE_"`

	// Storage holds the local durable queue storage settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds retry, backoff, and scheduling settings for the sync engine.
	Sync Sync `envPrefix:"SYNC_"`

	// Connectivity holds reachability probe settings.
	Connectivity Connectivity `envPrefix:"CONNECTIVITY_"`

	// Logging holds log output settings.
	Logging Logging `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Remote holds network settings for the remote table-store endpoint.
type Remote struct {
	// BaseURL is the base URL of the remote store API
	// (e.g. "https://api.sekolahku.example").
	// Env: REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestTimeout bounds every outbound dispatch. A timed-out dispatch
	// is treated identically to a network failure.
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// AuthToken is the bearer token attached to outbound requests. Session
	// handling itself lives outside this subsystem; the token can also be
	// set at runtime on the adapter.
	// Env: REMOTE_AUTH_TOKEN
	AuthToken string `env:"AUTH_TOKEN"`
}

// Storage groups the configuration of the local durable store.
type Storage struct {
	// DB holds the SQLite connection settings for the queue store.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local SQLite database backing the
// durable queue.
type DB struct {
	// DSN is the SQLite file path or connection string
	// (e.g. "/home/user/.sekolahku/queue.db").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Sync holds retry and scheduling settings for the sync engine.
type Sync struct {
	// MaxRetries is the retry cap per queue item. When RetryCount reaches
	// this value the item is parked with status error.
	// Env: SYNC_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// BackoffBase is the delay before the first retry; each subsequent
	// retry doubles it.
	// Env: SYNC_BACKOFF_BASE
	BackoffBase time.Duration `env:"BACKOFF_BASE"`

	// BackoffMax caps the exponential backoff delay.
	// Env: SYNC_BACKOFF_MAX
	BackoffMax time.Duration `env:"BACKOFF_MAX"`

	// Interval defines how often the periodic sync job fires as a safety
	// net for missed connectivity events.
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`
}

// Connectivity holds settings for the HTTP reachability prober.
type Connectivity struct {
	// ProbeURL is the endpoint polled to detect reachability. Defaults to
	// the remote base URL when empty.
	// Env: CONNECTIVITY_PROBE_URL
	ProbeURL string `env:"PROBE_URL"`

	// ProbeInterval defines how often the prober checks reachability.
	// Env: CONNECTIVITY_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`
}

// Logging holds log output settings.
type Logging struct {
	// FilePath is the log file location. Empty means stdout.
	// Env: LOG_FILE_PATH
	FilePath string `env:"FILE_PATH"`

	// MaxSizeMB is the size at which the log file is rotated.
	// Env: LOG_MAX_SIZE_MB
	MaxSizeMB int `env:"MAX_SIZE_MB"`
}

// Default values applied by [GetConfig] for fields left unset by every
// source. The retry cap and backoff curve follow the host application's
// behavior for degraded connections.
const (
	DefaultRequestTimeout = 15 * time.Second
	DefaultMaxRetries     = 5
	DefaultBackoffBase    = 2 * time.Second
	DefaultBackoffMax     = 5 * time.Minute
	DefaultSyncInterval   = 15 * time.Second
	DefaultProbeInterval  = 30 * time.Second
)

// GetConfig builds the final client configuration: environment variables,
// then command-line flags, then the optional JSON file are merged, defaults
// are applied, and the result is validated.
func GetConfig() (*StructuredConfig, error) {
	cfg, err := newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return cfg, cfg.validate()
}

func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Remote.RequestTimeout <= 0 {
		cfg.Remote.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Sync.MaxRetries <= 0 {
		cfg.Sync.MaxRetries = DefaultMaxRetries
	}
	if cfg.Sync.BackoffBase <= 0 {
		cfg.Sync.BackoffBase = DefaultBackoffBase
	}
	if cfg.Sync.BackoffMax <= 0 {
		cfg.Sync.BackoffMax = DefaultBackoffMax
	}
	if cfg.Sync.Interval <= 0 {
		cfg.Sync.Interval = DefaultSyncInterval
	}
	if cfg.Connectivity.ProbeInterval <= 0 {
		cfg.Connectivity.ProbeInterval = DefaultProbeInterval
	}
	if cfg.Connectivity.ProbeURL == "" {
		cfg.Connectivity.ProbeURL = cfg.Remote.BaseURL
	}
}
