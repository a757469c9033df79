package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_Success(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	p := filepath.Join(dir, "config.json")

	// Durations are strings parsed by time.ParseDuration (e.g. "30s").
	jsonBody := `{
		"remote": {
			"base_url": "https://api.sekolahku.example",
			"request_timeout": "30s",
			"auth_token": "tok-123"
		},
		"storage": {
			"db": { "dsn": "/home/user/.sekolahku/queue.db" }
		},
		"sync": {
			"max_retries": 7,
			"backoff_base": "3s",
			"backoff_max": "10m",
			"interval": "20s"
		},
		"connectivity": {
			"probe_url": "https://api.sekolahku.example/health",
			"probe_interval": "45s"
		},
		"logging": {
			"file_path": "/var/log/syncd.log",
			"max_size_mb": 25
		}
	}`

	require.NoError(t, os.WriteFile(p, []byte(jsonBody), 0o600))

	// Act
	cfg, err := parseJSON(p)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://api.sekolahku.example", cfg.Remote.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, "tok-123", cfg.Remote.AuthToken)

	assert.Equal(t, "/home/user/.sekolahku/queue.db", cfg.Storage.DB.DSN)

	assert.Equal(t, 7, cfg.Sync.MaxRetries)
	assert.Equal(t, 3*time.Second, cfg.Sync.BackoffBase)
	assert.Equal(t, 10*time.Minute, cfg.Sync.BackoffMax)
	assert.Equal(t, 20*time.Second, cfg.Sync.Interval)

	assert.Equal(t, "https://api.sekolahku.example/health", cfg.Connectivity.ProbeURL)
	assert.Equal(t, 45*time.Second, cfg.Connectivity.ProbeInterval)

	assert.Equal(t, "/var/log/syncd.log", cfg.Logging.FilePath)
	assert.Equal(t, 25, cfg.Logging.MaxSizeMB)
}

func TestParseJSON_FileNotFound(t *testing.T) {
	// Act
	cfg, err := parseJSON("definitely-does-not-exist.json")

	// Assert
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "error reading a json file")
}

func TestParseJSON_InvalidJSON(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	p := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(p, []byte(`{ this is not json }`), 0o600))

	// Act
	cfg, err := parseJSON(p)

	// Assert
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "error decoding json configs")
}

func TestParseJSON_InvalidDuration(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	p := filepath.Join(dir, "bad_duration.json")
	jsonBody := `{
		"sync": { "backoff_base": "not-a-duration" }
	}`
	require.NoError(t, os.WriteFile(p, []byte(jsonBody), 0o600))

	// Act
	cfg, err := parseJSON(p)

	// Assert
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "error decoding json configs")
}

func TestParseJSON_EmptyObject(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	p := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(p, []byte(`{}`), 0o600))

	// Act
	cfg, err := parseJSON(p)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, Remote{}, cfg.Remote)
	assert.Equal(t, Sync{}, cfg.Sync)
}

func TestParseJSON_NumericDuration(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	p := filepath.Join(dir, "numeric.json")

	// Durations may also come as raw nanosecond numbers.
	jsonBody := `{
		"sync": { "backoff_base": 2000000000 }
	}`
	require.NoError(t, os.WriteFile(p, []byte(jsonBody), 0o600))

	// Act
	cfg, err := parseJSON(p)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Sync.BackoffBase)
}
