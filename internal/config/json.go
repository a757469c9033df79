package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and
// string-friendly durations for the optional config file.
type StructuredJSONConfig struct {
	Remote struct {
		BaseURL        string   `json:"base_url"`
		RequestTimeout Duration `json:"request_timeout"`
		AuthToken      string   `json:"auth_token"`
	} `json:"remote,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Sync struct {
		MaxRetries  int      `json:"max_retries"`
		BackoffBase Duration `json:"backoff_base"`
		BackoffMax  Duration `json:"backoff_max"`
		Interval    Duration `json:"interval"`
	} `json:"sync,omitempty"`

	Connectivity struct {
		ProbeURL      string   `json:"probe_url"`
		ProbeInterval Duration `json:"probe_interval"`
	} `json:"connectivity,omitempty"`

	Logging struct {
		FilePath  string `json:"file_path"`
		MaxSizeMB int    `json:"max_size_mb"`
	} `json:"logging,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Remote: Remote{
			BaseURL:        jsonCfg.Remote.BaseURL,
			RequestTimeout: time.Duration(jsonCfg.Remote.RequestTimeout),
			AuthToken:      jsonCfg.Remote.AuthToken,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Sync: Sync{
			MaxRetries:  jsonCfg.Sync.MaxRetries,
			BackoffBase: time.Duration(jsonCfg.Sync.BackoffBase),
			BackoffMax:  time.Duration(jsonCfg.Sync.BackoffMax),
			Interval:    time.Duration(jsonCfg.Sync.Interval),
		},
		Connectivity: Connectivity{
			ProbeURL:      jsonCfg.Connectivity.ProbeURL,
			ProbeInterval: time.Duration(jsonCfg.Connectivity.ProbeInterval),
		},
		Logging: Logging{
			FilePath:  jsonCfg.Logging.FilePath,
			MaxSizeMB: jsonCfg.Logging.MaxSizeMB,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
