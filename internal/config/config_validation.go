package config

import "strings"

// validate checks that the final merged [StructuredConfig] satisfies the
// client invariants before it is used at startup. It runs after defaults
// have been applied, so only fields without defaults are checked here.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || isInMemoryDSN(cfg.Storage.DB.DSN) {
		// An in-memory queue cannot survive a restart, which defeats the
		// durable store entirely.
		return ErrInvalidStorageConfigs
	}

	if cfg.Remote.BaseURL == "" {
		return ErrInvalidRemoteConfigs
	}

	return nil
}

// isInMemoryDSN matches the sqlite in-memory DSN forms (":memory:" and the
// mode=memory query parameter). A file path that merely contains the word
// "memory" is a regular durable database.
func isInMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
