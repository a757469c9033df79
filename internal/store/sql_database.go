package store

import (
	"database/sql"

	"github.com/sekolahku/offline-sync/internal/logger"
	"github.com/sekolahku/offline-sync/migrations"
)

type DB struct {
	*sql.DB
	logger *logger.Logger
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
