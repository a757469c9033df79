package service

import (
	"github.com/sekolahku/offline-sync/internal/adapter"
	"github.com/sekolahku/offline-sync/internal/config"
	"github.com/sekolahku/offline-sync/internal/connectivity"
	"github.com/sekolahku/offline-sync/internal/logger"
	"github.com/sekolahku/offline-sync/internal/store"
)

// Services groups the sync subsystem's service layer.
type Services struct {
	Engine   SyncEngine
	Reporter StatusReporter
	Job      SyncJob
}

func NewServices(
	storages *store.Storages,
	remote adapter.RemoteStore,
	monitor connectivity.Monitor,
	cfg config.Sync,
	log *logger.Logger,
) *Services {
	engine := NewSyncEngine(storages.Queue, remote, monitor, EngineConfig{
		MaxRetries:  cfg.MaxRetries,
		BackoffBase: cfg.BackoffBase,
		BackoffMax:  cfg.BackoffMax,
	}, log)

	return &Services{
		Engine:   engine,
		Reporter: NewStatusReporter(storages.Queue, engine, log),
		Job:      NewSyncJob(engine, cfg.Interval),
	}
}
