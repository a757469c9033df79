package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sekolahku/offline-sync/internal/adapter"
	"github.com/sekolahku/offline-sync/internal/config"
	"github.com/sekolahku/offline-sync/internal/connectivity"
	"github.com/sekolahku/offline-sync/internal/logger"
	"github.com/sekolahku/offline-sync/internal/overlay"
	"github.com/sekolahku/offline-sync/internal/service"
	"github.com/sekolahku/offline-sync/internal/store"
	"github.com/sekolahku/offline-sync/internal/validators"
	"github.com/sekolahku/offline-sync/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetConfig()
	if err != nil {
		logger.NewLogger("syncd").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewFileLogger("syncd", cfg.Logging.FilePath, cfg.Logging.MaxSizeMB)

	storages, err := store.NewStorages(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}

	remote, err := adapter.NewHTTPRemoteStore(cfg.Remote, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating remote store adapter")
	}

	monitor := connectivity.NewMonitor(true)
	services := service.NewServices(storages, remote, monitor, cfg.Sync, log)

	draftValidator, err := validators.NewDraftValidator()
	if err != nil {
		log.Fatal().Err(err).Msg("error creating draft validator")
	}

	bridge := overlay.NewBridge(storages.Queue, draftValidator, log)
	services.Engine.AddResultHook(bridge)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = bridge.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("could not restore overlay from queue")
	}

	background := workers.New(
		connectivity.NewProber(monitor, cfg.Connectivity, log),
		services.Job,
	)
	background.Run(ctx)
	defer background.Stop()

	log.Info().Msg("offline sync daemon started")
	<-ctx.Done()
	log.Info().Msg("offline sync daemon stopping")
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Fprintf(os.Stdout, "Build version: %s\n", buildVersion)
	fmt.Fprintf(os.Stdout, "Build date: %s\n", buildDate)
	fmt.Fprintf(os.Stdout, "Build commit: %s\n", buildCommit)
}
