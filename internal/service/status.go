package service

import (
	"context"
	"fmt"

	"github.com/sekolahku/offline-sync/internal/logger"
	"github.com/sekolahku/offline-sync/internal/store"
	"github.com/sekolahku/offline-sync/models"
)

// statusReporter is a pure read layer over the durable queue and the
// engine. All counts are recomputed on demand; nothing is cached, so the UI
// can poll it freely.
type statusReporter struct {
	queue  store.QueueRepository
	engine SyncEngine
	logger *logger.Logger
}

func NewStatusReporter(queue store.QueueRepository, engine SyncEngine, log *logger.Logger) StatusReporter {
	return &statusReporter{
		queue:  queue,
		engine: engine,
		logger: log,
	}
}

func (s *statusReporter) GetStatus(ctx context.Context) (models.SyncStatus, error) {
	counts, err := s.queue.CountByStatus(ctx)
	if err != nil {
		return models.SyncStatus{}, fmt.Errorf("count queue items: %w", err)
	}

	return models.SyncStatus{
		PendingCount: counts[models.StatusPending],
		SyncingCount: counts[models.StatusSyncing],
		ErrorCount:   counts[models.StatusError],
		InProgress:   s.engine.InProgress(),
		LastSyncedAt: s.engine.LastSyncedAt(),
	}, nil
}

func (s *statusReporter) ListFailed(ctx context.Context) ([]models.QueueItem, error) {
	return s.queue.ListParked(ctx)
}

func (s *statusReporter) RetryFailed(ctx context.Context, id string) error {
	if err := s.queue.Reactivate(ctx, id); err != nil {
		return fmt.Errorf("retry failed item (id=%s): %w", id, err)
	}

	s.logger.Info().
		Str("func", "statusReporter.RetryFailed").
		Str("id", id).
		Msg("parked item returned to the active queue")

	return nil
}

func (s *statusReporter) DiscardFailed(ctx context.Context, id string) error {
	if err := s.queue.Remove(ctx, id); err != nil {
		return fmt.Errorf("discard failed item (id=%s): %w", id, err)
	}

	s.logger.Info().
		Str("func", "statusReporter.DiscardFailed").
		Str("id", id).
		Msg("parked item discarded by user")

	return nil
}

func (s *statusReporter) Notices() []models.ConflictNotice {
	return s.engine.Notices()
}

func (s *statusReporter) SyncNow(ctx context.Context) error {
	return s.engine.SyncNow(ctx)
}

func (s *statusReporter) Subscribe(fn func(models.SyncStatus)) func() {
	return s.engine.SubscribePassDone(func() {
		status, err := s.GetStatus(context.Background())
		if err != nil {
			s.logger.Err(err).
				Str("func", "statusReporter.Subscribe").
				Msg("failed to compute status after pass")
			return
		}
		fn(status)
	})
}
