package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sekolahku/offline-sync/internal/adapter"
	"github.com/sekolahku/offline-sync/internal/connectivity"
	"github.com/sekolahku/offline-sync/internal/logger"
	"github.com/sekolahku/offline-sync/internal/store"
	"github.com/sekolahku/offline-sync/models"
)

// maxRetainedNotices bounds the conflict-notice buffer; the UI consumes
// notices shortly after they appear, so only a recent window is kept.
const maxRetainedNotices = 50

// EngineConfig holds the retry and backoff settings of the sync engine.
type EngineConfig struct {
	// MaxRetries is the failed-attempt cap per item; reaching it parks the
	// item.
	MaxRetries int

	// BackoffBase and BackoffMax shape the exponential retry delay.
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

type syncEngine struct {
	queue   store.QueueRepository
	remote  adapter.RemoteStore
	monitor connectivity.Monitor
	logger  *logger.Logger
	cfg     EngineConfig

	inProgress atomic.Bool

	mu           sync.RWMutex
	lastSyncedAt time.Time
	notices      []models.ConflictNotice
	hooks        []ResultHook
	passSubs     map[int]func()
	nextSubID    int

	// now is swapped in tests to control backoff arithmetic.
	now func() time.Time
}

// NewSyncEngine wires a SyncEngine to the durable queue, the remote store,
// and the connectivity monitor. The engine subscribes to the monitor and
// starts a pass on every offline→online transition; passes triggered while
// one is running are coalesced.
func NewSyncEngine(
	queue store.QueueRepository,
	remote adapter.RemoteStore,
	monitor connectivity.Monitor,
	cfg EngineConfig,
	log *logger.Logger,
) SyncEngine {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 2 * time.Second
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = 5 * time.Minute
	}

	e := &syncEngine{
		queue:    queue,
		remote:   remote,
		monitor:  monitor,
		logger:   log,
		cfg:      cfg,
		passSubs: make(map[int]func()),
		now:      time.Now,
	}

	monitor.Subscribe(func(online bool) {
		if !online {
			return
		}
		// The monitor callback runs on the prober goroutine; the pass must
		// not block it.
		go func() {
			if err := e.SyncNow(context.Background()); err != nil {
				log.Err(err).Str("func", "syncEngine.onOnline").Msg("sync pass after online transition failed")
			}
		}()
	})

	return e
}

func (e *syncEngine) SyncNow(ctx context.Context) error {
	if !e.inProgress.CompareAndSwap(false, true) {
		// A running pass already serves this trigger.
		e.logger.Debug().Str("func", "syncEngine.SyncNow").Msg("sync trigger coalesced into running pass")
		return nil
	}
	err := e.drain(ctx)

	// The flag must be down before subscribers run, so a status computed
	// inside a pass-done callback reports the pass as finished.
	e.inProgress.Store(false)
	e.notifyPassDone()
	return err
}

func (e *syncEngine) InProgress() bool {
	return e.inProgress.Load()
}

func (e *syncEngine) LastSyncedAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastSyncedAt
}

func (e *syncEngine) Notices() []models.ConflictNotice {
	e.mu.RLock()
	defer e.mu.RUnlock()

	notices := make([]models.ConflictNotice, len(e.notices))
	copy(notices, e.notices)
	return notices
}

func (e *syncEngine) AddResultHook(h ResultHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, h)
}

func (e *syncEngine) SubscribePassDone(fn func()) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextSubID
	e.nextSubID++
	e.passSubs[id] = fn

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.passSubs, id)
	}
}

// drain processes the active queue strictly in enqueue order. It returns
// nil both for a fully drained queue and for a pass halted early (offline,
// backoff, retryable failure): halting is normal operation, not an error.
// Only infrastructure failures (queue store unreachable) surface as errors.
func (e *syncEngine) drain(ctx context.Context) error {
	log := e.logger

	items, err := e.queue.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active queue items: %w", err)
	}

	drained := true
	for _, item := range items {
		if !e.monitor.IsOnline() {
			log.Debug().Str("func", "syncEngine.drain").Msg("monitor reports offline, aborting pass")
			drained = false
			break
		}

		if wait := e.remainingBackoff(item); wait > 0 {
			// The head item is still cooling down. Later items must not
			// overtake it, so the pass ends here and the next trigger
			// resumes from the same head.
			log.Debug().
				Str("func", "syncEngine.drain").
				Str("id", item.ID).
				Dur("remaining", wait).
				Msg("head item within backoff window, ending pass")
			drained = false
			break
		}

		proceed, err := e.processItem(ctx, item)
		if err != nil {
			return err
		}
		if !proceed {
			drained = false
			break
		}
	}

	if drained {
		e.mu.Lock()
		e.lastSyncedAt = e.now()
		e.mu.Unlock()
	}

	return nil
}

// processItem dispatches one item. It returns false when the pass must halt
// at this item (retryable failure), true when the pass may advance. The
// error return is reserved for queue-store failures.
func (e *syncEngine) processItem(ctx context.Context, item models.QueueItem) (bool, error) {
	syncing := models.StatusSyncing
	if err := e.queue.Update(ctx, item.ID, models.QueueItemPatch{Status: &syncing}); err != nil {
		if errors.Is(err, store.ErrQueueItemNotFound) {
			// Removed concurrently (e.g. user discarded it); skip.
			return true, nil
		}
		return false, fmt.Errorf("mark item syncing (id=%s): %w", item.ID, err)
	}

	dispatchErr := e.dispatch(ctx, item, false)
	if dispatchErr == nil {
		return true, e.finishItem(ctx, item)
	}

	var conflict *adapter.ConflictError
	if errors.As(dispatchErr, &conflict) {
		resolved, err := e.resolveConflict(ctx, item, conflict)
		if err != nil {
			return false, err
		}
		if resolved {
			return true, nil
		}
		// The winning re-dispatch failed; fall through to the retry path
		// with the conflict as the recorded failure.
	}

	return e.recordFailure(ctx, item, dispatchErr)
}

// dispatch sends the item's mutation to the remote store. force is set only
// on a conflict re-dispatch that the local mutation won.
func (e *syncEngine) dispatch(ctx context.Context, item models.QueueItem, force bool) error {
	opts := adapter.UpsertOptions{ItemID: item.ID, Force: force}

	if item.Operation == models.OperationDelete {
		return e.remote.Delete(ctx, item.Table, item.Payload, opts)
	}
	return e.remote.Upsert(ctx, item.Table, item.Payload, opts)
}

// finishItem removes a successfully applied item and informs the hooks.
func (e *syncEngine) finishItem(ctx context.Context, item models.QueueItem) error {
	if err := e.queue.Remove(ctx, item.ID); err != nil {
		return fmt.Errorf("remove synced item (id=%s): %w", item.ID, err)
	}

	e.logger.Info().
		Str("func", "syncEngine.finishItem").
		Str("id", item.ID).
		Str("table", item.Table).
		Str("operation", string(item.Operation)).
		Msg("queue item synced")

	item.Status = models.StatusSuccess
	for _, h := range e.resultHooks() {
		h.OnItemSynced(item)
	}
	return nil
}

// resolveConflict applies last-writer-wins by timestamp. Server newer (or
// equal) → the local mutation is discarded and the user is informed; local
// newer → the mutation is re-dispatched with the stale-write check skipped.
// Returns resolved=false when the re-dispatch failed and the caller should
// treat the item as a transient failure.
func (e *syncEngine) resolveConflict(ctx context.Context, item models.QueueItem, conflict *adapter.ConflictError) (bool, error) {
	log := e.logger

	if !item.EnqueuedAt.After(conflict.ServerUpdatedAt) {
		// Server wins: no silent merge, the server version is authoritative.
		if err := e.queue.Remove(ctx, item.ID); err != nil {
			return false, fmt.Errorf("remove conflict-discarded item (id=%s): %w", item.ID, err)
		}

		notice := models.ConflictNotice{
			ItemID:          item.ID,
			Table:           item.Table,
			ServerUpdatedAt: conflict.ServerUpdatedAt,
			LocalEnqueuedAt: item.EnqueuedAt,
		}
		e.appendNotice(notice)

		log.Warn().
			Str("func", "syncEngine.resolveConflict").
			Str("id", item.ID).
			Str("table", item.Table).
			Time("server_updated_at", conflict.ServerUpdatedAt).
			Time("local_enqueued_at", item.EnqueuedAt).
			Msg("local mutation discarded, server version is newer")

		for _, h := range e.resultHooks() {
			h.OnItemDiscarded(item, notice)
		}
		return true, nil
	}

	// Local wins: overwrite the server version.
	if err := e.dispatch(ctx, item, true); err != nil {
		log.Err(err).
			Str("func", "syncEngine.resolveConflict").
			Str("id", item.ID).
			Msg("forced re-dispatch after winning conflict failed")
		return false, nil
	}

	return true, e.finishItem(ctx, item)
}

// recordFailure increments the retry count and either schedules the item
// for another attempt (halting the pass) or parks it when the cap is
// reached (letting later independent items sync).
func (e *syncEngine) recordFailure(ctx context.Context, item models.QueueItem, dispatchErr error) (bool, error) {
	log := e.logger
	now := e.now()
	retryCount := item.RetryCount + 1
	lastError := dispatchErr.Error()

	if retryCount >= e.cfg.MaxRetries {
		if err := e.queue.Park(ctx, item.ID, retryCount, lastError, now); err != nil {
			return false, fmt.Errorf("park exhausted item (id=%s): %w", item.ID, err)
		}

		log.Error().
			Str("func", "syncEngine.recordFailure").
			Str("id", item.ID).
			Str("table", item.Table).
			Int("retry_count", retryCount).
			Str("last_error", lastError).
			Msg("retry cap reached, item parked")

		item.Status = models.StatusError
		item.RetryCount = retryCount
		item.LastError = lastError
		item.Parked = true
		for _, h := range e.resultHooks() {
			h.OnItemParked(item)
		}

		// Parking trades ordering for liveness: later independent items
		// continue to sync.
		return true, nil
	}

	pending := models.StatusPending
	patch := models.QueueItemPatch{
		Status:        &pending,
		RetryCount:    &retryCount,
		LastError:     &lastError,
		LastAttemptAt: &now,
	}
	if err := e.queue.Update(ctx, item.ID, patch); err != nil && !errors.Is(err, store.ErrQueueItemNotFound) {
		return false, fmt.Errorf("record item failure (id=%s): %w", item.ID, err)
	}

	log.Warn().
		Str("func", "syncEngine.recordFailure").
		Str("id", item.ID).
		Str("table", item.Table).
		Int("retry_count", retryCount).
		Str("last_error", lastError).
		Msg("dispatch failed, will retry after backoff")

	return false, nil
}

func (e *syncEngine) remainingBackoff(item models.QueueItem) time.Duration {
	if item.RetryCount == 0 || item.LastAttemptAt == nil {
		return 0
	}

	delay := backoffDelay(e.cfg.BackoffBase, e.cfg.BackoffMax, item.RetryCount)
	elapsed := e.now().Sub(*item.LastAttemptAt)
	if elapsed >= delay {
		return 0
	}
	return delay - elapsed
}

func (e *syncEngine) appendNotice(notice models.ConflictNotice) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.notices = append(e.notices, notice)
	if len(e.notices) > maxRetainedNotices {
		e.notices = e.notices[len(e.notices)-maxRetainedNotices:]
	}
}

func (e *syncEngine) resultHooks() []ResultHook {
	e.mu.RLock()
	defer e.mu.RUnlock()

	hooks := make([]ResultHook, len(e.hooks))
	copy(hooks, e.hooks)
	return hooks
}

func (e *syncEngine) notifyPassDone() {
	e.mu.RLock()
	fns := make([]func(), 0, len(e.passSubs))
	for _, fn := range e.passSubs {
		fns = append(fns, fn)
	}
	e.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}
