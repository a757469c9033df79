package service

import (
	"context"
	"time"

	"github.com/sekolahku/offline-sync/models"
)

// SyncEngine drains the durable queue against the remote store. A single
// engine owns the "pass in progress" state; triggers arriving while a pass
// runs are coalesced into it.
type SyncEngine interface {
	// SyncNow runs one sync pass: items are drained strictly in enqueue
	// order until the queue is empty, the monitor reports offline, or a
	// retryable failure halts the pass. If a pass is already running the
	// call is coalesced and returns nil immediately.
	SyncNow(ctx context.Context) error

	// InProgress reports whether a pass is currently running.
	InProgress() bool

	// LastSyncedAt returns when a pass last drained the active queue, or
	// the zero time if that has not happened yet.
	LastSyncedAt() time.Time

	// Notices returns the retained conflict notices, oldest first.
	Notices() []models.ConflictNotice

	// AddResultHook registers h to be informed of per-item outcomes.
	// Hooks must be registered before the first pass runs.
	AddResultHook(h ResultHook)

	// SubscribePassDone registers fn to be called after every completed
	// pass. The returned function removes the subscription.
	SubscribePassDone(fn func()) (unsubscribe func())
}

// ResultHook receives per-item outcomes of a sync pass. The optimistic
// cache bridge implements it to confirm or roll back overlaid mutations.
type ResultHook interface {
	// OnItemSynced is called after the remote store accepted the mutation
	// and the item was removed from the queue.
	OnItemSynced(item models.QueueItem)

	// OnItemDiscarded is called when a conflict was resolved in the
	// server's favor and the local mutation was dropped.
	OnItemDiscarded(item models.QueueItem, notice models.ConflictNotice)

	// OnItemParked is called when the item exhausted its retries and was
	// moved out of the active sequence.
	OnItemParked(item models.QueueItem)
}

// StatusReporter aggregates queue contents and engine state for display.
// All methods are reads except SyncNow, RetryFailed, and DiscardFailed,
// which delegate user actions.
type StatusReporter interface {
	// GetStatus recomputes the aggregate view from the durable store and
	// the engine. It may be polled on an interval by the UI.
	GetStatus(ctx context.Context) (models.SyncStatus, error)

	// ListFailed returns the parked items for user inspection.
	ListFailed(ctx context.Context) ([]models.QueueItem, error)

	// RetryFailed returns a parked item to the active sequence with a
	// fresh retry budget.
	RetryFailed(ctx context.Context, id string) error

	// DiscardFailed drops a parked item permanently.
	DiscardFailed(ctx context.Context, id string) error

	// Notices returns the retained conflict notices, oldest first.
	Notices() []models.ConflictNotice

	// SyncNow triggers a sync pass via the engine.
	SyncNow(ctx context.Context) error

	// Subscribe registers fn to receive a freshly computed status after
	// every completed pass. The returned function removes the
	// subscription.
	Subscribe(fn func(models.SyncStatus)) (unsubscribe func())
}

// SyncJob is the periodic safety net that triggers a sync pass on a ticker
// in case a connectivity event was missed.
type SyncJob interface {
	// Run launches the background goroutine. Any previously running job is
	// stopped before the new one begins. The goroutine exits when ctx is
	// cancelled or Stop is called.
	Run(ctx context.Context)

	// Stop signals the background goroutine to exit and blocks until it
	// has fully terminated.
	Stop()
}
