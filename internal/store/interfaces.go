package store

import (
	"context"
	"time"

	"github.com/sekolahku/offline-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// QueueRepository is the durable queue store: a persisted, ordered list of
// pending mutations that survives a full process restart. It is the single
// source of truth for queue contents; the sync engine, the status reporter,
// and the UI all read through it.
type QueueRepository interface {
	// Enqueue assigns an id, enqueue timestamp, and pending status to the
	// draft, persists it, and returns the stored item. A persistence
	// failure is returned loudly — a silent failure here means data loss.
	Enqueue(ctx context.Context, draft models.QueueItemDraft) (models.QueueItem, error)

	// ListActive returns the non-parked items ordered by enqueue time
	// ascending. This is the exact sequence a sync pass drains.
	ListActive(ctx context.Context) ([]models.QueueItem, error)

	// ListParked returns the items moved out of the active sequence after
	// exhausting their retries, ordered by enqueue time ascending.
	ListParked(ctx context.Context) ([]models.QueueItem, error)

	// Get returns the item with the given id, or ErrQueueItemNotFound.
	Get(ctx context.Context, id string) (models.QueueItem, error)

	// Update applies the patch to the item's mutable fields. Returns
	// ErrQueueItemNotFound if the id no longer exists and ErrEmptyPatch if
	// the patch is empty.
	Update(ctx context.Context, id string, patch models.QueueItemPatch) error

	// Remove deletes the item. Idempotent: removing a nonexistent id is
	// not an error.
	Remove(ctx context.Context, id string) error

	// Park moves the item out of the active sequence, recording the final
	// retry count and error and setting status to error.
	Park(ctx context.Context, id string, retryCount int, lastError string, at time.Time) error

	// Reactivate returns a parked item to the tail-end of the active
	// sequence with a fresh retry budget. The enqueue timestamp is kept,
	// so the item re-enters at its original position.
	Reactivate(ctx context.Context, id string) error

	// CountByStatus returns the number of items per status across both the
	// active and parked sequences.
	CountByStatus(ctx context.Context) (map[models.QueueStatus]int, error)
}
