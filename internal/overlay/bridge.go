package overlay

import (
	"context"
	"fmt"
	"sync"

	"github.com/sekolahku/offline-sync/internal/logger"
	"github.com/sekolahku/offline-sync/internal/store"
	"github.com/sekolahku/offline-sync/internal/validators"
	"github.com/sekolahku/offline-sync/models"
)

// Bridge connects the UI's optimistic read model to the durable queue. A
// mutation goes through Mutate: it is validated, persisted in the queue,
// and overlaid on the table view in one step. The sync engine later reports
// the outcome through the result-hook methods, which confirm or roll back
// the overlay.
type Bridge struct {
	queue     store.QueueRepository
	validator validators.Validator
	logger    *logger.Logger

	mu    sync.RWMutex
	views map[string]*View
}

func NewBridge(queue store.QueueRepository, v validators.Validator, log *logger.Logger) *Bridge {
	return &Bridge{
		queue:     queue,
		validator: v,
		logger:    log,
		views:     make(map[string]*View),
	}
}

// RegisterTable installs the view for a logical table with its natural-key
// function and initial base snapshot. Re-registering replaces the view.
func (b *Bridge) RegisterTable(table string, keyOf KeyFunc, base []models.Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.views[table] = NewView(keyOf, base)
}

// SetBase refreshes a table's base snapshot, e.g. after a server fetch.
func (b *Bridge) SetBase(table string, base []models.Record) error {
	view, err := b.view(table)
	if err != nil {
		return err
	}
	view.SetBase(base)
	return nil
}

// Read returns what the table looks like including not-yet-synced local
// writes.
func (b *Bridge) Read(table string) ([]models.Record, error) {
	view, err := b.view(table)
	if err != nil {
		return nil, err
	}
	return view.Read(), nil
}

// Mutate records a local write: the draft is validated, durably enqueued,
// and overlaid on the table view. The returned item carries the id under
// which the sync engine will report the outcome.
//
// If the durable enqueue fails the view is left untouched and the error is
// returned as-is: the change was NOT saved, which the UI must present
// differently from "saved locally, waiting to sync".
func (b *Bridge) Mutate(ctx context.Context, draft models.QueueItemDraft) (models.QueueItem, error) {
	log := logger.FromContext(ctx)

	view, err := b.view(draft.Table)
	if err != nil {
		return models.QueueItem{}, err
	}

	if err := b.validator.Validate(ctx, draft); err != nil {
		return models.QueueItem{}, fmt.Errorf("invalid mutation for table %s: %w", draft.Table, err)
	}

	item, err := b.queue.Enqueue(ctx, draft)
	if err != nil {
		log.Err(err).
			Str("func", "Bridge.Mutate").
			Str("table", draft.Table).
			Msg("durable enqueue failed, change was not saved")
		return models.QueueItem{}, err
	}

	view.Add(Mutation{ID: item.ID, Op: item.Operation, Records: item.Payload})
	return item, nil
}

// Restore re-applies the buffered mutations of registered tables after a
// process restart, so the optimistic view matches the durable queue again.
func (b *Bridge) Restore(ctx context.Context) error {
	items, err := b.queue.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("restore overlay from queue: %w", err)
	}

	for _, item := range items {
		view, err := b.view(item.Table)
		if err != nil {
			// A queued mutation for a table the UI has not registered yet
			// still syncs; it just has no optimistic view to overlay.
			continue
		}
		view.Add(Mutation{ID: item.ID, Op: item.Operation, Records: item.Payload})
	}

	return nil
}

// OnItemSynced implements the sync engine's result hook: the remote store
// accepted the mutation, so it becomes part of the base snapshot.
func (b *Bridge) OnItemSynced(item models.QueueItem) {
	if view, err := b.view(item.Table); err == nil {
		view.Confirm(item.ID)
	}
}

// OnItemDiscarded implements the result hook for a conflict lost to the
// server: the local mutation is rolled back because the server version is
// authoritative.
func (b *Bridge) OnItemDiscarded(item models.QueueItem, _ models.ConflictNotice) {
	if view, err := b.view(item.Table); err == nil {
		view.Rollback(item.ID)
	}
}

// OnItemParked implements the result hook for an item that exhausted its
// retries: the optimistic view rolls back so the UI stops showing a write
// that is not going through without user intervention.
func (b *Bridge) OnItemParked(item models.QueueItem) {
	if view, err := b.view(item.Table); err == nil {
		view.Rollback(item.ID)
	}
}

func (b *Bridge) view(table string) (*View, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	view, ok := b.views[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotRegistered, table)
	}
	return view, nil
}
