package models

import "time"

// SyncStatus is the aggregate view of the queue exposed to the UI. It is
// recomputed on demand from the durable store and the engine state; it has
// no lifecycle of its own.
type SyncStatus struct {
	// PendingCount is the number of items waiting in the active sequence.
	PendingCount int `json:"pending_count"`

	// SyncingCount is 1 while a dispatch is in flight, 0 otherwise.
	SyncingCount int `json:"syncing_count"`

	// ErrorCount is the number of parked items awaiting retry or discard.
	ErrorCount int `json:"error_count"`

	// InProgress reports whether a sync pass is currently running.
	InProgress bool `json:"in_progress"`

	// LastSyncedAt is when a pass last drained the active queue. Zero if no
	// pass has completed yet. Formatting a relative string is the caller's
	// concern.
	LastSyncedAt time.Time `json:"last_synced_at"`
}

// ConflictNotice informs the user that a buffered mutation was discarded
// because the server already held a more recent version of the same rows.
// It is informational, not an error: the server version is authoritative.
type ConflictNotice struct {
	// ItemID is the id of the discarded queue item.
	ItemID string `json:"item_id"`

	// Table is the logical table the mutation targeted.
	Table string `json:"table"`

	// ServerUpdatedAt is the server-side timestamp that won the comparison.
	ServerUpdatedAt time.Time `json:"server_updated_at"`

	// LocalEnqueuedAt is the losing local intent timestamp.
	LocalEnqueuedAt time.Time `json:"local_enqueued_at"`
}
