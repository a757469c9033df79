package models

import (
	"encoding/json"
	"time"
)

// Operation is the kind of mutation buffered in the queue.
type Operation string

const (
	// OperationCreate inserts new rows into the target table.
	OperationCreate Operation = "create"

	// OperationUpdate modifies existing rows identified by their natural key.
	OperationUpdate Operation = "update"

	// OperationUpsert inserts or updates rows keyed on their natural key.
	// The payload may carry a batch of rows rather than a single one.
	OperationUpsert Operation = "upsert"

	// OperationDelete removes rows; the payload carries only the key fields.
	OperationDelete Operation = "delete"
)

// Valid reports whether op is one of the known operations.
func (op Operation) Valid() bool {
	switch op {
	case OperationCreate, OperationUpdate, OperationUpsert, OperationDelete:
		return true
	}
	return false
}

// QueueStatus is the lifecycle state of a buffered mutation.
type QueueStatus string

const (
	// StatusPending means the item is waiting for the next sync pass.
	StatusPending QueueStatus = "pending"

	// StatusSyncing means the item is currently being dispatched to the
	// remote store. At most one item is in this state at any time.
	StatusSyncing QueueStatus = "syncing"

	// StatusSuccess means the remote store accepted the mutation. Successful
	// items are removed from the durable store immediately, so this value is
	// only ever observed in result hooks, never in a listing.
	StatusSuccess QueueStatus = "success"

	// StatusError means the retry cap was exceeded. The item is parked out
	// of the active sequence and waits for an explicit user retry or discard.
	StatusError QueueStatus = "error"
)

// Record is one row of a logical table, keyed by column name. The queue
// treats rows as opaque JSON; only the natural-key columns are interpreted,
// and only by the optimistic overlay.
type Record map[string]any

// QueueItem is one buffered local mutation awaiting application to the
// remote table store.
type QueueItem struct {
	// ID is the unique identifier of the mutation, assigned at enqueue time.
	// It is stable across retries so the remote store can de-duplicate.
	ID string `json:"id"`

	// Table is the logical target table name (e.g. "attendance").
	Table string `json:"table"`

	// Operation is the kind of mutation.
	Operation Operation `json:"operation"`

	// Payload holds the row batch to write. For delete operations it holds
	// the key fields of the rows to remove.
	Payload []Record `json:"payload"`

	// EnqueuedAt is when the user expressed the intent. It orders the queue
	// and is the local side of last-writer-wins conflict comparison.
	EnqueuedAt time.Time `json:"enqueued_at"`

	// Status is the current lifecycle state.
	Status QueueStatus `json:"status"`

	// RetryCount is how many dispatch attempts have failed so far.
	RetryCount int `json:"retry_count"`

	// LastError is the message of the most recent dispatch failure, if any.
	LastError string `json:"last_error,omitempty"`

	// LastAttemptAt is when the most recent dispatch attempt finished.
	// Zero until the first attempt; used to honor the backoff delay.
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`

	// Parked marks an item moved out of the active pending sequence after
	// exhausting its retries. Parked items never block later items.
	Parked bool `json:"parked"`
}

// QueueItemDraft is the caller-supplied part of a queue item. The repository
// fills in ID, EnqueuedAt and Status on enqueue.
type QueueItemDraft struct {
	Table     string    `json:"table" validate:"required,tablename"`
	Operation Operation `json:"operation" validate:"required,operation"`
	Payload   []Record  `json:"payload" validate:"required,min=1"`
}

// QueueItemPatch describes a partial update of the mutable queue item
// fields. Nil fields are left untouched.
type QueueItemPatch struct {
	Status        *QueueStatus
	RetryCount    *int
	LastError     *string
	LastAttemptAt *time.Time
	Parked        *bool
}

// Empty reports whether the patch would change nothing.
func (p QueueItemPatch) Empty() bool {
	return p.Status == nil && p.RetryCount == nil && p.LastError == nil &&
		p.LastAttemptAt == nil && p.Parked == nil
}

// MarshalPayload encodes the row batch for durable storage.
func MarshalPayload(records []Record) (string, error) {
	raw, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// UnmarshalPayload decodes a row batch previously stored with
// MarshalPayload.
func UnmarshalPayload(raw string) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, err
	}
	return records, nil
}
