package adapter

import (
	"context"

	"github.com/sekolahku/offline-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// UpsertOptions tunes a single upsert dispatch.
type UpsertOptions struct {
	// ItemID is the queue item id, sent as an idempotency key so the
	// remote store can de-duplicate a retried dispatch that already
	// applied.
	ItemID string

	// Force skips the server-side stale-write check. Set after the engine
	// resolved a conflict in favor of the local mutation.
	Force bool
}

// RemoteStore is the minimal contract this subsystem needs from the remote
// relational store: an upsert and a delete per logical table. The store's
// query/read API is not part of the contract.
//
// A dispatch either succeeds, fails with a transport/server error, or fails
// with a *ConflictError when the server holds rows modified more recently
// than the buffered mutation.
type RemoteStore interface {
	// Upsert writes the row batch into table, inserting or updating on the
	// table's natural key.
	Upsert(ctx context.Context, table string, records []models.Record, opts UpsertOptions) error

	// Delete removes the rows identified by the key fields in keys.
	Delete(ctx context.Context, table string, keys []models.Record, opts UpsertOptions) error
}
