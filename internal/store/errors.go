package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrQueueItemNotFound is returned when an update targets a queue item
	// that no longer exists (for example, it was removed by a concurrent
	// sync pass).
	ErrQueueItemNotFound = errors.New("queue item was not found")

	// ErrQueueItemNotSaved is returned when an INSERT completes without
	// error but the number of affected rows is zero, meaning the mutation
	// was NOT persisted. Enqueue is the last line of durability; callers
	// must surface this to the user as "change not saved".
	ErrQueueItemNotSaved = errors.New("queue item was not saved")

	// ErrEmptyPatch is returned when an update is requested with a patch
	// that would change nothing.
	ErrEmptyPatch = errors.New("queue item patch is empty")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain
// logic can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")
)
