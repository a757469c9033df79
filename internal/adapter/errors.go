package adapter

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnauthorized is returned when the remote store rejects the bearer
	// token. The session layer outside this subsystem must refresh it.
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrStaleWrite matches any *ConflictError via errors.Is.
	ErrStaleWrite = errors.New("row modified since read")
)

// ConflictError reports that the server holds a more recent version of the
// targeted rows. It carries the server-side timestamp the sync engine
// compares against the local enqueue time for last-writer-wins resolution.
type ConflictError struct {
	Table           string
	ServerUpdatedAt time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("stale write on table %s: server updated at %s", e.Table, e.ServerUpdatedAt.Format(time.RFC3339))
}

// Is lets errors.Is(err, ErrStaleWrite) match a *ConflictError.
func (e *ConflictError) Is(target error) bool {
	return target == ErrStaleWrite
}
