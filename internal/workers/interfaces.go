// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// running multiple workers in a unified way.
package workers

import "context"

// Worker is the interface that must be implemented by any background
// worker: the connectivity prober and the periodic sync job both satisfy
// it.
//
// Run is expected to return promptly, spawning the worker's goroutine
// internally; the goroutine exits when ctx is cancelled or Stop is called.
// Stop blocks until the goroutine has fully terminated.
type Worker interface {
	Run(ctx context.Context)
	Stop()
}
