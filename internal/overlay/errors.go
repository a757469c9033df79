package overlay

import "errors"

var (
	// ErrTableNotRegistered is returned when a read or mutation targets a
	// table no view has been registered for.
	ErrTableNotRegistered = errors.New("table is not registered in the overlay")
)
