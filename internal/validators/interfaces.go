// Package validators provides input validation for mutations entering the
// offline queue. Invalid drafts are rejected before they reach the durable
// store, so the sync engine never has to handle malformed items.
package validators

import "context"

// Validator defines a generic validation interface for arbitrary input
// values. Implementations may perform structural validation, semantic
// checks, cross-field rules.
type Validator interface {

	// Validate validates the provided input.
	Validate(context.Context, any) error
}
