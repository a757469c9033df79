package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")

	ErrInvalidTable     = errors.New("invalid table name")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrEmptyPayload     = errors.New("payload cannot be empty")
	ErrEmptyDeleteKeys  = errors.New("delete payload rows must carry key fields")
)
