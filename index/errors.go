package index

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrInvalidBatchSize is returned when the configured batch size is <= 0
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")
)
