package threats

import "errors"

var (
	// ErrNotFound is returned by repositories when a record id is unknown.
	ErrNotFound = errors.New("analysis not found")
	// ErrInvalidQuery means the query is empty after sanitization.
	ErrInvalidQuery = errors.New("query is required")
)
