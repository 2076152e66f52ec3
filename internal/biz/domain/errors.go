package domain

import "errors"

var (
	// ErrConflict indicates a uniqueness violation on insert, e.g. a
	// duplicate (trigger, response) pair or a duplicate log update id.
	ErrConflict = errors.New("already exists")

	// ErrNotFound indicates the requested record does not exist, e.g. a
	// trigger with no registered responses.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates input rejected at the boundary before it
	// reaches the store.
	ErrValidation = errors.New("invalid input")
)
