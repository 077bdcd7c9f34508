package tracker

import (
	"errors"
	"fmt"
)

var (
	// ErrNoResults rejects a game record submitted without any results.
	ErrNoResults = errors.New("game record needs at least one result")

	// ErrMissingDate rejects a game record submitted without a date.
	ErrMissingDate = errors.New("game record needs a date")
)

// NotFoundError identifies the entity and id a write referenced but the
// store does not hold.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError reports a write the current state refuses, e.g. deleting a
// player who still hosts meetings.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}
