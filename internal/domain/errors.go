package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrSerializationFailure = errors.New("serialization failure")
)

// DuplicateEntryError is returned when an identity that already holds a
// Waiting entry tries to join again. It carries the existing entry so the
// caller can redirect the user to it.
type DuplicateEntryError struct {
	Existing QueueEntry
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("owner %s already has an active queue entry (id %d)", e.Existing.OwnerID, e.Existing.ID)
}

// IllegalTransitionError is returned when a status update violates the
// queue entry state machine.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}
