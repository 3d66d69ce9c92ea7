package domain

import (
	"time"

	"github.com/google/uuid"
)

// WaitEstimate is the promised wait applied uniformly at join time,
// regardless of party size or restaurant load.
const WaitEstimate = 45 * time.Minute

type Status string

const (
	StatusWaiting   Status = "Waiting"
	StatusReady     Status = "Ready"
	StatusSeated    Status = "Seated"
	StatusCancelled Status = "Cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusReady, StatusSeated, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status machine allows moving to next.
// Seated and Cancelled are terminal; Ready may still be seated or cancelled.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusWaiting:
		return next == StatusReady || next == StatusSeated || next == StatusCancelled
	case StatusReady:
		return next == StatusSeated || next == StatusCancelled
	}
	return false
}

// InWaitingRoom reports whether the entry still occupies a slot in the
// waiting pool. Ready customers keep their position until seated or cancelled.
func (s Status) InWaitingRoom() bool {
	return s == StatusWaiting || s == StatusReady
}

// QueueEntry is one customer's place in one restaurant's line.
// Position is a cache of the entry's rank among Waiting entries for the same
// restaurant ordered by JoinTime; it is only ever written by the engine's
// recompute pass.
type QueueEntry struct {
	ID         int64
	Token      string
	Name       string
	Email      string
	Restaurant string
	PartySize  int
	JoinTime   time.Time
	ETA        time.Time
	Status     Status
	Position   int
	OwnerID    string // empty for anonymous/webhook joins
}

// NewQueueEntry builds a Waiting entry with a fresh token and the ETA
// promised at join time. The token is never reused, even after deletion.
func NewQueueEntry(name, email, restaurant string, partySize int, joinTime time.Time, ownerID string, wait time.Duration) QueueEntry {
	return QueueEntry{
		Token:      uuid.New().String(),
		Name:       name,
		Email:      email,
		Restaurant: restaurant,
		PartySize:  partySize,
		JoinTime:   joinTime,
		ETA:        joinTime.Add(wait),
		Status:     StatusWaiting,
		OwnerID:    ownerID,
	}
}

func (e QueueEntry) Validate() error {
	if e.Name == "" || e.Email == "" || e.Restaurant == "" {
		return ErrInvalidInput
	}
	if e.PartySize < 1 {
		return ErrInvalidInput
	}
	return nil
}
