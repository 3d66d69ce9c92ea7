package queue

import (
	"context"

	"github.com/tableq/tableq/internal/domain"
)

// Repository is the durable store the engine runs against. Any store that
// offers read-your-writes within a call satisfies it; cross-writer
// serialization is the engine's job (see Locker).
type Repository interface {
	// CreateEntry persists a new entry and returns it with its assigned id.
	CreateEntry(ctx context.Context, entry domain.QueueEntry) (domain.QueueEntry, error)
	GetEntry(ctx context.Context, id int64) (*domain.QueueEntry, error)
	GetEntryByToken(ctx context.Context, token string) (*domain.QueueEntry, error)
	// GetActiveEntryByOwner returns the owner's Waiting entry, or nil.
	GetActiveEntryByOwner(ctx context.Context, ownerID string) (*domain.QueueEntry, error)
	ListByRestaurant(ctx context.Context, restaurant string) ([]domain.QueueEntry, error)
	ListAll(ctx context.Context) ([]domain.QueueEntry, error)
	// CountWaitingRoom counts entries still occupying a slot in the
	// restaurant's line (Waiting or Ready).
	CountWaitingRoom(ctx context.Context, restaurant string) (int, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) error
	// UpdatePositions persists a recompute pass atomically.
	UpdatePositions(ctx context.Context, updates []PositionUpdate) error
	// DeleteEntry reports whether an entry was actually deleted.
	DeleteEntry(ctx context.Context, id int64) (bool, error)
}

type PositionUpdate struct {
	ID       int64
	Position int
}
