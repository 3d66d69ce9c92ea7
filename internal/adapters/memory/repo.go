// Package memory holds in-memory repository implementations. They back unit
// tests and local development; the position and single-active-owner
// guarantees still come from the engine's per-restaurant locking.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tableq/tableq/internal/domain"
	"github.com/tableq/tableq/internal/queue"
)

type Repository struct {
	mu      sync.RWMutex
	nextID  int64
	entries map[int64]domain.QueueEntry
}

func NewRepository() *Repository {
	return &Repository{nextID: 1, entries: make(map[int64]domain.QueueEntry)}
}

func (r *Repository) CreateEntry(ctx context.Context, entry domain.QueueEntry) (domain.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.OwnerID != "" {
		for _, e := range r.entries {
			if e.OwnerID == entry.OwnerID && e.Status == domain.StatusWaiting {
				return domain.QueueEntry{}, &domain.DuplicateEntryError{Existing: e}
			}
		}
	}

	entry.ID = r.nextID
	r.nextID++
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *Repository) GetEntry(ctx context.Context, id int64) (*domain.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (r *Repository) GetEntryByToken(ctx context.Context, token string) (*domain.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.Token == token {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *Repository) GetActiveEntryByOwner(ctx context.Context, ownerID string) (*domain.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.OwnerID == ownerID && e.Status == domain.StatusWaiting {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *Repository) ListByRestaurant(ctx context.Context, restaurant string) ([]domain.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var entries []domain.QueueEntry
	for _, e := range r.entries {
		if e.Restaurant == restaurant {
			entries = append(entries, e)
		}
	}
	sortByJoinTime(entries)
	return entries, nil
}

func (r *Repository) ListAll(ctx context.Context) ([]domain.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]domain.QueueEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sortByJoinTime(entries)
	return entries, nil
}

func sortByJoinTime(entries []domain.QueueEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].JoinTime.Equal(entries[j].JoinTime) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].JoinTime.Before(entries[j].JoinTime)
	})
}

func (r *Repository) CountWaitingRoom(ctx context.Context, restaurant string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, e := range r.entries {
		if e.Restaurant == restaurant && e.Status.InWaitingRoom() {
			count++
		}
	}
	return count, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = status
	r.entries[id] = e
	return nil
}

func (r *Repository) UpdatePositions(ctx context.Context, updates []queue.PositionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range updates {
		e, ok := r.entries[u.ID]
		if !ok {
			return domain.ErrNotFound
		}
		e.Position = u.Position
		r.entries[u.ID] = e
	}
	return nil
}

func (r *Repository) DeleteEntry(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false, nil
	}
	delete(r.entries, id)
	return true, nil
}
