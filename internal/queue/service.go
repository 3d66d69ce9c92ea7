// Package queue implements the waitlist engine: join-time sequencing,
// position computation, ETA assignment and the status transition rules.
package queue

import (
	"context"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tableq/tableq/internal/domain"
	"github.com/tableq/tableq/internal/lock"
	"github.com/tableq/tableq/internal/notify"
	"github.com/tableq/tableq/internal/observability"
)

// Auditor records queue mutations for the audit trail. Best-effort, like
// notifications.
type Auditor interface {
	RecordQueueEvent(ctx context.Context, action string, entry domain.QueueEntry) error
}

type Service struct {
	repo     Repository
	notifier notify.Notifier
	locker   lock.Locker
	auditor  Auditor
	logger   observability.Logger
	wait     time.Duration
}

func NewService(repo Repository, notifier notify.Notifier, locker lock.Locker, auditor Auditor, logger observability.Logger, wait time.Duration) *Service {
	if wait <= 0 {
		wait = domain.WaitEstimate
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		locker:   locker,
		auditor:  auditor,
		logger:   logger,
		wait:     wait,
	}
}

type JoinRequest struct {
	Name       string
	Email      string
	Restaurant string
	PartySize  int
	JoinTime   time.Time // zero value means now
	OwnerID    string    // empty for anonymous/webhook joins
}

// Join appends a customer to a restaurant's waitlist. The count-then-insert
// sequence runs under the restaurant's lock so two concurrent joins can never
// be assigned the same tail position.
func (s *Service) Join(ctx context.Context, req JoinRequest) (domain.QueueEntry, error) {
	joinTime := req.JoinTime
	if joinTime.IsZero() {
		joinTime = time.Now()
	}

	entry := domain.NewQueueEntry(req.Name, req.Email, req.Restaurant, req.PartySize, joinTime, req.OwnerID, s.wait)
	if err := entry.Validate(); err != nil {
		return domain.QueueEntry{}, err
	}

	release, err := s.locker.Acquire(ctx, req.Restaurant)
	if err != nil {
		return domain.QueueEntry{}, errors.Wrap(err, "acquire restaurant lock")
	}
	defer release()

	if req.OwnerID != "" {
		existing, err := s.repo.GetActiveEntryByOwner(ctx, req.OwnerID)
		if err != nil {
			return domain.QueueEntry{}, errors.Wrap(err, "check active entry")
		}
		if existing != nil {
			return domain.QueueEntry{}, &domain.DuplicateEntryError{Existing: *existing}
		}
	}

	occupied, err := s.repo.CountWaitingRoom(ctx, req.Restaurant)
	if err != nil {
		return domain.QueueEntry{}, errors.Wrap(err, "count waiting room")
	}
	entry.Position = occupied + 1

	created, err := s.repo.CreateEntry(ctx, entry)
	if err != nil {
		return domain.QueueEntry{}, errors.Wrap(err, "create entry")
	}

	observability.JoinsTotal.WithLabelValues(created.Restaurant).Inc()
	observability.WaitingDepth.WithLabelValues(created.Restaurant).Set(float64(created.Position))

	s.emit(ctx, notify.Intent{
		Kind:       notify.KindJoined,
		Contact:    created.Email,
		Name:       created.Name,
		Restaurant: created.Restaurant,
		Position:   created.Position,
		ETA:        created.ETA.Format(time.Kitchen),
		PartySize:  created.PartySize,
	})
	s.audit(ctx, "queue.joined", created)

	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.QueueEntry, error) {
	return s.repo.GetEntry(ctx, id)
}

// GetByToken is the check-in lookup. Unknown tokens yield nil, never an error.
func (s *Service) GetByToken(ctx context.Context, token string) (*domain.QueueEntry, error) {
	return s.repo.GetEntryByToken(ctx, token)
}

func (s *Service) GetActiveByOwner(ctx context.Context, ownerID string) (*domain.QueueEntry, error) {
	return s.repo.GetActiveEntryByOwner(ctx, ownerID)
}

func (s *Service) GetByRestaurant(ctx context.Context, restaurant string) ([]domain.QueueEntry, error) {
	return s.repo.ListByRestaurant(ctx, restaurant)
}

func (s *Service) GetAll(ctx context.Context) ([]domain.QueueEntry, error) {
	return s.repo.ListAll(ctx)
}

// UpdateStatus applies a status transition. Transitions out of the waiting
// room (Seated, Cancelled) recompute positions immediately; Waiting -> Ready
// does not, since Ready customers keep their place in line.
func (s *Service) UpdateStatus(ctx context.Context, id int64, next domain.Status) (*domain.QueueEntry, error) {
	if !next.Valid() {
		return nil, domain.ErrInvalidInput
	}

	entry, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get entry")
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}

	release, err := s.locker.Acquire(ctx, entry.Restaurant)
	if err != nil {
		return nil, errors.Wrap(err, "acquire restaurant lock")
	}
	defer release()

	// Re-read under the lock: a concurrent transition or removal may have
	// landed between the first read and lock acquisition.
	entry, err = s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get entry")
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}

	if !entry.Status.CanTransitionTo(next) {
		return nil, &domain.IllegalTransitionError{From: entry.Status, To: next}
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, errors.Wrap(err, "update status")
	}
	entry.Status = next
	observability.StatusTransitionsTotal.WithLabelValues(string(next)).Inc()

	if !next.InWaitingRoom() {
		if err := s.recomputeLocked(ctx, entry.Restaurant); err != nil {
			return nil, err
		}
		entry.Position = 0
	}

	intent := notify.Intent{
		Kind:       notify.KindStatusChanged,
		Contact:    entry.Email,
		Name:       entry.Name,
		Restaurant: entry.Restaurant,
		Status:     string(next),
	}
	if next == domain.StatusWaiting {
		intent.Position = entry.Position
	}
	s.emit(ctx, intent)
	s.audit(ctx, "queue.status_changed", *entry)

	return entry, nil
}

// Remove hard-deletes an entry. A missing entry is reported as false, not an
// error.
func (s *Service) Remove(ctx context.Context, id int64) (bool, error) {
	entry, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return false, errors.Wrap(err, "get entry")
	}
	if entry == nil {
		return false, nil
	}

	release, err := s.locker.Acquire(ctx, entry.Restaurant)
	if err != nil {
		return false, errors.Wrap(err, "acquire restaurant lock")
	}
	defer release()

	deleted, err := s.repo.DeleteEntry(ctx, id)
	if err != nil {
		return false, errors.Wrap(err, "delete entry")
	}
	if !deleted {
		return false, nil
	}

	if entry.Status.InWaitingRoom() {
		if err := s.recomputeLocked(ctx, entry.Restaurant); err != nil {
			return false, err
		}
	}
	s.audit(ctx, "queue.removed", *entry)

	return true, nil
}

// PositionOf derives the entry's rank within the waiting room live from
// stored entries rather than trusting the cached position. Returns 0 for
// missing or non-Waiting entries.
func (s *Service) PositionOf(ctx context.Context, id int64) (int, error) {
	entry, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return 0, errors.Wrap(err, "get entry")
	}
	if entry == nil || entry.Status != domain.StatusWaiting {
		return 0, nil
	}

	entries, err := s.repo.ListByRestaurant(ctx, entry.Restaurant)
	if err != nil {
		return 0, errors.Wrap(err, "list restaurant entries")
	}
	for i, e := range sortWaitingRoom(entries) {
		if e.ID == id {
			return i + 1, nil
		}
	}
	return 0, nil
}

// RecomputePositions reassigns 1..N to a restaurant's waiting room in
// joinTime order. Idempotent.
func (s *Service) RecomputePositions(ctx context.Context, restaurant string) error {
	release, err := s.locker.Acquire(ctx, restaurant)
	if err != nil {
		return errors.Wrap(err, "acquire restaurant lock")
	}
	defer release()
	return s.recomputeLocked(ctx, restaurant)
}

func (s *Service) recomputeLocked(ctx context.Context, restaurant string) error {
	start := time.Now()

	entries, err := s.repo.ListByRestaurant(ctx, restaurant)
	if err != nil {
		return errors.Wrap(err, "list restaurant entries")
	}

	room := sortWaitingRoom(entries)
	var updates []PositionUpdate
	for i, e := range room {
		if e.Position != i+1 {
			updates = append(updates, PositionUpdate{ID: e.ID, Position: i + 1})
		}
	}
	if len(updates) > 0 {
		if err := s.repo.UpdatePositions(ctx, updates); err != nil {
			return errors.Wrap(err, "update positions")
		}
	}

	observability.WaitingDepth.WithLabelValues(restaurant).Set(float64(len(room)))
	observability.RecomputeDuration.Observe(time.Since(start).Seconds())
	return nil
}

// sortWaitingRoom filters to entries still occupying a slot (Waiting or
// Ready) and orders them by joinTime ascending, id ascending as the
// deterministic tiebreak. Ready entries stay in the pool so a join behind
// them cannot reuse a held position.
func sortWaitingRoom(entries []domain.QueueEntry) []domain.QueueEntry {
	room := make([]domain.QueueEntry, 0, len(entries))
	for _, e := range entries {
		if e.Status.InWaitingRoom() {
			room = append(room, e)
		}
	}
	sort.SliceStable(room, func(i, j int) bool {
		if room[i].JoinTime.Equal(room[j].JoinTime) {
			return room[i].ID < room[j].ID
		}
		return room[i].JoinTime.Before(room[j].JoinTime)
	})
	return room
}

func (s *Service) emit(ctx context.Context, intent notify.Intent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, intent); err != nil {
		observability.NotifyFailuresTotal.Inc()
		s.logger.WithField("kind", string(intent.Kind)).Error("failed to publish notification", err)
	}
}

func (s *Service) audit(ctx context.Context, action string, entry domain.QueueEntry) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.RecordQueueEvent(ctx, action, entry); err != nil {
		s.logger.WithField("action", action).Error("failed to record audit event", err)
	}
}
