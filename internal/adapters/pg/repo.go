// Package pg implements the queue and receipt repositories on PostgreSQL
// via pgx. Multi-statement writes run in SERIALIZABLE transactions; the
// single-active-owner rule is additionally enforced by a partial unique
// index so the check-then-insert sequence cannot race across processes.
package pg

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tableq/tableq/internal/domain"
	"github.com/tableq/tableq/internal/queue"
)

const (
	serializationFailureCode = "40001"
	uniqueViolationCode      = "23505"

	ownerWaitingIndex = "queue_entries_owner_waiting_idx"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "SET TRANSACTION ISOLATION LEVEL SERIALIZABLE")
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == serializationFailureCode {
			return domain.ErrSerializationFailure
		}
		return err
	}

	return tx.Commit(ctx)
}

const entryColumns = "id, token, name, email, restaurant, party_size, join_time, eta, status, position, COALESCE(owner_id, '')"

func (r *Repository) CreateEntry(ctx context.Context, entry domain.QueueEntry) (domain.QueueEntry, error) {
	var ownerID interface{}
	if entry.OwnerID != "" {
		ownerID = entry.OwnerID
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO queue_entries (token, name, email, restaurant, party_size, join_time, eta, status, position, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, entry.Token, entry.Name, entry.Email, entry.Restaurant, entry.PartySize,
		entry.JoinTime, entry.ETA, entry.Status, entry.Position, ownerID).Scan(&entry.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == ownerWaitingIndex {
			existing, lookupErr := r.GetActiveEntryByOwner(ctx, entry.OwnerID)
			if lookupErr == nil && existing != nil {
				return domain.QueueEntry{}, &domain.DuplicateEntryError{Existing: *existing}
			}
		}
		return domain.QueueEntry{}, err
	}
	return entry, nil
}

func (r *Repository) GetEntry(ctx context.Context, id int64) (*domain.QueueEntry, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT ` + entryColumns + ` FROM queue_entries WHERE id = $1
	`, id))
}

func (r *Repository) GetEntryByToken(ctx context.Context, token string) (*domain.QueueEntry, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT ` + entryColumns + ` FROM queue_entries WHERE token = $1
	`, token))
}

func (r *Repository) GetActiveEntryByOwner(ctx context.Context, ownerID string) (*domain.QueueEntry, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT ` + entryColumns + ` FROM queue_entries WHERE owner_id = $1 AND status = $2
	`, ownerID, domain.StatusWaiting))
}

func (r *Repository) ListByRestaurant(ctx context.Context, restaurant string) ([]domain.QueueEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ` + entryColumns + ` FROM queue_entries WHERE restaurant = $1 ORDER BY join_time ASC, id ASC
	`, restaurant)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func (r *Repository) ListAll(ctx context.Context) ([]domain.QueueEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ` + entryColumns + ` FROM queue_entries ORDER BY join_time ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func (r *Repository) CountWaitingRoom(ctx context.Context, restaurant string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM queue_entries WHERE restaurant = $1 AND status IN ($2, $3)
	`, restaurant, domain.StatusWaiting, domain.StatusReady).Scan(&count)
	return count, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE queue_entries SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) UpdatePositions(ctx context.Context, updates []queue.PositionUpdate) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		for _, u := range updates {
			if _, err := tx.Exec(ctx, `
				UPDATE queue_entries SET position = $2 WHERE id = $1
			`, u.ID, u.Position); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) DeleteEntry(ctx context.Context, id int64) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM queue_entries WHERE id = $1
	`, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *Repository) scanOne(row pgx.Row) (*domain.QueueEntry, error) {
	var e domain.QueueEntry
	err := row.Scan(&e.ID, &e.Token, &e.Name, &e.Email, &e.Restaurant, &e.PartySize,
		&e.JoinTime, &e.ETA, &e.Status, &e.Position, &e.OwnerID)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanEntries(rows pgx.Rows) ([]domain.QueueEntry, error) {
	defer rows.Close()

	var entries []domain.QueueEntry
	for rows.Next() {
		var e domain.QueueEntry
		if err := rows.Scan(&e.ID, &e.Token, &e.Name, &e.Email, &e.Restaurant, &e.PartySize,
			&e.JoinTime, &e.ETA, &e.Status, &e.Position, &e.OwnerID); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
