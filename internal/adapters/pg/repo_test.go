package pg_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tableq/tableq/internal/adapters/pg"
	"github.com/tableq/tableq/internal/domain"
	"github.com/tableq/tableq/internal/queue"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const schema = `
CREATE TABLE IF NOT EXISTS queue_entries (
	id BIGSERIAL PRIMARY KEY,
	token VARCHAR(255) NOT NULL UNIQUE,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	restaurant VARCHAR(255) NOT NULL,
	party_size INTEGER NOT NULL CHECK (party_size >= 1),
	join_time TIMESTAMPTZ NOT NULL,
	eta TIMESTAMPTZ NOT NULL,
	status VARCHAR(50) NOT NULL DEFAULT 'Waiting',
	position INTEGER NOT NULL DEFAULT 1,
	owner_id VARCHAR(255)
);
CREATE UNIQUE INDEX IF NOT EXISTS queue_entries_owner_waiting_idx
	ON queue_entries (owner_id) WHERE status = 'Waiting';
`

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			Env:          map[string]string{"POSTGRES_USER": "tableq", "POSTGRES_PASSWORD": "tableq", "POSTGRES_DB": "tableq"},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { pgContainer.Terminate(ctx) })

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatal(err)
	}

	dsn := fmt.Sprintf("postgres://tableq:tableq@%s:%s/tableq?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatal(err)
	}
	return pool
}

func testEntry(restaurant, owner string, joinTime time.Time) domain.QueueEntry {
	return domain.NewQueueEntry("Alice", "alice@example.com", restaurant, 2, joinTime, owner, domain.WaitEstimate)
}

func TestRepository_CreateAndLookup(t *testing.T) {
	pool := setupPool(t)
	repo := pg.NewRepository(pool)
	ctx := context.Background()

	t0 := time.Now().UTC().Truncate(time.Microsecond)
	entry := testEntry("bella-vista", "user-1", t0)
	entry.Position = 1

	created, err := repo.CreateEntry(ctx, entry)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	byID, err := repo.GetEntry(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if byID == nil || byID.Token != entry.Token || byID.Position != 1 {
		t.Fatalf("unexpected entry: %+v", byID)
	}

	byToken, err := repo.GetEntryByToken(ctx, entry.Token)
	if err != nil {
		t.Fatal(err)
	}
	if byToken == nil || byToken.ID != created.ID {
		t.Fatalf("token lookup failed: %+v", byToken)
	}

	missing, err := repo.GetEntryByToken(ctx, "nope")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown token, got %+v", missing)
	}
}

func TestRepository_DuplicateOwnerRejected(t *testing.T) {
	pool := setupPool(t)
	repo := pg.NewRepository(pool)
	ctx := context.Background()

	t0 := time.Now().UTC()
	if _, err := repo.CreateEntry(ctx, testEntry("bella-vista", "user-1", t0)); err != nil {
		t.Fatal(err)
	}

	_, err := repo.CreateEntry(ctx, testEntry("trattoria", "user-1", t0.Add(time.Minute)))
	var dup *domain.DuplicateEntryError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateEntryError, got %v", err)
	}
	if dup.Existing.Restaurant != "bella-vista" {
		t.Fatalf("expected existing entry to surface, got %+v", dup.Existing)
	}
}

func TestRepository_StatusPositionsDelete(t *testing.T) {
	pool := setupPool(t)
	repo := pg.NewRepository(pool)
	ctx := context.Background()

	t0 := time.Now().UTC()
	first, err := repo.CreateEntry(ctx, testEntry("bella-vista", "", t0))
	if err != nil {
		t.Fatal(err)
	}
	second, err := repo.CreateEntry(ctx, testEntry("bella-vista", "", t0.Add(time.Minute)))
	if err != nil {
		t.Fatal(err)
	}

	count, err := repo.CountWaitingRoom(ctx, "bella-vista")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("expected 2 in waiting room, got %d", count)
	}

	// Ready entries keep their slot; only Seated/Cancelled free one.
	if err := repo.UpdateStatus(ctx, first.ID, domain.StatusReady); err != nil {
		t.Fatal(err)
	}
	count, err = repo.CountWaitingRoom(ctx, "bella-vista")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("expected ready entry to keep its slot, got %d", count)
	}

	if err := repo.UpdateStatus(ctx, first.ID, domain.StatusSeated); err != nil {
		t.Fatal(err)
	}
	count, err = repo.CountWaitingRoom(ctx, "bella-vista")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 in waiting room after seating, got %d", count)
	}
	if err := repo.UpdateStatus(ctx, 9999, domain.StatusSeated); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	err = repo.UpdatePositions(ctx, []queue.PositionUpdate{{ID: second.ID, Position: 1}})
	if err != nil {
		t.Fatal(err)
	}
	updated, err := repo.GetEntry(ctx, second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Position != 1 {
		t.Fatalf("expected position 1, got %d", updated.Position)
	}

	deleted, err := repo.DeleteEntry(ctx, second.ID)
	if err != nil || !deleted {
		t.Fatalf("expected delete, got %v %v", deleted, err)
	}
	deleted, err = repo.DeleteEntry(ctx, second.ID)
	if err != nil || deleted {
		t.Fatalf("expected no-op delete, got %v %v", deleted, err)
	}
}
