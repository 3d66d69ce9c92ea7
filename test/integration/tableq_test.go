package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/tableq/tableq/internal/adapters/memory"
	"github.com/tableq/tableq/internal/adapters/pg"
	redisadapter "github.com/tableq/tableq/internal/adapters/redis"
	httphandler "github.com/tableq/tableq/internal/http"
	"github.com/tableq/tableq/internal/idempotency"
	"github.com/tableq/tableq/internal/observability"
	"github.com/tableq/tableq/internal/queue"
	"github.com/tableq/tableq/internal/rateLimit"
	"github.com/tableq/tableq/internal/receipts"
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

func TestIntegration_JoinSeatRemove(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
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
	defer pgContainer.Terminate(ctx)

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForExec([]string{"redis-cli", "ping"}),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer redisContainer.Terminate(ctx)

	pgHost, _ := pgContainer.Host(ctx)
	pgPort, _ := pgContainer.MappedPort(ctx, "5432")
	pool, err := pgxpool.New(ctx, fmt.Sprintf("postgres://tableq:tableq@%s:%s/tableq?sslmode=disable", pgHost, pgPort.Port()))
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()
	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatal(err)
	}

	redisHost, _ := redisContainer.Host(ctx)
	redisPort, _ := redisContainer.MappedPort(ctx, "6379")
	rdb := redisclient.NewClient(&redisclient.Options{Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port())})

	logger := observability.NewLogger()
	repo := pg.NewRepository(pool)
	locker := redisadapter.NewLocker(rdb, 10*time.Second)
	queueSvc := queue.NewService(repo, nil, locker, nil, logger, 45*time.Minute)
	receiptSvc := receipts.NewService(memory.NewReceiptRepository())

	idemp := idempotency.NewIdempotency(redisadapter.NewIdempotency(rdb), time.Hour)
	rl := rateLimit.NewRateLimiter(redisadapter.NewCache(rdb))
	handlers := httphandler.NewHandlers(queueSvc, receiptSvc, idemp, logger)
	router := httphandler.SetupRouter(handlers, logger, rl, idemp)

	srv := httptest.NewServer(router)
	defer srv.Close()

	joinBody := func(name string) []byte {
		b, _ := json.Marshal(map[string]interface{}{
			"name":       name,
			"email":      name + "@example.com",
			"restaurant": "bella-vista",
			"party_size": 2,
		})
		return b
	}

	post := func(path, idempKey string, body []byte) *http.Response {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if idempKey != "" {
			req.Header.Set("Idempotency-Key", idempKey)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	// Join Alice. A replayed POST with the same Idempotency-Key must not
	// create a second entry.
	aliceKey := "alice-key-0123456789abcdef"
	resp := post("/v1/queue", aliceKey, joinBody("Alice"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var aliceResp struct {
		Entry struct {
			ID       int64 `json:"id"`
			Position int   `json:"position"`
		} `json:"entry"`
	}
	json.NewDecoder(resp.Body).Decode(&aliceResp)
	resp.Body.Close()
	if aliceResp.Entry.Position != 1 {
		t.Fatalf("expected position 1, got %d", aliceResp.Entry.Position)
	}

	resp = post("/v1/queue", aliceKey, joinBody("Alice"))
	resp.Body.Close()
	entries, err := queueSvc.GetByRestaurant(ctx, "bella-vista")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("idempotent replay must not duplicate entries, got %d", len(entries))
	}

	// Join Bob, seat Alice, Bob becomes first in line.
	resp = post("/v1/queue", "bob-key-0123456789abcdef", joinBody("Bob"))
	var bobResp struct {
		Entry struct {
			ID       int64 `json:"id"`
			Position int   `json:"position"`
		} `json:"entry"`
	}
	json.NewDecoder(resp.Body).Decode(&bobResp)
	resp.Body.Close()
	if bobResp.Entry.Position != 2 {
		t.Fatalf("expected position 2, got %d", bobResp.Entry.Position)
	}

	patch, _ := http.NewRequest(http.MethodPatch, fmt.Sprintf("%s/v1/queue/%d", srv.URL, aliceResp.Entry.ID), bytes.NewReader([]byte(`{"status":"Seated"}`)))
	resp, err = http.DefaultClient.Do(patch)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	pos, err := queueSvc.PositionOf(ctx, bobResp.Entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if pos != 1 {
		t.Fatalf("expected Bob at position 1 after Alice seated, got %d", pos)
	}

	// Remove Bob: the queue is empty, the next join starts at 1.
	del, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/v1/queue/%d", srv.URL, bobResp.Entry.ID), nil)
	resp, err = http.DefaultClient.Do(del)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = post("/v1/queue", "carol-key-0123456789abcdef", joinBody("Carol"))
	var carolResp struct {
		Entry struct {
			Position int `json:"position"`
		} `json:"entry"`
	}
	json.NewDecoder(resp.Body).Decode(&carolResp)
	resp.Body.Close()
	if carolResp.Entry.Position != 1 {
		t.Fatalf("expected Carol at position 1, got %d", carolResp.Entry.Position)
	}
}
