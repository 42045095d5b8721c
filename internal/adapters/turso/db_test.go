package turso

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/emiliopalmerini/mexp/internal/domain"
	"github.com/emiliopalmerini/mexp/internal/migrate"
)

func TestOpen_LocalFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mexp.db")

	db, err := Open(ctx, Config{URL: "file:" + path})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := migrate.RunAll(ctx, db.DB); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	if err := db.Sync(); err != nil {
		t.Errorf("Sync on a local database should be a no-op, got %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected database file: %v", err)
	}
}

func TestOpen_MissingURL(t *testing.T) {
	if _, err := Open(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestWithRetry(t *testing.T) {
	calls := 0
	got, err := withRetry(context.Background(), func() (int, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("hrana: stream not found")
		}
		return 42, nil
	})
	if err != nil || got != 42 || calls != 2 {
		t.Errorf("got %d, %v after %d calls", got, err, calls)
	}

	calls = 0
	_, err = withRetry(context.Background(), func() (int, error) {
		calls++
		return 0, errors.New("syntax error")
	})
	if err == nil || calls != 1 {
		t.Errorf("other errors must not be retried, calls=%d", calls)
	}
}

// TestStore_LibsqlServer runs the store against a libsql-server container.
// Set MEXP_TURSO_IT=1 to enable it.
func TestStore_LibsqlServer(t *testing.T) {
	if os.Getenv("MEXP_TURSO_IT") != "1" {
		t.Skip("set MEXP_TURSO_IT=1 to run the libsql-server integration test")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "ghcr.io/tursodatabase/libsql-server:latest",
			ExposedPorts: []string{"8080/tcp"},
			WaitingFor:   wait.ForHTTP("/health").WithPort("8080/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start libsql-server container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.PortEndpoint(ctx, "8080/tcp", "http")
	if err != nil {
		t.Fatalf("Failed to get container endpoint: %v", err)
	}

	db, err := Open(ctx, Config{URL: endpoint})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrate.RunAll(ctx, db.DB); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}

	s := NewStore(db.DB)
	if err := s.CreateProject(ctx, &domain.Project{Name: "it"}); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	id, err := s.StartExperiment(ctx, "it", &domain.ExecutionInfo{Author: domain.Author{Name: "ci"}})
	if err != nil {
		t.Fatalf("StartExperiment failed: %v", err)
	}
	if err := s.SetNotes(ctx, "it", id, []string{"remote"}); err != nil {
		t.Fatalf("SetNotes failed: %v", err)
	}
	notes, err := s.GetNotes(ctx, "it", id)
	if err != nil || len(notes) != 1 || notes[0] != "remote" {
		t.Errorf("unexpected notes %q, err %v", notes, err)
	}
}
