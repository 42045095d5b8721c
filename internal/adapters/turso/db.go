package turso

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tursodatabase/go-libsql"
)

// Config selects where the experiment database lives.
//
// An empty URL or a file: URL opens a local database. A libsql:// or
// https:// URL with a ReplicaPath opens an embedded replica that syncs with
// the remote primary; without a ReplicaPath the remote is used directly.
type Config struct {
	URL          string
	AuthToken    string
	ReplicaPath  string
	SyncInterval time.Duration
}

// DB is an open experiment database. Embedded replicas sync on Sync and Close.
type DB struct {
	*sql.DB
	connector *libsql.Connector
}

// Open connects to the database described by cfg and pings it.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func open(cfg Config) (*DB, error) {
	switch {
	case cfg.URL == "":
		return nil, fmt.Errorf("database URL not configured")

	case strings.HasPrefix(cfg.URL, "file:"):
		db, err := sql.Open("libsql", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return &DB{DB: db}, nil

	case cfg.ReplicaPath != "":
		opts := []libsql.Option{libsql.WithAuthToken(cfg.AuthToken)}
		if cfg.SyncInterval > 0 {
			opts = append(opts, libsql.WithSyncInterval(cfg.SyncInterval))
		}
		connector, err := libsql.NewEmbeddedReplicaConnector(cfg.ReplicaPath, cfg.URL, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedded replica: %w", err)
		}
		return &DB{DB: sql.OpenDB(connector), connector: connector}, nil

	default:
		connStr := cfg.URL
		if cfg.AuthToken != "" {
			connStr += "?authToken=" + cfg.AuthToken
		}
		db, err := sql.Open("libsql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// Turso closes idle Hrana streams, so stale pooled connections fail
		// with "stream not found".
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(0)
		db.SetConnMaxLifetime(5 * time.Minute)
		return &DB{DB: db}, nil
	}
}

// Sync pulls and pushes replica frames. It is a no-op for non-replica databases.
func (d *DB) Sync() error {
	if d.connector == nil {
		return nil
	}
	if _, err := d.connector.Sync(); err != nil {
		return fmt.Errorf("failed to sync replica: %w", err)
	}
	return nil
}

// Close syncs a replica one last time and closes the database.
func (d *DB) Close() error {
	syncErr := d.Sync()
	err := d.DB.Close()
	if d.connector != nil {
		if cerr := d.connector.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return err
	}
	return syncErr
}
