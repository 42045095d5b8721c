package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/emiliopalmerini/mexp/internal/adapters/httpapi"
	"github.com/emiliopalmerini/mexp/internal/adapters/otel"
	"github.com/emiliopalmerini/mexp/internal/adapters/turso"
	"github.com/emiliopalmerini/mexp/internal/logx"
	"github.com/emiliopalmerini/mexp/internal/migrate"
	"github.com/emiliopalmerini/mexp/internal/ports"
	"github.com/emiliopalmerini/mexp/internal/util"
	"github.com/emiliopalmerini/mexp/internal/web"
)

const (
	databaseFile = "mexp.db"
	replicaFile  = "replica.db"
)

// DatabaseConfig resolves the store location. An empty URL falls back to a
// local file in the data directory.
func (c *Config) DatabaseConfig() (turso.Config, error) {
	cfg := turso.Config{
		URL:          c.Database.URL,
		AuthToken:    c.Database.AuthToken,
		SyncInterval: c.Database.SyncInterval,
	}
	if cfg.URL == "" {
		path, err := util.DataPath(databaseFile)
		if err != nil {
			return turso.Config{}, err
		}
		cfg.URL = "file:" + path
		return cfg, nil
	}
	if c.Database.Replica {
		path, err := util.DataPath(replicaFile)
		if err != nil {
			return turso.Config{}, err
		}
		cfg.ReplicaPath = path
	}
	return cfg, nil
}

// OpenDB opens the experiment database without touching its schema.
func OpenDB(ctx context.Context, cfg *Config) (*turso.DB, error) {
	dbCfg, err := cfg.DatabaseConfig()
	if err != nil {
		return nil, err
	}
	db, err := turso.Open(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// OpenStore opens the experiment database and brings its schema up to date.
// The caller closes the returned DB.
func OpenStore(ctx context.Context, cfg *Config) (*turso.DB, *turso.Store, error) {
	db, err := OpenDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.RunAll(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, turso.NewStore(db.DB), nil
}

// NewAPI builds the HTTP client the explorer uses to reach the server.
func NewAPI(cfg *Config) (*httpapi.Client, error) {
	return httpapi.NewClient(httpapi.Config{
		BaseURL: cfg.Client.ServerURL,
		Timeout: cfg.Client.RequestTimeout,
	})
}

// NewMetrics returns the OTLP exporter when enabled. Exporter failures
// degrade to a no-op exporter so the explorer keeps working.
func NewMetrics(ctx context.Context, cfg *Config) ports.MetricsExporter {
	exporter, err := otel.New(ctx, otel.Config{
		Endpoint: cfg.OTel.Endpoint,
		Enabled:  cfg.OTel.Enabled,
		Insecure: cfg.OTel.Insecure,
	})
	if err != nil {
		logx.Ctx(ctx).Warn("metrics exporter disabled", "err", err)
		return otel.NewNoOpExporter()
	}
	return exporter
}

// Serve runs the experiment server until ctx is cancelled or the process
// receives SIGINT or SIGTERM.
func Serve(ctx context.Context, cfg *Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, store, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logx.Ctx(ctx).Warn("failed to close database", "err", err)
		}
	}()

	server := web.NewServer(store, web.Config{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	return server.Start(ctx)
}
