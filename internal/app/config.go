package app

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "MEXP"

// Client configures the explorer side: which server to talk to and how.
type Client struct {
	ServerURL       string        `envconfig:"SERVER_URL" default:"http://localhost:45710"`
	Project         string        `envconfig:"PROJECT"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	LoadConcurrency int           `envconfig:"LOAD_CONCURRENCY" default:"0"`
	DownloadDir     string        `envconfig:"DOWNLOAD_DIR" default:"."`
}

// Server configures the companion experiment server.
type Server struct {
	Addr            string        `envconfig:"ADDR" default:":45710"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Database configures the experiment store. An empty URL means a local
// libsql file in the XDG data directory.
type Database struct {
	URL          string        `envconfig:"DATABASE_URL"`
	AuthToken    string        `envconfig:"AUTH_TOKEN"`
	Replica      bool          `envconfig:"DATABASE_REPLICA" default:"false"`
	SyncInterval time.Duration `envconfig:"SYNC_INTERVAL" default:"0s"`
}

// OTel configures the metrics exporter.
type OTel struct {
	Enabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	Endpoint string `envconfig:"OTEL_ENDPOINT"`
	Insecure bool   `envconfig:"OTEL_INSECURE" default:"false"`
}

type Config struct {
	Client   Client
	Server   Server
	Database Database
	OTel     OTel
	Debug    bool `envconfig:"DEBUG" default:"false"`
}

// New loads an optional .env file and then MEXP_* environment variables.
// Variables already set in the environment win over .env entries.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return Load()
}

// Load reads configuration from MEXP_* environment variables only.
func Load() (*Config, error) {
	var cfg Config
	for _, part := range []any{&cfg.Client, &cfg.Server, &cfg.Database, &cfg.OTel, &cfg} {
		if err := envconfig.Process(envPrefix, part); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
