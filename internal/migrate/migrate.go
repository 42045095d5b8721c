package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/mexp/internal/logx"
	"github.com/emiliopalmerini/mexp/migrations"
)

// Migration is one numbered schema change with its up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// ErrDirty is returned when a previous migration stopped half way.
var ErrDirty = errors.New("database is in dirty state")

var upPattern = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// Migrator applies migrations to a database and tracks the schema version
// in the schema_migrations table.
type Migrator struct {
	db         *sql.DB
	migrations []Migration
}

// New loads the embedded migrations for db.
func New(db *sql.DB) (*Migrator, error) {
	all, err := Load(migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	return &Migrator{db: db, migrations: all}, nil
}

// Migrations returns the known migrations sorted by version.
func (m *Migrator) Migrations() []Migration {
	return m.migrations
}

// Latest returns the highest known migration version.
func (m *Migrator) Latest() int {
	if len(m.migrations) == 0 {
		return 0
	}
	return m.migrations[len(m.migrations)-1].Version
}

// Version returns the current schema version and dirty state.
func (m *Migrator) Version(ctx context.Context) (int, bool, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, false, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var version, dirty int
	err := m.db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, dirty == 1, nil
}

// Up applies every pending migration and returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	return m.To(ctx, m.Latest())
}

// To migrates up or down until the schema is at target. It returns the
// number of migrations applied.
func (m *Migrator) To(ctx context.Context, target int) (int, error) {
	current, dirty, err := m.Version(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("%w at version %d", ErrDirty, current)
	}
	if target < 0 || target > m.Latest() {
		return 0, fmt.Errorf("unknown migration version %d", target)
	}

	count := 0
	if target >= current {
		for _, mig := range m.migrations {
			if mig.Version <= current || mig.Version > target {
				continue
			}
			if err := m.run(ctx, mig, true); err != nil {
				return count, err
			}
			count++
		}
		return count, nil
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if mig.Version > current || mig.Version <= target {
			continue
		}
		if mig.DownSQL == "" {
			return count, fmt.Errorf("no down migration for version %d", mig.Version)
		}
		if err := m.run(ctx, mig, false); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// run executes one migration, holding the dirty flag while it runs.
func (m *Migrator) run(ctx context.Context, mig Migration, up bool) error {
	direction := "up"
	content := mig.UpSQL
	target := mig.Version
	if !up {
		direction = "down"
		content = mig.DownSQL
		target = mig.Version - 1
	}
	logx.Ctx(ctx).Info("applying migration", "version", mig.Version, "name", mig.Name, "direction", direction)

	if err := m.setVersion(ctx, mig.Version, true); err != nil {
		return fmt.Errorf("failed to set dirty flag: %w", err)
	}
	for _, stmt := range SplitSQL(content) {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %d %s: %w", mig.Version, direction, err)
		}
	}
	if err := m.setVersion(ctx, target, false); err != nil {
		return fmt.Errorf("failed to clear dirty flag: %w", err)
	}
	return nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

func (m *Migrator) setVersion(ctx context.Context, version int, dirty bool) error {
	dirtyInt := 0
	if dirty {
		dirtyInt = 1
	}
	if _, err := m.db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}
	if version == 0 && !dirty {
		return nil
	}
	_, err := m.db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, dirtyInt)
	return err
}

// Load reads NNN_name.up.sql files and their optional .down.sql partners
// from fsys, sorted by version.
func Load(fsys fs.FS) ([]Migration, error) {
	var result []Migration
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		matches := upPattern.FindStringSubmatch(path.Base(p))
		if matches == nil {
			return nil
		}

		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return fmt.Errorf("invalid migration version in %s: %w", p, err)
		}
		upSQL, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		downPath := path.Join(path.Dir(p), fmt.Sprintf("%s_%s.down.sql", matches[1], matches[2]))
		downSQL, err := fs.ReadFile(fsys, downPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", downPath, err)
		}

		result = append(result, Migration{
			Version: version,
			Name:    matches[2],
			UpSQL:   string(upSQL),
			DownSQL: string(downSQL),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})
	for i := 1; i < len(result); i++ {
		if result[i].Version == result[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", result[i].Version)
		}
	}
	return result, nil
}

// SplitSQL splits a script into its non-empty statements.
func SplitSQL(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// RunAll applies every pending embedded migration to db.
func RunAll(ctx context.Context, db *sql.DB) error {
	m, err := New(db)
	if err != nil {
		return err
	}
	_, err = m.Up(ctx)
	return err
}
