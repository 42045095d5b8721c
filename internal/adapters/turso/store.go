package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/emiliopalmerini/mexp/internal/domain"
	"github.com/emiliopalmerini/mexp/internal/ports"
	"github.com/emiliopalmerini/mexp/internal/util"
)

// Store keeps projects and experiments in libsql. Execution info, results and
// logs are stored as JSON documents shaped like the summaries the server
// returns.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) CreateProject(ctx context.Context, project *domain.Project) error {
	if project == nil || project.Name == "" {
		return fmt.Errorf("project name is required")
	}
	updated := s.now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (name, description, last_time_updated) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET description = excluded.description, last_time_updated = excluded.last_time_updated
	`, project.Name, project.Description, updated)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	project.LastTimeUpdated = updated
	return nil
}

func (s *Store) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return withRetry(ctx, func() ([]domain.Project, error) {
		rows, err := s.db.QueryContext(ctx, `SELECT name, description, last_time_updated FROM projects ORDER BY name`)
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}
		defer rows.Close()

		projects := []domain.Project{}
		for rows.Next() {
			var p domain.Project
			if err := rows.Scan(&p.Name, &p.Description, &p.LastTimeUpdated); err != nil {
				return nil, fmt.Errorf("failed to scan project: %w", err)
			}
			projects = append(projects, p)
		}
		return projects, rows.Err()
	})
}

func (s *Store) GetProject(ctx context.Context, name string) (*domain.Project, error) {
	return withRetry(ctx, func() (*domain.Project, error) {
		var p domain.Project
		err := s.db.QueryRowContext(ctx,
			`SELECT name, description, last_time_updated FROM projects WHERE name = ?`, name,
		).Scan(&p.Name, &p.Description, &p.LastTimeUpdated)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %q: %w", name, ports.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get project: %w", err)
		}
		return &p, nil
	})
}

func (s *Store) ListExperiments(ctx context.Context, project string) ([]string, error) {
	if _, err := s.GetProject(ctx, project); err != nil {
		return nil, err
	}
	return withRetry(ctx, func() ([]string, error) {
		rows, err := s.db.QueryContext(ctx,
			`SELECT id FROM experiments WHERE project_name = ? ORDER BY id DESC`, project)
		if err != nil {
			return nil, fmt.Errorf("failed to list experiments: %w", err)
		}
		defer rows.Close()

		ids := []string{}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return nil, fmt.Errorf("failed to scan experiment: %w", err)
			}
			ids = append(ids, id)
		}
		return ids, rows.Err()
	})
}

func (s *Store) GetExperiment(ctx context.Context, project, experimentID string) (*domain.ExperimentSummary, error) {
	return withRetry(ctx, func() (*domain.ExperimentSummary, error) {
		var (
			info, logs string
			results    sql.NullString
		)
		err := s.db.QueryRowContext(ctx,
			`SELECT execution_info, results, logs FROM experiments WHERE project_name = ? AND id = ?`,
			project, experimentID,
		).Scan(&info, &results, &logs)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(project, experimentID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get experiment: %w", err)
		}
		return decodeSummary(experimentID, info, util.NullStringValue(results), logs)
	})
}

// StartExperiment records a new running experiment. The id is the start time
// in experiment time format.
func (s *Store) StartExperiment(ctx context.Context, project string, info *domain.ExecutionInfo) (string, error) {
	if info == nil {
		return "", fmt.Errorf("execution info is required")
	}
	if _, err := s.GetProject(ctx, project); err != nil {
		return "", err
	}

	now := s.now().UTC()
	id := domain.FormatExperimentTime(now)
	stored := *info
	if stored.StartTime == "" {
		stored.StartTime = id
	}
	if stored.Notes == nil {
		stored.Notes = []string{}
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("failed to encode execution info: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO experiments (project_name, id, execution_info, logs, created_at) VALUES (?, ?, ?, '[]', ?)
	`, project, id, string(data), now.Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("failed to start experiment: %w", err)
	}
	if err := s.touch(ctx, s.db, project); err != nil {
		return "", err
	}
	return id, nil
}

// FinishExperiment stores the results, filling in start and end times when
// they are empty.
func (s *Store) FinishExperiment(ctx context.Context, project, experimentID string, results *domain.Results) error {
	if results == nil {
		return fmt.Errorf("results are required")
	}
	return s.update(ctx, project, experimentID, func(tx *sql.Tx, info *domain.ExecutionInfo, _ string) error {
		stored := *results
		if stored.StartTime == "" {
			stored.StartTime = info.StartTime
		}
		if stored.EndTime == "" {
			stored.EndTime = domain.FormatExperimentTime(s.now().UTC())
		}
		if stored.Metrics == nil {
			stored.Metrics = domain.Metrics{}
		}
		data, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE experiments SET results = ? WHERE project_name = ? AND id = ?`,
			util.NullString(string(data)), project, experimentID)
		return err
	})
}

func (s *Store) AppendLogs(ctx context.Context, project, experimentID string, lines []string) error {
	return s.update(ctx, project, experimentID, func(tx *sql.Tx, _ *domain.ExecutionInfo, logs string) error {
		var existing []string
		if err := json.Unmarshal([]byte(logs), &existing); err != nil {
			return fmt.Errorf("failed to decode logs: %w", err)
		}
		data, err := json.Marshal(append(existing, lines...))
		if err != nil {
			return fmt.Errorf("failed to encode logs: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE experiments SET logs = ? WHERE project_name = ? AND id = ?`,
			string(data), project, experimentID)
		return err
	})
}

func (s *Store) GetNotes(ctx context.Context, project, experimentID string) ([]string, error) {
	summary, err := s.GetExperiment(ctx, project, experimentID)
	if err != nil {
		return nil, err
	}
	return summary.ExecutionInfo.Notes, nil
}

func (s *Store) SetNotes(ctx context.Context, project, experimentID string, notes []string) error {
	return s.update(ctx, project, experimentID, func(tx *sql.Tx, info *domain.ExecutionInfo, _ string) error {
		info.Notes = append([]string{}, notes...)
		data, err := json.Marshal(info)
		if err != nil {
			return fmt.Errorf("failed to encode execution info: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE experiments SET execution_info = ? WHERE project_name = ? AND id = ?`,
			string(data), project, experimentID)
		return err
	})
}

// DeleteExperiments removes every listed experiment or none of them.
func (s *Store) DeleteExperiments(ctx context.Context, project string, experimentIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range experimentIDs {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM experiments WHERE project_name = ? AND id = ?`, project, id)
		if err != nil {
			return fmt.Errorf("failed to delete experiment: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return notFound(project, id)
		}
	}
	if err := s.touch(ctx, tx, project); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// update loads one experiment inside a transaction and hands it to fn.
func (s *Store) update(ctx context.Context, project, experimentID string, fn func(tx *sql.Tx, info *domain.ExecutionInfo, logs string) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var rawInfo, logs string
	err = tx.QueryRowContext(ctx,
		`SELECT execution_info, logs FROM experiments WHERE project_name = ? AND id = ?`,
		project, experimentID,
	).Scan(&rawInfo, &logs)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(project, experimentID)
	}
	if err != nil {
		return fmt.Errorf("failed to load experiment: %w", err)
	}

	var info domain.ExecutionInfo
	if err := json.Unmarshal([]byte(rawInfo), &info); err != nil {
		return fmt.Errorf("failed to decode execution info: %w", err)
	}
	if err := fn(tx, &info, logs); err != nil {
		return fmt.Errorf("failed to update experiment: %w", err)
	}
	if err := s.touch(ctx, tx, project); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) touch(ctx context.Context, db execer, project string) error {
	_, err := db.ExecContext(ctx, `UPDATE projects SET last_time_updated = ? WHERE name = ?`,
		s.now().UTC().Format(time.RFC3339), project)
	if err != nil {
		return fmt.Errorf("failed to update project timestamp: %w", err)
	}
	return nil
}

func decodeSummary(id, info, results, logs string) (*domain.ExperimentSummary, error) {
	summary := &domain.ExperimentSummary{ID: id, ExecutionInfo: &domain.ExecutionInfo{}}
	if err := json.Unmarshal([]byte(info), summary.ExecutionInfo); err != nil {
		return nil, fmt.Errorf("failed to decode execution info: %w", err)
	}
	if summary.ExecutionInfo.Notes == nil {
		summary.ExecutionInfo.Notes = []string{}
	}
	if results != "" {
		summary.Results = &domain.Results{}
		if err := json.Unmarshal([]byte(results), summary.Results); err != nil {
			return nil, fmt.Errorf("failed to decode results: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(logs), &summary.Logs); err != nil {
		return nil, fmt.Errorf("failed to decode logs: %w", err)
	}
	if summary.Logs == nil {
		summary.Logs = []string{}
	}
	return summary, nil
}

func notFound(project, experimentID string) error {
	return fmt.Errorf("experiment %s/%s: %w", project, experimentID, ports.ErrNotFound)
}

var _ ports.ExperimentStore = (*Store)(nil)
