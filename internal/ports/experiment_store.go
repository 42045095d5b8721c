package ports

import (
	"context"
	"errors"

	"github.com/emiliopalmerini/mexp/internal/domain"
)

// ErrNotFound is returned by stores for unknown projects or experiments.
var ErrNotFound = errors.New("not found")

type ExperimentStore interface {
	CreateProject(ctx context.Context, project *domain.Project) error
	ListProjects(ctx context.Context) ([]domain.Project, error)
	GetProject(ctx context.Context, name string) (*domain.Project, error)

	// ListExperiments returns experiment ids newest first.
	ListExperiments(ctx context.Context, project string) ([]string, error)
	GetExperiment(ctx context.Context, project, experimentID string) (*domain.ExperimentSummary, error)
	StartExperiment(ctx context.Context, project string, info *domain.ExecutionInfo) (string, error)
	FinishExperiment(ctx context.Context, project, experimentID string, results *domain.Results) error
	AppendLogs(ctx context.Context, project, experimentID string, lines []string) error
	GetNotes(ctx context.Context, project, experimentID string) ([]string, error)
	SetNotes(ctx context.Context, project, experimentID string, notes []string) error
	// DeleteExperiments removes every listed experiment in one transaction.
	DeleteExperiments(ctx context.Context, project string, experimentIDs []string) error
}
