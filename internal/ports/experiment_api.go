package ports

import (
	"context"
	"io"

	"github.com/emiliopalmerini/mexp/internal/domain"
)

// ExperimentAPI is the client side of the experiment server. Failed calls
// return a *domain.RequestError.
type ExperimentAPI interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	// ListExperiments returns experiment ids newest first.
	ListExperiments(ctx context.Context, project string) ([]string, error)
	GetExperiment(ctx context.Context, project, experimentID string) (*domain.ExperimentSummary, error)
	GetNotes(ctx context.Context, project, experimentID string) ([]string, error)
	SaveNotes(ctx context.Context, project, experimentID string, notes []string) error
	DeleteExperiments(ctx context.Context, project string, experimentIDs []string) error
	// DownloadURL is the address a browser would navigate to.
	DownloadURL(project, experimentID string) string
	Download(ctx context.Context, project, experimentID string, w io.Writer) (int64, error)
}
