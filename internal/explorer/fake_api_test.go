package explorer

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/emiliopalmerini/mexp/internal/domain"
)

// fakeAPI is an in-memory ports.ExperimentAPI. Gates let tests hold a
// response until they decide the order of arrivals.
type fakeAPI struct {
	mu sync.Mutex

	ids       []string
	listErr   error
	summaries map[string]*domain.ExperimentSummary
	fetchErrs map[string]error
	gates     map[string]chan struct{}
	fetches   []string

	notes     map[string][]string
	notesErr  error
	saveGate  chan struct{}
	saveErr   error
	saveCalls int

	deleteErr   error
	deleteCalls [][]string

	downloadBody string
	downloadErr  error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		summaries: make(map[string]*domain.ExperimentSummary),
		fetchErrs: make(map[string]error),
		gates:     make(map[string]chan struct{}),
		notes:     make(map[string][]string),
	}
}

func (f *fakeAPI) ListProjects(context.Context) ([]domain.Project, error) {
	return []domain.Project{{Name: "proj"}}, nil
}

func (f *fakeAPI) ListExperiments(context.Context, string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string(nil), f.ids...), nil
}

func (f *fakeAPI) GetExperiment(ctx context.Context, _ string, id string) (*domain.ExperimentSummary, error) {
	f.mu.Lock()
	f.fetches = append(f.fetches, id)
	gate := f.gates[id]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fetchErrs[id]; err != nil {
		return nil, err
	}
	return f.summaries[id], nil
}

func (f *fakeAPI) GetNotes(_ context.Context, _ string, id string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notesErr != nil {
		return nil, f.notesErr
	}
	return f.notes[id], nil
}

func (f *fakeAPI) SaveNotes(ctx context.Context, _ string, id string, notes []string) error {
	f.mu.Lock()
	f.saveCalls++
	gate := f.saveGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.notes[id] = notes
	if s := f.summaries[id]; s != nil && s.ExecutionInfo != nil {
		info := *s.ExecutionInfo
		info.Notes = notes
		f.summaries[id] = &domain.ExperimentSummary{ExecutionInfo: &info, Results: s.Results}
	}
	return nil
}

func (f *fakeAPI) DeleteExperiments(_ context.Context, _ string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, append([]string(nil), ids...))
	if f.deleteErr != nil {
		return f.deleteErr
	}
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}
	kept := f.ids[:0]
	for _, id := range f.ids {
		if !gone[id] {
			kept = append(kept, id)
		}
	}
	f.ids = kept
	return nil
}

func (f *fakeAPI) DownloadURL(project, id string) string {
	return "http://fake/download?project_name=" + project + "&experiment=" + id
}

func (f *fakeAPI) Download(_ context.Context, _, _ string, w io.Writer) (int64, error) {
	if f.downloadErr != nil {
		return 0, f.downloadErr
	}
	return io.Copy(w, strings.NewReader(f.downloadBody))
}

func (f *fakeAPI) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetches)
}

func (f *fakeAPI) saves() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveCalls
}

func running(author string, notes ...string) *domain.ExperimentSummary {
	return &domain.ExperimentSummary{
		ExecutionInfo: &domain.ExecutionInfo{Author: domain.Author{Name: author}, Notes: notes},
	}
}

func complete(author, endTime string, metrics domain.Metrics) *domain.ExperimentSummary {
	s := running(author)
	s.Results = &domain.Results{EndTime: endTime, Metrics: metrics}
	return s
}

func metrics(kv ...any) domain.Metrics {
	m := domain.Metrics{}
	for i := 0; i+1 < len(kv); i += 2 {
		name := kv[i].(string)
		switch v := kv[i+1].(type) {
		case float64:
			m = m.Set(name, domain.Number(v))
		case int:
			m = m.Set(name, domain.Int(int64(v)))
		case string:
			m = m.Set(name, domain.Text(v))
		case bool:
			m = m.Set(name, domain.Bool(v))
		}
	}
	return m
}
