package explorer

import (
	"strings"

	"github.com/emiliopalmerini/mexp/internal/domain"
)

// Render projects summary onto row id and reconciles its metric columns.
// It reports whether any cell or column changed.
func (t *Table) Render(id string, summary *domain.ExperimentSummary) (bool, error) {
	return t.render(0, id, summary)
}

// render with generation 0 applies to whatever rows are current.
func (t *Table) render(generation uint64, id string, summary *domain.ExperimentSummary) (bool, error) {
	if summary == nil || summary.ExecutionInfo == nil {
		return false, ErrMalformedSummary
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if generation != 0 && generation != t.generation {
		return false, errStaleGeneration
	}
	row, ok := t.byID[id]
	if !ok {
		return false, ErrUnknownRow
	}

	info := summary.ExecutionInfo
	changed := setCell(&row.Status, string(summary.Status()))
	changed = setCell(&row.Author, info.Author.Name) || changed
	changed = setCell(&row.Notes, strings.Join(info.Notes, NotesSeparator)) || changed
	changed = setCell(&row.FinishTime, summary.FinishTime()) || changed
	changed = t.reconcile(row, summary.Metrics()) || changed
	row.Loaded = true

	if changed {
		t.version++
	}
	return changed, nil
}
