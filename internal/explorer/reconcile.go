package explorer

import "github.com/emiliopalmerini/mexp/internal/domain"

const notAvailable = domain.NotAvailable

// Reconcile brings the metric cells of row id in line with metrics and
// reports whether anything changed.
//
// A nil metrics means the experiment has no results yet: every existing metric
// cell of the row becomes NotAvailable and no column is added. Otherwise each
// metric lands in its column, unknown names append a new column (NotAvailable
// for all other rows), and columns the experiment did not report are reset to
// NotAvailable. Calling it again with the same metrics changes nothing.
func (t *Table) Reconcile(id string, metrics domain.Metrics) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.byID[id]
	if !ok {
		return false, ErrUnknownRow
	}
	changed := t.reconcile(row, metrics)
	if changed {
		t.version++
	}
	return changed, nil
}

func (t *Table) reconcile(row *Row, metrics domain.Metrics) bool {
	changed := false

	if metrics == nil {
		for i := range row.Metrics {
			changed = setCell(&row.Metrics[i], notAvailable) || changed
		}
		return changed
	}

	reported := make([]bool, len(t.columns), len(t.columns)+len(metrics))
	for _, metric := range metrics {
		idx, ok := t.index[metric.Name]
		if !ok {
			idx = t.addColumn(metric.Name)
			reported = append(reported, false)
			changed = true
		}
		reported[idx] = true
		changed = setCell(&row.Metrics[idx], metric.Value.String()) || changed
	}

	for i, ok := range reported {
		if !ok {
			changed = setCell(&row.Metrics[i], notAvailable) || changed
		}
	}
	return changed
}
