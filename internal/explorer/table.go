package explorer

import (
	"errors"
	"strings"
	"sync"
)

// Fixed columns, in display order, before any metric column.
const (
	ColumnID         = "ID"
	ColumnStatus     = "Status"
	ColumnAuthor     = "Author"
	ColumnNotes      = "Notes"
	ColumnFinishTime = "Finish Time"
)

// FixedColumns are the non-metric columns every table starts with.
var FixedColumns = []string{ColumnID, ColumnStatus, ColumnAuthor, ColumnNotes, ColumnFinishTime}

// Placeholder fills a row's cells until its summary arrives.
const Placeholder = "..."

// NotesSeparator joins note lines inside the notes cell.
const NotesSeparator = "\n"

var (
	ErrUnknownRow       = errors.New("unknown experiment row")
	ErrMalformedSummary = errors.New("malformed experiment summary")
	errStaleGeneration  = errors.New("table was reset")
)

// Row is one experiment's cells. Metrics is aligned with Table.Columns.
type Row struct {
	ID         string
	Status     string
	Author     string
	Notes      string
	FinishTime string
	Metrics    []string
	Loaded     bool
}

// Cells returns the fixed cells followed by the metric cells.
func (r Row) Cells() []string {
	cells := make([]string, 0, len(FixedColumns)+len(r.Metrics))
	cells = append(cells, r.ID, r.Status, r.Author, r.Notes, r.FinishTime)
	return append(cells, r.Metrics...)
}

// NoteLines splits the notes cell back into lines.
func (r Row) NoteLines() []string {
	if r.Notes == "" || r.Notes == Placeholder {
		return nil
	}
	return strings.Split(r.Notes, NotesSeparator)
}

// Table is the session's experiment table. All mutation goes through its
// mutex, so row fetches completing on different goroutines never race on the
// metric column set. The column set only grows until the next Reset.
type Table struct {
	mu         sync.Mutex
	columns    []string
	index      map[string]int
	rows       []*Row
	byID       map[string]*Row
	version    uint64
	generation uint64
}

// NewTable creates a table with one placeholder row per experiment id.
func NewTable(ids []string) *Table {
	t := &Table{}
	t.Reset(ids)
	return t
}

// Reset discards all rows and metric columns and starts over with ids.
// Renders issued against an earlier generation are dropped.
func (t *Table) Reset(ids []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.columns = nil
	t.index = make(map[string]int)
	t.rows = make([]*Row, 0, len(ids))
	t.byID = make(map[string]*Row, len(ids))
	for _, id := range ids {
		if _, dup := t.byID[id]; dup {
			continue
		}
		row := &Row{
			ID:         id,
			Status:     Placeholder,
			Author:     Placeholder,
			Notes:      Placeholder,
			FinishTime: Placeholder,
		}
		t.rows = append(t.rows, row)
		t.byID[id] = row
	}
	t.generation++
	t.version++
}

// IDs returns the row identifiers in display order.
func (t *Table) IDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, len(t.rows))
	for i, row := range t.rows {
		ids[i] = row.ID
	}
	return ids
}

// Columns returns the metric column names in the order they were added.
func (t *Table) Columns() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.columns...)
}

// Header returns fixed and metric column names.
func (t *Table) Header() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	header := make([]string, 0, len(FixedColumns)+len(t.columns))
	header = append(header, FixedColumns...)
	return append(header, t.columns...)
}

// Rows returns a copy of every row.
func (t *Table) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := make([]Row, len(t.rows))
	for i, row := range t.rows {
		rows[i] = copyRow(row)
	}
	return rows
}

// Pending returns the ids of rows that have not been rendered yet, in display
// order. After a load settles these are the rows whose fetch failed.
func (t *Table) Pending() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var ids []string
	for _, row := range t.rows {
		if !row.Loaded {
			ids = append(ids, row.ID)
		}
	}
	return ids
}

// Snapshot returns the header and every row's cells taken under one lock,
// so each row has exactly one cell per header column.
func (t *Table) Snapshot() ([]string, [][]string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	header := make([]string, 0, len(FixedColumns)+len(t.columns))
	header = append(header, FixedColumns...)
	header = append(header, t.columns...)

	cells := make([][]string, len(t.rows))
	for i, row := range t.rows {
		cells[i] = row.Cells()
	}
	return header, cells
}

// Row returns a copy of the row for id.
func (t *Table) Row(id string) (Row, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.byID[id]
	if !ok {
		return Row{}, false
	}
	return copyRow(row), true
}

// Cell returns the content under column for row id. column may be a fixed
// or a metric column name.
func (t *Table) Cell(id, column string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.byID[id]
	if !ok {
		return "", false
	}
	switch column {
	case ColumnID:
		return row.ID, true
	case ColumnStatus:
		return row.Status, true
	case ColumnAuthor:
		return row.Author, true
	case ColumnNotes:
		return row.Notes, true
	case ColumnFinishTime:
		return row.FinishTime, true
	}
	idx, ok := t.index[column]
	if !ok {
		return "", false
	}
	return row.Metrics[idx], true
}

// Len returns the number of rows.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Version increases whenever any cell, column or row changes.
func (t *Table) Version() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.version
}

// Generation identifies the current set of rows.
func (t *Table) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generation
}

// addColumn appends a metric column and fills it with NotAvailable for every
// row, including rows whose summary has not arrived yet. Callers hold mu.
func (t *Table) addColumn(name string) int {
	idx := len(t.columns)
	t.columns = append(t.columns, name)
	t.index[name] = idx
	for _, row := range t.rows {
		row.Metrics = append(row.Metrics, notAvailable)
	}
	return idx
}

func copyRow(row *Row) Row {
	out := *row
	out.Metrics = append([]string(nil), row.Metrics...)
	return out
}

func setCell(cell *string, value string) bool {
	if *cell == value {
		return false
	}
	*cell = value
	return true
}
