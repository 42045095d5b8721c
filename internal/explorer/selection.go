package explorer

import "sync"

// Control is an action that operates on selected experiments.
type Control struct {
	Name        string
	MultiSelect bool
}

var (
	ControlEdit     = Control{Name: "edit"}
	ControlDelete   = Control{Name: "delete", MultiSelect: true}
	ControlDownload = Control{Name: "download"}
)

// DefaultControls are the actions offered by the explorer.
var DefaultControls = []Control{ControlEdit, ControlDelete, ControlDownload}

// ControlState is a control together with its derived enabled flag.
type ControlState struct {
	Control
	Enabled bool
}

// Selection tracks selected rows and the enabled state of every control.
// The selected set is always a subset of the rows given to SetRows.
type Selection struct {
	mu       sync.Mutex
	rows     []string
	known    map[string]struct{}
	selected map[string]struct{}
	controls []Control
	enabled  map[string]bool
}

// NewSelection creates an empty selection over no rows. With no controls
// given, DefaultControls are used.
func NewSelection(controls ...Control) *Selection {
	if len(controls) == 0 {
		controls = DefaultControls
	}
	s := &Selection{
		known:    make(map[string]struct{}),
		selected: make(map[string]struct{}),
		controls: append([]Control(nil), controls...),
		enabled:  make(map[string]bool, len(controls)),
	}
	s.onSelectionChanged()
	return s
}

// SetRows replaces the rendered rows, dropping selections for rows that are
// gone.
func (s *Selection) SetRows(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append([]string(nil), ids...)
	s.known = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.known[id] = struct{}{}
	}
	for id := range s.selected {
		if _, ok := s.known[id]; !ok {
			delete(s.selected, id)
		}
	}
	s.onSelectionChanged()
}

// Toggle flips the selection of one row.
func (s *Selection) Toggle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.known[id]; !ok {
		return ErrUnknownRow
	}
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		s.selected[id] = struct{}{}
	}
	s.onSelectionChanged()
	return nil
}

// ToggleAll clears the selection when every row is selected and selects
// every row otherwise.
func (s *Selection) ToggleAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.selected) == len(s.rows) {
		s.selected = make(map[string]struct{})
	} else {
		for _, id := range s.rows {
			s.selected[id] = struct{}{}
		}
	}
	s.onSelectionChanged()
}

// Clear deselects every row.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]struct{})
	s.onSelectionChanged()
}

// Selected returns the selected ids in row order.
func (s *Selection) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.selected))
	for _, id := range s.rows {
		if _, ok := s.selected[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *Selection) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selected[id]
	return ok
}

func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected)
}

// Enabled reports whether the named control may be invoked.
func (s *Selection) Enabled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled[name]
}

// Controls returns every control with its enabled state.
func (s *Selection) Controls() []ControlState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ControlState, len(s.controls))
	for i, c := range s.controls {
		out[i] = ControlState{Control: c, Enabled: s.enabled[c.Name]}
	}
	return out
}

// onSelectionChanged re-derives control state. Callers hold mu.
func (s *Selection) onSelectionChanged() {
	n := len(s.selected)
	for _, c := range s.controls {
		s.enabled[c.Name] = n == 1 || (n > 1 && c.MultiSelect)
	}
}
