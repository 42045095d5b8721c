package explorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection_ControlEnablement(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
		want     map[string]bool
	}{
		{
			name: "nothing selected",
			want: map[string]bool{"edit": false, "delete": false, "download": false},
		},
		{
			name:     "one selected",
			selected: []string{"a"},
			want:     map[string]bool{"edit": true, "delete": true, "download": true},
		},
		{
			name:     "two selected",
			selected: []string{"a", "c"},
			want:     map[string]bool{"edit": false, "delete": true, "download": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelection()
			s.SetRows([]string{"a", "b", "c"})
			for _, id := range tt.selected {
				require.NoError(t, s.Toggle(id))
			}
			for name, want := range tt.want {
				assert.Equal(t, want, s.Enabled(name), "control %s", name)
			}
			for _, c := range s.Controls() {
				assert.Equal(t, tt.want[c.Name], c.Enabled, "control state %s", c.Name)
			}
		})
	}
}

func TestSelection_ToggleAll(t *testing.T) {
	rows := []string{"a", "b", "c", "d"}

	for k := 0; k <= len(rows); k++ {
		s := NewSelection()
		s.SetRows(rows)
		for _, id := range rows[:k] {
			require.NoError(t, s.Toggle(id))
		}

		s.ToggleAll()
		if k == len(rows) {
			assert.Equal(t, 0, s.Len(), "all selected clears")
		} else {
			assert.Equal(t, rows, s.Selected(), "partial selection of %d selects all", k)
		}
	}
}

func TestSelection_ToggleTwiceRestores(t *testing.T) {
	s := NewSelection()
	s.SetRows([]string{"a", "b"})

	require.NoError(t, s.Toggle("b"))
	assert.True(t, s.IsSelected("b"))
	require.NoError(t, s.Toggle("b"))
	assert.False(t, s.IsSelected("b"))
	assert.False(t, s.Enabled("edit"))
}

func TestSelection_UnknownRow(t *testing.T) {
	s := NewSelection()
	s.SetRows([]string{"a"})
	assert.ErrorIs(t, s.Toggle("nope"), ErrUnknownRow)
	assert.Equal(t, 0, s.Len())
}

func TestSelection_SetRowsPrunes(t *testing.T) {
	s := NewSelection()
	s.SetRows([]string{"a", "b", "c"})
	require.NoError(t, s.Toggle("a"))
	require.NoError(t, s.Toggle("c"))

	s.SetRows([]string{"c", "d"})
	assert.Equal(t, []string{"c"}, s.Selected())
	assert.True(t, s.Enabled("edit"))
}

func TestSelection_SelectedInRowOrder(t *testing.T) {
	s := NewSelection()
	s.SetRows([]string{"z", "y", "x"})
	require.NoError(t, s.Toggle("x"))
	require.NoError(t, s.Toggle("z"))
	assert.Equal(t, []string{"z", "x"}, s.Selected())

	s.Clear()
	assert.Empty(t, s.Selected())
}

func TestSelection_CustomControls(t *testing.T) {
	archive := Control{Name: "archive", MultiSelect: true}
	s := NewSelection(archive)
	s.SetRows([]string{"a", "b"})
	s.ToggleAll()

	assert.True(t, s.Enabled("archive"))
	assert.False(t, s.Enabled("edit"), "controls not registered are never enabled")
}
