package components

import (
	"fmt"
	"strings"

	"github.com/emiliopalmerini/mexp/internal/tui/theme"
)

// Progress shows how many rows have finished loading.
type Progress struct {
	Total  int
	Done   int
	Width  int
	styles *theme.Styles
}

func NewProgress(total, done, width int) Progress {
	return Progress{
		Total:  total,
		Done:   done,
		Width:  width,
		styles: theme.Default(),
	}
}

// View renders the bar followed by a done/total count.
func (p Progress) View() string {
	if p.Total <= 0 || p.Width <= 0 {
		return ""
	}
	filled := min(p.Done*p.Width/p.Total, p.Width)
	bar := p.styles.Enabled.Render(strings.Repeat("━", filled)) +
		p.styles.Disabled.Render(strings.Repeat("━", p.Width-filled))
	return bar + " " + p.styles.Muted.Render(fmt.Sprintf("%d/%d", p.Done, p.Total))
}
