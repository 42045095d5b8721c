package components

import (
	"strings"

	"github.com/emiliopalmerini/mexp/internal/tui/theme"
)

// ControlItem is one action button in the control bar.
type ControlItem struct {
	Key     string
	Label   string
	Enabled bool
	Pending bool
}

// ControlBar renders the actions that apply to the current selection.
// Disabled controls stay visible but dimmed.
type ControlBar struct {
	Items  []ControlItem
	styles *theme.Styles
}

func NewControlBar(items ...ControlItem) ControlBar {
	return ControlBar{
		Items:  items,
		styles: theme.Default(),
	}
}

func (c ControlBar) View() string {
	parts := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		label := "[" + item.Key + "] " + item.Label
		switch {
		case item.Pending:
			parts = append(parts, c.styles.Pending.Render(label+"…"))
		case item.Enabled:
			parts = append(parts, c.styles.Enabled.Render(label))
		default:
			parts = append(parts, c.styles.Disabled.Render(label))
		}
	}
	return strings.Join(parts, c.styles.Separator.Render("  /  "))
}
