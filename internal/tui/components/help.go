package components

import (
	"strings"

	"github.com/emiliopalmerini/mexp/internal/tui/theme"
)

// KeyBinding represents a key binding for the help bar
type KeyBinding struct {
	Key  string
	Desc string
}

// HelpBar renders a horizontal help bar with key bindings
type HelpBar struct {
	Bindings []KeyBinding
	styles   *theme.Styles
}

func NewHelpBar(bindings ...KeyBinding) HelpBar {
	return HelpBar{
		Bindings: bindings,
		styles:   theme.Default(),
	}
}

// View renders the help bar
func (h HelpBar) View() string {
	parts := make([]string, 0, len(h.Bindings))
	for _, kb := range h.Bindings {
		parts = append(parts,
			h.styles.HelpKey.Render(kb.Key)+
				h.styles.Help.Render(":"+kb.Desc))
	}
	return strings.Join(parts, "  ")
}
