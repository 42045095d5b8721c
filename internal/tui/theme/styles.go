package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains all shared TUI styles
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Table
	Header    lipgloss.Style
	Cursor    lipgloss.Style
	Marker    lipgloss.Style
	Separator lipgloss.Style

	// Controls
	Enabled  lipgloss.Style
	Disabled lipgloss.Style
	Pending  lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style

	Card lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
}

var (
	defaultStyles *Styles
	once          sync.Once
)

// Default returns the singleton default Styles instance
func Default() *Styles {
	once.Do(func() {
		defaultStyles = newStyles()
	})
	return defaultStyles
}

func newStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(White),

		Subtitle: lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(Gray500),

		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(White),

		Header: lipgloss.NewStyle().
			Foreground(Gray500).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(Gray700).
			BorderBottom(true),

		// Inverted row under the cursor
		Cursor: lipgloss.NewStyle().
			Foreground(Black).
			Background(White).
			Bold(true),

		Marker: lipgloss.NewStyle().
			Foreground(BrightAccent).
			Bold(true),

		Separator: lipgloss.NewStyle().
			Foreground(Gray700),

		Enabled: lipgloss.NewStyle().
			Foreground(BrightAccent).
			Bold(true),

		Disabled: lipgloss.NewStyle().
			Foreground(Gray700),

		Pending: lipgloss.NewStyle().
			Foreground(Warning).
			Italic(true),

		Help: lipgloss.NewStyle().
			Foreground(Gray500),

		HelpKey: lipgloss.NewStyle().
			Foreground(Gray400).
			Bold(true),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Gray700).
			Padding(0, 1),

		Success: lipgloss.NewStyle().
			Foreground(Success),

		Warning: lipgloss.NewStyle().
			Foreground(Warning),

		Error: lipgloss.NewStyle().
			Foreground(Error),

		Info: lipgloss.NewStyle().
			Foreground(Info),
	}
}
