package theme

import "github.com/charmbracelet/lipgloss"

// Palette for the experiment explorer.
var (
	Accent       = lipgloss.Color("#A855F7")
	BrightAccent = lipgloss.Color("#C084FC")

	White   = lipgloss.Color("#FFFFFF")
	Gray400 = lipgloss.Color("#9CA3AF")
	Gray500 = lipgloss.Color("#6B7280")
	Gray700 = lipgloss.Color("#374151")
	Black   = lipgloss.Color("#111827")

	Success = lipgloss.Color("#22C55E")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
	Info    = lipgloss.Color("#3B82F6")
)
