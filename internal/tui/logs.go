package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/mexp/internal/domain"
	"github.com/emiliopalmerini/mexp/internal/tui/theme"
)

const levelWidth = 8

func levelStyle(styles *theme.Styles, level string) lipgloss.Style {
	switch level {
	case "CRITICAL", "ERROR":
		return styles.Error
	case "WARNING", "WARN":
		return styles.Warning
	case "INFO":
		return styles.Info
	}
	return styles.Muted
}

// renderLogs lays out an experiment's log entries for the preview pane.
func renderLogs(styles *theme.Styles, id string, entries []domain.LogEntry) string {
	lines := []string{styles.Subtitle.Render("Logs for " + id), ""}
	if len(entries) == 0 {
		lines = append(lines, styles.Muted.Render("No logs."))
		return strings.Join(lines, "\n")
	}
	for _, entry := range entries {
		level := levelStyle(styles, entry.Level).Render(fmt.Sprintf("%-*s", levelWidth, entry.Level))
		logger := ""
		if entry.Logger != "" {
			logger = styles.Muted.Render(entry.Logger) + " "
		}
		lines = append(lines, level+" "+logger+entry.Message)
	}
	return strings.Join(lines, "\n")
}
