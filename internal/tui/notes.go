package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/glamour"
)

const previewWidth = 80

func newNotesEditor() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "One note per line..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(previewWidth)
	ta.SetHeight(8)
	return ta
}

// editorLines turns editor content into notes, dropping trailing blank lines.
func editorLines(value string) []string {
	value = strings.TrimRight(value, "\n")
	if strings.TrimSpace(value) == "" {
		return []string{}
	}
	return strings.Split(value, "\n")
}

// notesMarkdown builds the markdown shown in the notes preview.
func notesMarkdown(id string, lines []string) string {
	var b strings.Builder
	b.WriteString("## " + id + "\n\n")
	if len(lines) == 0 {
		b.WriteString("_No notes._\n")
		return b.String()
	}
	for _, line := range lines {
		b.WriteString(line + "\n\n")
	}
	return b.String()
}

// renderMarkdown renders md for the terminal, falling back to the raw text
// when no renderer is available.
func renderMarkdown(renderer *glamour.TermRenderer, md string) string {
	if renderer == nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

func newMarkdownRenderer() *glamour.TermRenderer {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(previewWidth),
	)
	if err != nil {
		return nil
	}
	return renderer
}
