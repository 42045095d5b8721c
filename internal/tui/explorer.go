package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/mexp/internal/adapters/xlsx"
	"github.com/emiliopalmerini/mexp/internal/explorer"
	"github.com/emiliopalmerini/mexp/internal/ports"
	"github.com/emiliopalmerini/mexp/internal/tui/components"
	"github.com/emiliopalmerini/mexp/internal/tui/theme"
	"github.com/emiliopalmerini/mexp/internal/util"
)

// rowBuffer bounds queued row notifications. Overflow is harmless: the
// table is re-read in full when the reload finishes.
const rowBuffer = 256

const (
	markerWidth = 3
	metricWidth = 12
)

var fixedWidths = map[string]int{
	explorer.ColumnID:         28,
	explorer.ColumnStatus:     10,
	explorer.ColumnAuthor:     14,
	explorer.ColumnNotes:      28,
	explorer.ColumnFinishTime: 28,
}

type mode int

const (
	modeTable mode = iota
	modeEdit
	modeConfirmDelete
	modePreview
)

// Options configures the explorer TUI.
type Options struct {
	Concurrency int
	DownloadDir string
	Metrics     ports.MetricsExporter
}

// Explorer is the experiment table screen for one project.
type Explorer struct {
	ctx     context.Context
	cancel  context.CancelFunc
	session *explorer.Session
	rows    chan rowMsg

	table    table.Model
	ids      []string
	loaded   int
	editor   textarea.Model
	editing  string
	preview  string
	renderer *glamour.TermRenderer

	mode mode

	// reloads counts table reloads in flight, including the reload a
	// successful save or delete runs before it reports back.
	reloads     int
	downloadDir string
	styles      *theme.Styles
	width       int
	height      int
}

// NewExplorer builds the screen and its session. Rows are pushed to the
// screen as their fetches complete.
func NewExplorer(ctx context.Context, api ports.ExperimentAPI, project string, opts Options) *Explorer {
	ctx, cancel := context.WithCancel(ctx)
	e := &Explorer{
		ctx:         ctx,
		cancel:      cancel,
		rows:        make(chan rowMsg, rowBuffer),
		editor:      newNotesEditor(),
		downloadDir: opts.DownloadDir,
		styles:      theme.Default(),
	}
	e.session = explorer.NewSession(api, project, explorer.Options{
		Concurrency: opts.Concurrency,
		DownloadDir: opts.DownloadDir,
		Metrics:     opts.Metrics,
		OnRow:       e.pushRow,
	})

	t := table.New(
		table.WithColumns(e.columns(e.session.Table.Header())),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	s := table.DefaultStyles()
	s.Header = e.styles.Header
	s.Selected = e.styles.Cursor
	t.SetStyles(s)
	e.table = t
	return e
}

// Session exposes the underlying session.
func (e *Explorer) Session() *explorer.Session {
	return e.session
}

func (e *Explorer) pushRow(id string, err error) {
	select {
	case e.rows <- rowMsg{id: id, err: err}:
	default:
	}
}

func (e *Explorer) waitForRow() tea.Cmd {
	rows := e.rows
	return func() tea.Msg {
		return <-rows
	}
}

// Init implements tea.Model
func (e *Explorer) Init() tea.Cmd {
	e.reloads++
	return tea.Batch(e.reloadCmd(), e.waitForRow())
}

func (e *Explorer) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		return reloadDoneMsg{err: e.session.Reload(e.ctx)}
	}
}

func (e *Explorer) loadNotesCmd() tea.Cmd {
	return func() tea.Msg {
		id, notes, err := e.session.EditNotes(e.ctx)
		return notesLoadedMsg{id: id, notes: notes, err: err}
	}
}

func (e *Explorer) saveNotesCmd(id string, notes []string) tea.Cmd {
	e.reloads++
	return func() tea.Msg {
		return mutationDoneMsg{op: "save notes", err: e.session.SaveNotes(e.ctx, id, notes), reloads: true}
	}
}

func (e *Explorer) deleteCmd() tea.Cmd {
	e.reloads++
	return func() tea.Msg {
		return mutationDoneMsg{op: "delete", err: e.session.DeleteSelected(e.ctx), reloads: true}
	}
}

func (e *Explorer) logsCmd(id string) tea.Cmd {
	return func() tea.Msg {
		entries, err := e.session.Logs(e.ctx, id)
		return logsLoadedMsg{id: id, entries: entries, err: err}
	}
}

func (e *Explorer) downloadCmd() tea.Cmd {
	return func() tea.Msg {
		path, err := e.session.DownloadSelected(e.ctx)
		return mutationDoneMsg{op: "download", path: path, err: err}
	}
}

func (e *Explorer) exportCmd() tea.Cmd {
	return func() tea.Msg {
		path := filepath.Join(e.downloadDir, e.session.Project+".xlsx")
		header, rows := e.session.Table.Snapshot()
		err := xlsx.WriteFile(path, e.session.Project, header, rows)
		n := explorer.Notification{Level: explorer.LevelInfo, Message: "exported " + path}
		if err != nil {
			n = explorer.Notification{Level: explorer.LevelError, Message: "export failed", Err: err}
		}
		e.session.Notifications.Notify(n)
		return mutationDoneMsg{op: "export", path: path, err: err}
	}
}

// Update implements tea.Model
func (e *Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width = msg.Width
		e.height = msg.Height
		e.table.SetWidth(msg.Width)
		e.table.SetHeight(max(msg.Height-9, 3))
		e.editor.SetWidth(min(msg.Width-4, previewWidth))
		return e, nil

	case rowMsg:
		e.refresh()
		return e, e.waitForRow()

	case reloadDoneMsg:
		e.reloads = max(e.reloads-1, 0)
		e.refresh()
		return e, nil

	case notesLoadedMsg:
		if msg.err != nil {
			e.flash(msg.err)
			return e, nil
		}
		e.mode = modeEdit
		e.editing = msg.id
		e.editor.SetValue(strings.Join(msg.notes, "\n"))
		e.editor.Focus()
		return e, textarea.Blink

	case logsLoadedMsg:
		if msg.err != nil {
			return e, nil
		}
		e.preview = renderLogs(e.styles, msg.id, msg.entries)
		e.mode = modePreview
		return e, nil

	case mutationDoneMsg:
		// Mutations that succeed have already reloaded the table.
		if msg.reloads {
			e.reloads = max(e.reloads-1, 0)
		}
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			e.flash(msg.err)
		}
		e.refresh()
		return e, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			e.cancel()
			return e, tea.Quit
		}
		switch e.mode {
		case modeEdit:
			return e.updateEditor(msg)
		case modeConfirmDelete:
			return e.updateConfirm(msg)
		case modePreview:
			if msg.String() == "esc" || msg.String() == "q" || msg.String() == "enter" {
				e.mode = modeTable
			}
			return e, nil
		}
		return e.updateTable(msg)
	}

	return e, nil
}

func (e *Explorer) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	selection := e.session.Selection
	switch msg.String() {
	case "q":
		e.cancel()
		return e, tea.Quit
	case " ":
		if id, ok := e.cursorID(); ok {
			_ = selection.Toggle(id)
			e.refresh()
		}
		return e, nil
	case "a":
		selection.ToggleAll()
		e.refresh()
		return e, nil
	case "r":
		if e.reloads > 0 {
			return e, nil
		}
		e.reloads++
		return e, e.reloadCmd()
	case "e":
		if !selection.Enabled(explorer.ControlEdit.Name) {
			return e, nil
		}
		return e, e.loadNotesCmd()
	case "d":
		if !selection.Enabled(explorer.ControlDelete.Name) || e.session.Mutations.Loading(explorer.ControlDelete.Name) {
			return e, nil
		}
		e.mode = modeConfirmDelete
		return e, nil
	case "w":
		if !selection.Enabled(explorer.ControlDownload.Name) {
			return e, nil
		}
		return e, e.downloadCmd()
	case "x":
		return e, e.exportCmd()
	case "enter", "v":
		if id, ok := e.cursorID(); ok {
			row, _ := e.session.Table.Row(id)
			e.preview = renderMarkdown(e.markdown(), notesMarkdown(id, row.NoteLines()))
			e.mode = modePreview
		}
		return e, nil
	case "l":
		if id, ok := e.cursorID(); ok {
			return e, e.logsCmd(id)
		}
		return e, nil
	}

	var cmd tea.Cmd
	e.table, cmd = e.table.Update(msg)
	return e, cmd
}

func (e *Explorer) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		id, notes := e.editing, editorLines(e.editor.Value())
		e.closeEditor()
		return e, e.saveNotesCmd(id, notes)
	case "esc":
		e.closeEditor()
		return e, nil
	}
	var cmd tea.Cmd
	e.editor, cmd = e.editor.Update(msg)
	return e, cmd
}

func (e *Explorer) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		e.mode = modeTable
		return e, e.deleteCmd()
	case "n", "N", "esc", "q":
		e.mode = modeTable
	}
	return e, nil
}

func (e *Explorer) closeEditor() {
	e.editor.Blur()
	e.editor.Reset()
	e.editing = ""
	e.mode = modeTable
}

func (e *Explorer) markdown() *glamour.TermRenderer {
	if e.renderer == nil {
		e.renderer = newMarkdownRenderer()
	}
	return e.renderer
}

// flash reports errors that never reached the session's notifications,
// such as a control being disabled.
func (e *Explorer) flash(err error) {
	if errors.Is(err, explorer.ErrControlDisabled) || errors.Is(err, explorer.ErrInFlight) || errors.Is(err, explorer.ErrNoSelection) {
		e.session.Notifications.Notify(explorer.Notification{Level: explorer.LevelError, Message: err.Error(), Err: err})
	}
}

func (e *Explorer) cursorID() (string, bool) {
	i := e.table.Cursor()
	if i < 0 || i >= len(e.ids) {
		return "", false
	}
	return e.ids[i], true
}

// refresh copies the session table and selection into the bubbles table.
func (e *Explorer) refresh() {
	header, cells := e.session.Table.Snapshot()
	selection := e.session.Selection

	e.loaded = 0
	for _, row := range e.session.Table.Rows() {
		if row.Loaded {
			e.loaded++
		}
	}

	rows := make([]table.Row, len(cells))
	ids := make([]string, len(cells))
	for i, row := range cells {
		id := row[0]
		ids[i] = id
		marker := "[ ]"
		if selection.IsSelected(id) {
			marker = "[x]"
		}
		out := make(table.Row, 0, len(row)+1)
		out = append(out, marker)
		for _, cell := range row {
			out = append(out, strings.ReplaceAll(cell, explorer.NotesSeparator, " ⏎ "))
		}
		rows[i] = out
	}

	// Column count may shrink after a reload, so rows are cleared before
	// the columns change.
	cursor := e.table.Cursor()
	e.table.SetRows(nil)
	e.table.SetColumns(e.columns(header))
	e.table.SetRows(rows)
	e.table.SetCursor(cursor)
	e.ids = ids
}

func (e *Explorer) columns(header []string) []table.Column {
	cols := make([]table.Column, 0, len(header)+1)
	cols = append(cols, table.Column{Title: "", Width: markerWidth})
	for _, name := range header {
		width, ok := fixedWidths[name]
		if !ok {
			width = max(metricWidth, len(name))
		}
		cols = append(cols, table.Column{Title: name, Width: width})
	}
	return cols
}

// View implements tea.Model
func (e *Explorer) View() string {
	header := e.renderHeader()
	sep := e.styles.Separator.Render(strings.Repeat("─", 64))

	switch e.mode {
	case modeEdit:
		editor := lipgloss.JoinVertical(lipgloss.Left,
			e.styles.Subtitle.Render("Notes for "+e.editing),
			e.editor.View(),
		)
		help := components.NewHelpBar(
			components.KeyBinding{Key: "ctrl+s", Desc: "save"},
			components.KeyBinding{Key: "esc", Desc: "cancel"},
		)
		return lipgloss.JoinVertical(lipgloss.Left, header, sep, e.styles.Card.Render(editor), help.View())

	case modePreview:
		help := components.NewHelpBar(components.KeyBinding{Key: "esc", Desc: "back"})
		return lipgloss.JoinVertical(lipgloss.Left, header, sep, e.preview, help.View())
	}

	body := []string{header, sep, e.table.View(), e.renderControls(), e.renderStatus()}
	if e.mode == modeConfirmDelete {
		prompt := fmt.Sprintf("Delete %d experiment(s)? [y/n]", e.session.Selection.Len())
		body = append(body, e.styles.Warning.Render(prompt))
	} else {
		body = append(body, e.renderHelp())
	}
	return lipgloss.JoinVertical(lipgloss.Left, body...)
}

func (e *Explorer) renderHeader() string {
	title := e.styles.Title.Render("MEXP")
	project := e.styles.Subtitle.Render(e.session.Project)
	count := e.styles.Muted.Render(fmt.Sprintf("%d experiments, %d selected", len(e.ids), e.session.Selection.Len()))
	parts := []string{title, "  ", project, "  ", count}
	if e.reloads > 0 {
		parts = append(parts, "  ", e.styles.Pending.Render("loading"), " ", components.NewProgress(len(e.ids), e.loaded, 20).View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, parts...)
}

var controlKeys = map[string]string{
	explorer.ControlEdit.Name:     "e",
	explorer.ControlDelete.Name:   "d",
	explorer.ControlDownload.Name: "w",
}

func (e *Explorer) renderControls() string {
	states := e.session.Selection.Controls()
	items := make([]components.ControlItem, 0, len(states))
	for _, state := range states {
		items = append(items, components.ControlItem{
			Key:     controlKeys[state.Name],
			Label:   state.Name,
			Enabled: state.Enabled,
			Pending: e.session.Mutations.Loading(state.Name),
		})
	}
	return components.NewControlBar(items...).View()
}

func (e *Explorer) renderStatus() string {
	n, ok := e.session.Notifications.Latest()
	if !ok {
		return ""
	}
	text := n.Message
	if n.Err != nil {
		text += ": " + n.Err.Error()
	}
	if e.width > 0 {
		text = util.Truncate(text, e.width)
	}
	if n.Level == explorer.LevelError {
		return e.styles.Error.Render(text)
	}
	return e.styles.Success.Render(text)
}

func (e *Explorer) renderHelp() string {
	return components.NewHelpBar(
		components.KeyBinding{Key: "space", Desc: "select"},
		components.KeyBinding{Key: "a", Desc: "all"},
		components.KeyBinding{Key: "enter", Desc: "notes"},
		components.KeyBinding{Key: "l", Desc: "logs"},
		components.KeyBinding{Key: "r", Desc: "reload"},
		components.KeyBinding{Key: "x", Desc: "export"},
		components.KeyBinding{Key: "q", Desc: "quit"},
	).View()
}

// Run starts the explorer full screen and blocks until the user quits.
func Run(ctx context.Context, api ports.ExperimentAPI, project string, opts Options) error {
	e := NewExplorer(ctx, api, project, opts)
	defer e.cancel()
	_, err := tea.NewProgram(e, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
