package tui

import "github.com/emiliopalmerini/mexp/internal/domain"

// rowMsg reports one experiment row finishing its fetch.
type rowMsg struct {
	id  string
	err error
}

type reloadDoneMsg struct{ err error }

type notesLoadedMsg struct {
	id    string
	notes []string
	err   error
}

type logsLoadedMsg struct {
	id      string
	entries []domain.LogEntry
	err     error
}

// mutationDoneMsg reports the end of a save, delete, download or export.
// reloads is set for mutations that reload the table when they succeed.
type mutationDoneMsg struct {
	op      string
	path    string
	err     error
	reloads bool
}
