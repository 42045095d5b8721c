package logx

import (
	"context"
	"io"

	"pkt.systems/pslog"
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithProject annotates the logger with the project name if present.
func WithProject(log pslog.Logger, project string) pslog.Logger {
	if project != "" {
		log = log.With("project", project)
	}
	return log
}

// WithExperiment annotates the logger with an experiment id if present.
func WithExperiment(log pslog.Logger, experimentID string) pslog.Logger {
	if experimentID != "" {
		log = log.With("experiment", experimentID)
	}
	return log
}

// Project is shorthand for WithProject(Ctx(ctx), project).
func Project(ctx context.Context, project string) pslog.Logger {
	return WithProject(pslog.Ctx(ctx), project)
}

// NewStructured builds a JSON logger writing to w. Used when the terminal is
// owned by the TUI and logs go to a file instead.
func NewStructured(w io.Writer, debug bool) pslog.Logger {
	opts := pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: pslog.InfoLevel,
	}
	if debug {
		opts.MinLevel = pslog.DebugLevel
	}
	return pslog.NewWithOptions(w, opts)
}
