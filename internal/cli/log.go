// Package cli implements the lattice command-line interface.
//
// The CLI runs scene files through the pipeline, renders snapshots as
// diagrams, hosts the HTTP inspector and opens an interactive inspector in
// the terminal. It is built using cobra and logs via charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - run: Run scenes and print a table of frames (or JSON)
//   - render: Write the final tree as DOT, SVG, PNG or PDF
//   - inspect: Resize the root interactively and watch the tree relayout
//   - watch: Rerun a scene whenever its file changes
//   - serve: Start the HTTP inspector
//   - cache: Manage the report cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// turns on the engine's per-pass logs. Loggers are passed through
// context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with
// elapsed duration. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond, followed
// by any key-value pairs.
// Example output: "ran toolbar (12ms) frames=4"
func (p *progress) done(msg string, keyvals ...any) {
	args := append([]any{"elapsed", time.Since(p.start).Round(time.Millisecond)}, keyvals...)
	p.logger.Info(msg, args...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
