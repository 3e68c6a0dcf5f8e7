// Package logging builds the process logger. Hook and trigger invocations run
// inside the agent's hook pipeline, where stray output on stdout or stderr is
// treated as data, so logs only ever go to a file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the log file created inside the state directory.
const FileName = "tavs.log"

// New returns a text logger appending to dir/tavs.log when enabled, and a
// discarding logger otherwise. The returned closer is never nil.
func New(dir string, enabled bool, level slog.Level) (*slog.Logger, io.Closer) {
	if !enabled {
		return Discard(), nopCloser{}
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return Discard(), nopCloser{}
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return Discard(), nopCloser{}
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("pid", os.Getpid()), f
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
