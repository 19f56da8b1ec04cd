// Package terminal feeds the persisted terminal log: connectivity changes,
// task lifecycle events, and file operation failures. Transport failures
// are always recorded here so the user can see them even when a UI surface
// swallowed the error.
package terminal

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/waverider/waverider/internal/clock"
	"github.com/waverider/waverider/internal/domain"
	"github.com/waverider/waverider/internal/store"
)

// Severity tags for terminal entries.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Log writes entries into the entity store's terminal collection.
type Log struct {
	store  *store.Store
	clk    clock.Clock
	logger zerolog.Logger
}

// NewLog creates a terminal log writer.
func NewLog(st *store.Store, clk clock.Clock, logger zerolog.Logger) *Log {
	return &Log{
		store:  st,
		clk:    clk,
		logger: logger.With().Str("component", "terminal").Logger(),
	}
}

func (l *Log) append(level, msg string) {
	l.store.AppendTerminal(domain.TerminalEntry{
		Level:     level,
		Message:   msg,
		Timestamp: l.clk.Now().UTC(),
	})
}

// Info records an informational line.
func (l *Log) Info(format string, args ...any) {
	l.append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn records a warning line.
func (l *Log) Warn(format string, args ...any) {
	l.append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error records an error line.
func (l *Log) Error(format string, args ...any) {
	l.append(LevelError, fmt.Sprintf(format, args...))
}

// ConnectivityChanged records a broadcast channel state transition. Wired
// as the channel's ConnectivityFunc.
func (l *Log) ConnectivityChanged(state domain.Connectivity) {
	if state.Connected {
		l.append(LevelInfo, "connected to progress channel")
		return
	}
	msg := "disconnected from progress channel"
	if state.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, state.Reason)
	}
	l.append(LevelWarn, msg)
}

// TaskStarted records a task submission.
func (l *Log) TaskStarted(sessionID, description string) {
	l.append(LevelInfo, fmt.Sprintf("task %s started: %s", sessionID, description))
}

// TaskFinished records a terminal task transition.
func (l *Log) TaskFinished(sessionID string, success bool) {
	if success {
		l.append(LevelInfo, fmt.Sprintf("task %s completed", sessionID))
		return
	}
	l.append(LevelError, fmt.Sprintf("task %s failed", sessionID))
}

// FileOpFailed records a failed file operation. Never dropped, whatever the
// UI did with the error.
func (l *Log) FileOpFailed(op, path string, err error) {
	l.append(LevelError, fmt.Sprintf("file %s %q failed: %v", op, path, err))
	l.logger.Debug().Err(err).Str("op", op).Str("path", path).Msg("file operation recorded in terminal log")
}
