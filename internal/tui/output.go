// Package tui provides terminal output components for WaveRider.
package tui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/waverider/waverider/internal/domain"
)

// Output abstracts command output so every command can render either styled
// text for a terminal or machine-readable JSON.
type Output interface {
	// Success prints a success message.
	Success(msg string)
	// Error prints an error message.
	Error(err error)
	// Warning prints a warning message.
	Warning(msg string)
	// Info prints an informational message.
	Info(msg string)
	// Detail prints an indented continuation line under the previous
	// message. No-op in JSON mode.
	Detail(msg string)
	// Task prints a task summary: status icon, lifecycle state, progress,
	// and the result payload when present.
	Task(t domain.AgentTask)
	// JSON outputs a value as formatted JSON.
	JSON(v any) error
}

// TTYOutput provides styled output for terminal displays.
type TTYOutput struct {
	w      io.Writer
	styles *OutputStyles
}

// NewTTYOutput creates a new TTYOutput.
func NewTTYOutput(w io.Writer) *TTYOutput {
	return &TTYOutput{
		w:      w,
		styles: NewOutputStyles(),
	}
}

// Success prints a success message.
func (o *TTYOutput) Success(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Success.Render("✓ "+msg))
}

// Error prints an error message.
func (o *TTYOutput) Error(err error) {
	_, _ = fmt.Fprintln(o.w, o.styles.Error.Render("✗ "+err.Error()))
}

// Warning prints a warning message.
func (o *TTYOutput) Warning(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Warning.Render("⚠ "+msg))
}

// Info prints an informational message.
func (o *TTYOutput) Info(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Info.Render(msg))
}

// Detail prints an indented continuation line.
func (o *TTYOutput) Detail(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Info.Render("  "+msg))
}

// Task prints a multi-line task summary.
func (o *TTYOutput) Task(t domain.AgentTask) {
	o.Info(TaskLine(t))
	if t.Description != "" {
		o.Detail(t.Description)
	}
	if t.Result == nil {
		return
	}
	for _, f := range t.Result.FilesCreated {
		o.Detail("created " + f)
	}
	for _, e := range t.Result.Errors {
		o.Warning("  " + e)
	}
}

// JSON outputs a value as formatted JSON.
func (o *TTYOutput) JSON(v any) error {
	return encodeJSON(o.w, v)
}

// JSONOutput provides plain JSON output without styling. Message-level
// methods are no-ops so structured payloads stay parseable.
type JSONOutput struct {
	w io.Writer
}

// NewJSONOutput creates a new JSONOutput.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{w: w}
}

// Success is a no-op for JSON output.
func (o *JSONOutput) Success(_ string) {}

// Error outputs the error as JSON.
func (o *JSONOutput) Error(err error) {
	_, _ = fmt.Fprintf(o.w, "{\"error\": %q}\n", err.Error())
}

// Warning is a no-op for JSON output.
func (o *JSONOutput) Warning(_ string) {}

// Info is a no-op for JSON output.
func (o *JSONOutput) Info(_ string) {}

// Detail is a no-op for JSON output.
func (o *JSONOutput) Detail(_ string) {}

// Task outputs the task record as JSON.
func (o *JSONOutput) Task(t domain.AgentTask) {
	_ = encodeJSON(o.w, t)
}

// JSON outputs a value as formatted JSON.
func (o *JSONOutput) JSON(v any) error {
	return encodeJSON(o.w, v)
}

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// TaskLine formats a one-line task summary for streaming output: status
// icon, lifecycle state, session id, and the latest progress record.
func TaskLine(t domain.AgentTask) string {
	line := fmt.Sprintf("%s %-9s %s", TaskStatusIcon(t.Status), t.Status, t.SessionID)
	if t.Progress != nil {
		line += fmt.Sprintf("  %3d%% %s %s", t.Progress.Percentage, t.Progress.Status, t.Progress.Message)
	}
	return line
}

// NewOutput creates the appropriate output based on format.
func NewOutput(w io.Writer, format string) Output {
	if format == "json" {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}
