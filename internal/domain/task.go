package domain

import (
	"time"

	"github.com/waverider/waverider/internal/constants"
)

// AgentTask represents a single long-running unit of agent work.
// A task is immutable once created except for status, progress, and result,
// which are only mutated in response to events correlated by session id.
//
// Example JSON representation:
//
//	{
//	    "session_id": "6f1d2c54-9a0b-4c8e-b6aa-3f1f0e2d7c11",
//	    "project_id": "e5f21a3a-7da2-45e1-ad13-bf467e0382bf",
//	    "description": "refactor module X",
//	    "agent_kind": "coder",
//	    "status": "running",
//	    "progress": {"percentage": 40, "status": "executing", "message": "generating"},
//	    "created_at": "2026-08-01T10:00:00Z"
//	}
type AgentTask struct {
	// SessionID is the correlation key linking this task to asynchronous
	// progress events. Unique for the lifetime of the process.
	SessionID string `json:"session_id"`

	// ProjectID links this task to its owning project.
	ProjectID string `json:"project_id"`

	// Description is the free-text instruction given to the agent.
	Description string `json:"description"`

	// AgentKind is an enumerated tag opaque to the client core
	// (e.g. "coder", "debugger", "optimizer").
	AgentKind string `json:"agent_kind"`

	// Status is the current state in the task lifecycle.
	Status constants.TaskStatus `json:"status"`

	// Progress is the most recent progress record. Each new event
	// supersedes the previous one; no history is retained.
	Progress *ProgressRecord `json:"progress,omitempty"`

	// Result is the terminal payload, set exactly once on completion
	// or failure.
	Result *TaskResult `json:"result,omitempty"`

	// CreatedAt is when the task record was inserted.
	CreatedAt time.Time `json:"created_at"`

	// CompletedAt is when the task reached a terminal state
	// (nil while pending or running).
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsTerminal reports whether the task reached a state beyond which no
// further mutation is accepted.
func (t *AgentTask) IsTerminal() bool {
	return t.Status == constants.TaskStatusCompleted || t.Status == constants.TaskStatusFailed
}

// ProgressRecord is the ephemeral fractional progress of a task.
// Percentage is clamped to [0,100] and non-decreasing across non-reset
// updates for the same task.
type ProgressRecord struct {
	// Percentage is the fractional completion in [0,100].
	Percentage int `json:"percentage"`

	// Status is an implementation-defined sub-phase tag
	// (e.g. "thinking", "executing").
	Status string `json:"status"`

	// Message is a human-readable progress line.
	Message string `json:"message"`

	// Timestamp is when the backend emitted the event.
	Timestamp time.Time `json:"timestamp"`
}

// TaskResult captures the terminal outcome of a task.
//
// Example JSON representation:
//
//	{
//	    "success": true,
//	    "output": "Created 3 files...",
//	    "files_created": ["src/main.py"],
//	    "errors": []
//	}
type TaskResult struct {
	// Success indicates whether the agent finished without errors.
	Success bool `json:"success"`

	// Output contains any text output produced by the agent.
	Output string `json:"output,omitempty"`

	// FilesCreated lists paths of files the agent created.
	FilesCreated []string `json:"files_created,omitempty"`

	// Errors lists error messages when Success is false.
	Errors []string `json:"errors,omitempty"`
}
