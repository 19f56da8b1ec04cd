package domain

import (
	"time"

	"github.com/waverider/waverider/internal/constants"
)

// ChatMessage is one entry of the append-only chat transcript.
// Messages are never mutated after creation.
type ChatMessage struct {
	// ID is the unique message identifier (UUID issued at append time).
	ID string `json:"id"`

	// Sender identifies the author, user or agent.
	Sender constants.Sender `json:"sender"`

	// Content is the message body. Agent replies may contain markdown.
	Content string `json:"content"`

	// Timestamp is when the message was appended.
	Timestamp time.Time `json:"timestamp"`

	// FilesCreated lists files created as a side effect of this exchange,
	// as reported by the chat collaborator.
	FilesCreated []string `json:"files_created,omitempty"`
}

// TerminalEntry is one line of the persisted terminal log: connectivity
// changes, task lifecycle events, and file operation failures. Transport
// failures are always recorded here, never silently dropped.
type TerminalEntry struct {
	// Level is the severity tag ("info", "warn", "error").
	Level string `json:"level"`

	// Message is the rendered log line.
	Message string `json:"message"`

	// Timestamp is when the entry was appended.
	Timestamp time.Time `json:"timestamp"`
}
