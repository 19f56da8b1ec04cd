package domain

import (
	"encoding/json"
	"time"

	"github.com/waverider/waverider/internal/constants"
)

// Envelope is the outer frame of every message on the progress broadcast
// channel. The payload is decoded in a second stage based on Type, so an
// unknown kind never causes a decode failure; it is simply ignored.
type Envelope struct {
	// Type tags the payload schema.
	Type constants.EventKind `json:"type"`

	// Data is the raw payload, decoded per Type.
	Data json.RawMessage `json:"data,omitempty"`
}

// ProgressEvent is the payload of an "agent_progress" envelope.
//
// Example JSON representation:
//
//	{
//	    "session_id": "6f1d2c54-9a0b-4c8e-b6aa-3f1f0e2d7c11",
//	    "progress": 40,
//	    "status": "executing",
//	    "message": "generating",
//	    "timestamp": "2026-08-01T10:02:00Z"
//	}
type ProgressEvent struct {
	// SessionID correlates the event with a task record.
	SessionID string `json:"session_id"`

	// Progress is the fractional completion percentage.
	Progress int `json:"progress"`

	// Status is the sub-phase tag.
	Status string `json:"status"`

	// Message is a human-readable progress line.
	Message string `json:"message"`

	// Timestamp is when the backend emitted the event.
	Timestamp time.Time `json:"timestamp"`
}

// Connectivity describes the broadcast channel's connection state as
// observed locally. Emitted on every connect and disconnect so the UI and
// terminal log can report it.
type Connectivity struct {
	// Connected is true after a successful dial, false after a disconnect.
	Connected bool `json:"connected"`

	// Reason is the disconnect cause, empty when Connected is true.
	Reason string `json:"reason,omitempty"`

	// Timestamp is when the state change was observed.
	Timestamp time.Time `json:"timestamp"`
}
