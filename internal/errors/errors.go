// Package errors provides centralized error handling for the WaveRider client.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrInvalidInput indicates a caller error such as an empty task
	// description or a blank path. Surfaced synchronously; no mutation
	// is applied.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates the operation would collide with existing
	// state, such as creating a file at a path that already exists.
	ErrConflict = errors.New("conflict")

	// ErrNotFound indicates the referenced entity does not exist.
	// For file operations this is returned to the caller; for progress
	// events referencing an unknown session id the event is silently
	// discarded instead.
	ErrNotFound = errors.New("not found")

	// ErrTransportFailure indicates a network-level failure: a channel
	// disconnect, a request timeout, or an unreachable backend. Recorded
	// in the terminal log and retried with backoff where applicable.
	ErrTransportFailure = errors.New("transport failure")

	// ErrProjectNotFound indicates the referenced project is unknown to
	// the entity store.
	ErrProjectNotFound = errors.New("project not found")

	// ErrSessionNotFound indicates the referenced session id has no task
	// record in the registry.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTaskTerminal indicates a mutation was attempted on a task that
	// already reached a terminal state.
	ErrTaskTerminal = errors.New("task already terminal")

	// ErrInvalidTransition indicates a task state transition that the
	// state machine does not permit.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrNodeExists indicates a file tree node already exists at the
	// requested path.
	ErrNodeExists = errors.New("node already exists")

	// ErrNodeNotFound indicates no file tree node exists at the
	// requested path.
	ErrNodeNotFound = errors.New("node not found")

	// ErrChannelClosed indicates the broadcast channel was shut down and
	// cannot accept further operations.
	ErrChannelClosed = errors.New("channel closed")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrConfigInvalid indicates an invalid configuration value.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrBackendStatus indicates the backend returned a non-success HTTP
	// status that does not map to a more specific category.
	ErrBackendStatus = errors.New("unexpected backend status")

	// ErrRenameIncomplete indicates a rename wrote the new path but could
	// not delete the old one; both nodes are kept until resolved.
	ErrRenameIncomplete = errors.New("rename incomplete, both paths kept")
)
