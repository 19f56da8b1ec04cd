package constants

// TaskStatus represents the state of an agent task in the client state machine.
// Status values use snake_case for JSON serialization compatibility with the
// backend's session records.
type TaskStatus string

// Task status constants define the valid states a task can be in.
// The state machine is deliberately small:
//
//	Pending → Running
//	Running → Completed, Failed
//	Pending → Completed, Failed (terminal result may arrive before any progress)
const (
	// TaskStatusPending indicates a task was created but no progress event
	// has arrived for it yet.
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusRunning indicates at least one progress event has been
	// applied to the task.
	TaskStatusRunning TaskStatus = "running"

	// TaskStatusCompleted indicates the task finished successfully.
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusFailed indicates the task finished with an error.
	TaskStatusFailed TaskStatus = "failed"
)

// String returns the string representation of the TaskStatus.
// This implements fmt.Stringer for convenient logging and debugging.
func (s TaskStatus) String() string {
	return string(s)
}

// NodeKind distinguishes files from directories in the file tree.
type NodeKind string

// Node kind constants.
const (
	// NodeKindFile marks a regular file node.
	NodeKindFile NodeKind = "file"

	// NodeKindDirectory marks a directory node that may own children.
	NodeKindDirectory NodeKind = "directory"
)

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	return string(k)
}

// Sender identifies the author of a chat message.
type Sender string

// Chat sender constants.
const (
	// SenderUser marks a message typed by the user.
	SenderUser Sender = "user"

	// SenderAgent marks a message produced by an agent.
	SenderAgent Sender = "agent"
)

// EventKind tags inbound frames on the progress broadcast channel.
type EventKind string

// Event kind constants. Only EventAgentProgress is routed to the task
// registry; everything else is informational or ignored.
const (
	// EventAgentProgress carries a task progress update.
	EventAgentProgress EventKind = "agent_progress"

	// EventPong acknowledges a keepalive ping.
	EventPong EventKind = "pong"

	// EventSubscribed acknowledges a project subscription request.
	EventSubscribed EventKind = "subscribed"
)
