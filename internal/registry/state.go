// Package registry owns the lifecycle of agent tasks: creation, status
// transitions, progress updates, and terminal results.
//
// This file implements the task state machine, which enforces valid state
// transitions. The machine is small by design:
//
//	Pending → Running, Completed, Failed
//	Running → Completed, Failed
//
// Completed and Failed are terminal; events arriving for terminal tasks
// are discarded, not erroneous.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/domain,
//     internal/errors, internal/store, std lib
//   - MUST NOT import: internal/channel, internal/backend, internal/cli
package registry

import (
	"fmt"

	"github.com/waverider/waverider/internal/constants"
	wrerrors "github.com/waverider/waverider/internal/errors"
)

// ValidTransitions defines all allowed state transitions in the task lifecycle.
// Format: from_status -> []to_statuses
//
// Pending may transition straight to a terminal state because a task can
// finish between reconnect attempts without the client ever observing a
// progress event.
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[constants.TaskStatus][]constants.TaskStatus{
	constants.TaskStatusPending: {
		constants.TaskStatusRunning,
		constants.TaskStatusCompleted,
		constants.TaskStatusFailed,
	},
	constants.TaskStatusRunning: {
		constants.TaskStatusCompleted,
		constants.TaskStatusFailed,
	},
}

// terminalStatuses defines states where no further transitions are allowed.
// Terminal states are those NOT present as keys in ValidTransitions.
//
//nolint:gochecknoglobals // Read-only lookup table for terminal state checks
var terminalStatuses = map[constants.TaskStatus]bool{
	constants.TaskStatusCompleted: true,
	constants.TaskStatusFailed:    true,
}

// IsValidTransition checks if a transition from one status to another is allowed.
// Returns false for transitions from terminal states or to the same state.
func IsValidTransition(from, to constants.TaskStatus) bool {
	if from == to {
		return false
	}
	validTargets, exists := ValidTransitions[from]
	if !exists {
		return false // Terminal state or unknown state
	}
	for _, target := range validTargets {
		if target == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus returns true for states where no further transitions are
// allowed. Terminal states: Completed, Failed.
func IsTerminalStatus(status constants.TaskStatus) bool {
	return terminalStatuses[status]
}

// transitionErr builds the error for a rejected transition.
func transitionErr(from, to constants.TaskStatus) error {
	return fmt.Errorf("%w: cannot transition from %s to %s",
		wrerrors.ErrInvalidTransition, from, to)
}

// ClampPercentage bounds a progress percentage to [ProgressMin, ProgressMax].
// Out-of-range values are clamped, never rejected.
func ClampPercentage(p int) int {
	if p < constants.ProgressMin {
		return constants.ProgressMin
	}
	if p > constants.ProgressMax {
		return constants.ProgressMax
	}
	return p
}
