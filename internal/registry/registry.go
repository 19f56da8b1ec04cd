package registry

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/waverider/waverider/internal/clock"
	"github.com/waverider/waverider/internal/constants"
	"github.com/waverider/waverider/internal/domain"
	wrerrors "github.com/waverider/waverider/internal/errors"
	"github.com/waverider/waverider/internal/store"
)

// SessionTracker is notified when a task reaches a terminal state so the
// associated correlation context can be released. Satisfied by
// session.Coordinator.
type SessionTracker interface {
	// Remove drops the correlation context for a session id.
	Remove(sessionID string)
}

// Registry owns task lifecycle state. All mutations are funneled through
// the entity store's serialized write path, so calls from the broadcast
// channel's receive loop and from UI-triggered code never interleave
// half-applied updates.
type Registry struct {
	store    *store.Store
	sessions SessionTracker
	clk      clock.Clock
	logger   zerolog.Logger

	// newID allocates correlation ids; overridable in tests to force
	// collisions.
	newID func() string
}

// New creates a Registry writing through the given store. sessions may be
// nil when no coordinator is attached.
func New(st *store.Store, sessions SessionTracker, clk clock.Clock, logger zerolog.Logger) *Registry {
	return &Registry{
		store:    st,
		sessions: sessions,
		clk:      clk,
		logger:   logger.With().Str("component", "registry").Logger(),
		newID:    uuid.NewString,
	}
}

// CreateTask allocates a fresh correlation id and inserts a pending task
// record for the given project.
//
// Returns ErrInvalidInput if the description is blank and
// ErrProjectNotFound if the project is unknown. A correlation id collision
// means id generation is broken; that is a fatal invariant violation and
// panics rather than returning.
func (r *Registry) CreateTask(projectID, description, agentKind string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", wrerrors.Wrap(wrerrors.ErrInvalidInput, "task description is empty")
	}
	if !r.store.HasProject(projectID) {
		return "", wrerrors.Wrapf(wrerrors.ErrProjectNotFound, "project %q", projectID)
	}

	sessionID := r.newID()
	task := domain.AgentTask{
		SessionID:   sessionID,
		ProjectID:   projectID,
		Description: description,
		AgentKind:   agentKind,
		Status:      constants.TaskStatusPending,
		CreatedAt:   r.clk.Now().UTC(),
	}

	if err := r.store.PutTask(task); err != nil {
		// A duplicate session id can only mean the id generator repeated
		// itself within the process lifetime.
		panic("registry: correlation id collision: " + sessionID)
	}

	r.logger.Info().
		Str("session_id", sessionID).
		Str("project_id", projectID).
		Str("agent_kind", agentKind).
		Msg("task created")

	return sessionID, nil
}

// AdoptTask inserts a pending task record under a correlation id issued by
// the backend. Unlike CreateTask the id is not generated locally, so a
// duplicate is a backend anomaly reported as ErrConflict rather than a
// fatal invariant violation.
func (r *Registry) AdoptTask(sessionID, projectID, description, agentKind string) error {
	if strings.TrimSpace(sessionID) == "" {
		return wrerrors.Wrap(wrerrors.ErrInvalidInput, "session id is empty")
	}

	task := domain.AgentTask{
		SessionID:   sessionID,
		ProjectID:   projectID,
		Description: description,
		AgentKind:   agentKind,
		Status:      constants.TaskStatusPending,
		CreatedAt:   r.clk.Now().UTC(),
	}
	if err := r.store.PutTask(task); err != nil {
		return wrerrors.Wrapf(err, "session %q", sessionID)
	}

	r.logger.Info().
		Str("session_id", sessionID).
		Str("project_id", projectID).
		Msg("task adopted")

	return nil
}

// ApplyProgress updates a task's progress record and transitions it from
// pending to running on the first event.
//
// Events for unknown session ids (e.g. a task created before a client
// reload) and events for terminal tasks are discarded silently: they are
// logged but never surfaced as errors. Percentage is clamped to [0,100]
// and never decreases across non-reset updates.
func (r *Registry) ApplyProgress(ev domain.ProgressEvent) {
	at := ev.Timestamp
	if at.IsZero() {
		at = r.clk.Now().UTC()
	}

	err := r.store.UpdateTask(ev.SessionID, func(t *domain.AgentTask) error {
		if IsTerminalStatus(t.Status) {
			return wrerrors.ErrTaskTerminal
		}

		pct := ClampPercentage(ev.Progress)
		if t.Progress != nil && pct < t.Progress.Percentage {
			pct = t.Progress.Percentage
		}
		t.Progress = &domain.ProgressRecord{
			Percentage: pct,
			Status:     ev.Status,
			Message:    ev.Message,
			Timestamp:  at,
		}

		if t.Status == constants.TaskStatusPending {
			t.Status = constants.TaskStatusRunning
		}
		return nil
	})

	if err != nil {
		// Not actionable and not attributable to user action: the event
		// arrived for a task this client never created, or the task is
		// already terminal. Either way it is a no-op.
		r.logger.Debug().
			Err(err).
			Str("session_id", ev.SessionID).
			Int("progress", ev.Progress).
			Msg("progress event discarded")
	}
}

// Complete transitions the task to completed and stores the result payload.
// Idempotent: completing an already-terminal task is a no-op.
func (r *Registry) Complete(sessionID string, result domain.TaskResult) error {
	return r.terminal(sessionID, constants.TaskStatusCompleted, func(t *domain.AgentTask) {
		t.Result = &result
	})
}

// Fail transitions the task to failed with the given reason.
// Idempotent: failing an already-terminal task is a no-op.
func (r *Registry) Fail(sessionID, reason string) error {
	return r.terminal(sessionID, constants.TaskStatusFailed, func(t *domain.AgentTask) {
		t.Result = &domain.TaskResult{Success: false, Errors: []string{reason}}
	})
}

// terminal applies a terminal transition plus a payload mutation.
func (r *Registry) terminal(sessionID string, to constants.TaskStatus, apply func(t *domain.AgentTask)) error {
	alreadyTerminal := false

	err := r.store.UpdateTask(sessionID, func(t *domain.AgentTask) error {
		if IsTerminalStatus(t.Status) {
			alreadyTerminal = true
			return wrerrors.ErrTaskTerminal
		}
		if !IsValidTransition(t.Status, to) {
			return transitionErr(t.Status, to)
		}

		t.Status = to
		apply(t)
		now := r.clk.Now().UTC()
		t.CompletedAt = &now
		return nil
	})

	if alreadyTerminal {
		// Second terminal call is a no-op, not an error.
		r.logger.Debug().
			Str("session_id", sessionID).
			Str("status", to.String()).
			Msg("terminal transition repeated, ignoring")
		return nil
	}
	if err != nil {
		return err
	}

	if r.sessions != nil {
		r.sessions.Remove(sessionID)
	}

	r.logger.Info().
		Str("session_id", sessionID).
		Str("status", to.String()).
		Msg("task reached terminal state")

	return nil
}

// Task returns a copy of the task record for a session id.
func (r *Registry) Task(sessionID string) (domain.AgentTask, error) {
	return r.store.Task(sessionID)
}
