// Package session maps correlation ids to the logical context needed to
// apply later asynchronous events: which project, which UI surface, which
// file was open at dispatch time.
//
// The coordinator is a pure lookup table. Entries are inserted when a
// request is dispatched and removed only when the associated task or chat
// exchange reaches a terminal state or the user dismisses it explicitly.
// Entries are never garbage-collected on a timer, so long-running
// correlations are never dropped while in flight.
package session

import (
	"sync"
	"time"

	"github.com/waverider/waverider/internal/clock"
	wrerrors "github.com/waverider/waverider/internal/errors"
)

// Context is the dispatch-time state associated with a correlation id.
type Context struct {
	// ProjectID is the project the request was issued against.
	ProjectID string

	// Surface names the UI surface that initiated the request
	// (e.g. "chat", "task_panel").
	Surface string

	// OpenFile is the file that was open when the request was dispatched,
	// empty when none.
	OpenFile string

	// CreatedAt is when the correlation was registered.
	CreatedAt time.Time
}

// Coordinator is the correlation lookup table. Safe for concurrent use.
type Coordinator struct {
	mu       sync.RWMutex
	clk      clock.Clock
	contexts map[string]Context
}

// NewCoordinator creates an empty Coordinator.
func NewCoordinator(clk clock.Clock) *Coordinator {
	return &Coordinator{
		clk:      clk,
		contexts: make(map[string]Context),
	}
}

// Register associates a correlation id with its dispatch context.
// Returns ErrConflict if the id is already registered; correlation ids are
// unique per dispatch and re-registration indicates a caller bug.
func (c *Coordinator) Register(sessionID string, ctx Context) error {
	if sessionID == "" {
		return wrerrors.Wrap(wrerrors.ErrInvalidInput, "session id is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.contexts[sessionID]; ok {
		return wrerrors.Wrapf(wrerrors.ErrConflict, "session %q already registered", sessionID)
	}
	if ctx.CreatedAt.IsZero() {
		ctx.CreatedAt = c.clk.Now().UTC()
	}
	c.contexts[sessionID] = ctx
	return nil
}

// Lookup returns the context for a correlation id.
func (c *Coordinator) Lookup(sessionID string) (Context, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ctx, ok := c.contexts[sessionID]
	return ctx, ok
}

// Remove drops the correlation for a session id. Removing an unknown id is
// a no-op; terminal transitions and explicit dismissal may race.
func (c *Coordinator) Remove(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.contexts, sessionID)
}

// Len returns the number of in-flight correlations.
func (c *Coordinator) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.contexts)
}
