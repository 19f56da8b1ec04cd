// Package store implements the Entity Store: the single authoritative
// in-memory aggregate of all client domain entities.
//
// All mutations funnel through one mutex so that concurrent observers never
// see a half-updated entity. Readers receive copies of fully-committed
// snapshots. A subscription mechanism notifies observers after each
// committed mutation, once the new value is already visible to readers.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/domain,
//     internal/errors, std lib
//   - MUST NOT import: internal/registry, internal/filetree, internal/cli
package store

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/waverider/waverider/internal/clock"
	"github.com/waverider/waverider/internal/constants"
	"github.com/waverider/waverider/internal/domain"
	wrerrors "github.com/waverider/waverider/internal/errors"
)

// Kind identifies which entity collection a committed mutation touched.
// Subscribers receive it so UI surfaces can re-render selectively.
type Kind string

// Entity kinds reported to subscribers.
const (
	// KindProjects covers project creation and updates.
	KindProjects Kind = "projects"

	// KindTasks covers task creation, progress, and terminal transitions.
	KindTasks Kind = "tasks"

	// KindFiles covers the file content cache and the open-file reference.
	KindFiles Kind = "files"

	// KindChat covers chat transcript appends.
	KindChat Kind = "chat"

	// KindTerminal covers terminal log appends.
	KindTerminal Kind = "terminal"
)

// Subscriber is a callback invoked after each committed mutation.
// It runs outside the store lock; implementations may call back into
// read accessors but must not block for long.
type Subscriber func(kind Kind)

// Store is the Entity Store. The zero value is not usable; use New.
type Store struct {
	mu     sync.RWMutex
	clk    clock.Clock
	logger zerolog.Logger

	projects map[string]*domain.Project
	tasks    map[string]*domain.AgentTask
	chat     []domain.ChatMessage
	terminal []domain.TerminalEntry

	// fileCache maps projectID -> path -> content for files the client
	// has read or written. Survives reloads via Save/Load.
	fileCache map[string]map[string]string

	// trees holds the file tree arena for each project.
	trees map[string]*projectTree

	// openFile is the path of the currently open file, empty when none.
	openFile string

	// uiFlags holds persisted UI layout flags (panel visibility etc.),
	// opaque to the store.
	uiFlags map[string]bool

	// terminalCap bounds the terminal log; oldest entries drop first.
	terminalCap int

	subs    map[int]Subscriber
	nextSub int
}

// New creates an empty Store using the given clock and logger.
func New(clk clock.Clock, logger zerolog.Logger) *Store {
	return &Store{
		clk:         clk,
		logger:      logger.With().Str("component", "store").Logger(),
		projects:    make(map[string]*domain.Project),
		tasks:       make(map[string]*domain.AgentTask),
		trees:       make(map[string]*projectTree),
		fileCache:   make(map[string]map[string]string),
		uiFlags:     make(map[string]bool),
		terminalCap: constants.TerminalLogMaxEntries,
		subs:        make(map[int]Subscriber),
	}
}

// SetTerminalCap overrides the terminal log cap. Values below one are
// ignored.
func (s *Store) SetTerminalCap(n int) {
	if n < 1 {
		return
	}
	s.mu.Lock()
	s.terminalCap = n
	s.mu.Unlock()
}

// Subscribe registers a callback for committed mutations and returns an id
// that can be passed to Unsubscribe.
func (s *Store) Subscribe(fn Subscriber) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return id
}

// Unsubscribe removes a previously registered subscriber.
// Unknown ids are ignored.
func (s *Store) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// notify invokes all subscribers outside the lock. Must be called after
// the mutation has been committed and the lock released, so the new value
// is visible to any reader the subscriber triggers.
func (s *Store) notify(kind Kind) {
	s.mu.RLock()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(kind)
	}
}

// PutProject inserts or replaces a project record.
func (s *Store) PutProject(p domain.Project) {
	s.mu.Lock()
	cp := p
	s.projects[p.ID] = &cp
	s.mu.Unlock()

	s.notify(KindProjects)
}

// Project returns a copy of the project with the given id.
func (s *Store) Project(id string) (domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return domain.Project{}, wrerrors.Wrapf(wrerrors.ErrProjectNotFound, "project %q", id)
	}
	return *p, nil
}

// HasProject reports whether a project with the given id exists.
func (s *Store) HasProject(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.projects[id]
	return ok
}

// Projects returns copies of all projects, in unspecified order.
func (s *Store) Projects() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, *p)
	}
	return out
}

// PutTask inserts a task record. It fails with ErrConflict if a task with
// the same session id already exists; session id collision is a registry
// invariant violation, not a normal outcome.
func (s *Store) PutTask(t domain.AgentTask) error {
	s.mu.Lock()
	if _, ok := s.tasks[t.SessionID]; ok {
		s.mu.Unlock()
		return wrerrors.Wrapf(wrerrors.ErrConflict, "task %q already exists", t.SessionID)
	}
	cp := t
	s.tasks[t.SessionID] = &cp
	s.mu.Unlock()

	s.notify(KindTasks)
	return nil
}

// UpdateTask applies fn to the task with the given session id under the
// store's write lock. This is the single serialized mutation path shared by
// direct calls and the broadcast channel's receive loop. If fn returns an
// error the task is left untouched and the error is returned; subscribers
// are only notified on success.
func (s *Store) UpdateTask(sessionID string, fn func(t *domain.AgentTask) error) error {
	s.mu.Lock()
	t, ok := s.tasks[sessionID]
	if !ok {
		s.mu.Unlock()
		return wrerrors.Wrapf(wrerrors.ErrSessionNotFound, "session %q", sessionID)
	}

	// Work on a copy so a failed fn cannot leave a partial write behind.
	cp := *t
	if err := fn(&cp); err != nil {
		s.mu.Unlock()
		return err
	}
	s.tasks[sessionID] = &cp
	s.mu.Unlock()

	s.notify(KindTasks)
	return nil
}

// Task returns a copy of the task with the given session id.
func (s *Store) Task(sessionID string) (domain.AgentTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[sessionID]
	if !ok {
		return domain.AgentTask{}, wrerrors.Wrapf(wrerrors.ErrSessionNotFound, "session %q", sessionID)
	}
	return copyTask(t), nil
}

// Tasks returns copies of all tasks for the given project. An empty
// projectID returns every task. Order is unspecified.
func (s *Store) Tasks(projectID string) []domain.AgentTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AgentTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		if projectID != "" && t.ProjectID != projectID {
			continue
		}
		out = append(out, copyTask(t))
	}
	return out
}

// copyTask deep-copies a task so callers cannot mutate stored state.
func copyTask(t *domain.AgentTask) domain.AgentTask {
	cp := *t
	if t.Progress != nil {
		p := *t.Progress
		cp.Progress = &p
	}
	if t.Result != nil {
		r := *t.Result
		r.FilesCreated = append([]string(nil), t.Result.FilesCreated...)
		r.Errors = append([]string(nil), t.Result.Errors...)
		cp.Result = &r
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		cp.CompletedAt = &at
	}
	return cp
}

// AppendChat appends a message to the chat transcript. The transcript is
// append-only; messages are never mutated after creation.
func (s *Store) AppendChat(msg domain.ChatMessage) {
	s.mu.Lock()
	s.chat = append(s.chat, msg)
	s.mu.Unlock()

	s.notify(KindChat)
}

// ChatHistory returns a copy of the full chat transcript in append order.
func (s *Store) ChatHistory() []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ChatMessage(nil), s.chat...)
}

// AppendTerminal appends an entry to the terminal log, dropping the oldest
// entries beyond the configured cap.
func (s *Store) AppendTerminal(entry domain.TerminalEntry) {
	s.mu.Lock()
	s.terminal = append(s.terminal, entry)
	if len(s.terminal) > s.terminalCap {
		s.terminal = s.terminal[len(s.terminal)-s.terminalCap:]
	}
	s.mu.Unlock()

	s.notify(KindTerminal)
}

// TerminalLog returns a copy of the terminal log in append order.
func (s *Store) TerminalLog() []domain.TerminalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.TerminalEntry(nil), s.terminal...)
}

// CacheFileContent records the content of a file the client has read or
// written, keyed by project and path.
func (s *Store) CacheFileContent(projectID, path, content string) {
	s.mu.Lock()
	files, ok := s.fileCache[projectID]
	if !ok {
		files = make(map[string]string)
		s.fileCache[projectID] = files
	}
	files[path] = content
	s.mu.Unlock()

	s.notify(KindFiles)
}

// CachedFile returns the cached content for a project path.
func (s *Store) CachedFile(projectID, path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.fileCache[projectID][path]
	return content, ok
}

// DropCachedFile removes a path from the file content cache, if present.
func (s *Store) DropCachedFile(projectID, path string) {
	s.mu.Lock()
	delete(s.fileCache[projectID], path)
	s.mu.Unlock()

	s.notify(KindFiles)
}

// SetOpenFile records the currently open file path.
func (s *Store) SetOpenFile(path string) {
	s.mu.Lock()
	s.openFile = path
	s.mu.Unlock()

	s.notify(KindFiles)
}

// OpenFile returns the currently open file path, empty when none.
func (s *Store) OpenFile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openFile
}

// ClearOpenFileIf clears the open-file reference only when it currently
// points at the given path. Used by the file tree manager after a delete.
func (s *Store) ClearOpenFileIf(path string) {
	s.mu.Lock()
	if s.openFile != path {
		s.mu.Unlock()
		return
	}
	s.openFile = ""
	s.mu.Unlock()

	s.notify(KindFiles)
}

// SetUIFlag records a persisted UI layout flag.
func (s *Store) SetUIFlag(name string, value bool) {
	s.mu.Lock()
	s.uiFlags[name] = value
	s.mu.Unlock()
}

// UIFlag returns a persisted UI layout flag; absent flags are false.
func (s *Store) UIFlag(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uiFlags[name]
}
