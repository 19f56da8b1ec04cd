package cli

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/waverider/waverider/internal/backend"
	"github.com/waverider/waverider/internal/clock"
	"github.com/waverider/waverider/internal/config"
	"github.com/waverider/waverider/internal/domain"
	wrerrors "github.com/waverider/waverider/internal/errors"
	"github.com/waverider/waverider/internal/filetree"
	"github.com/waverider/waverider/internal/flock"
	"github.com/waverider/waverider/internal/registry"
	"github.com/waverider/waverider/internal/session"
	"github.com/waverider/waverider/internal/store"
	"github.com/waverider/waverider/internal/terminal"
)

// App wires the client core together for one command invocation: config,
// entity store (restored from disk), task registry, session coordinator,
// backend client, and terminal log.
type App struct {
	Config   *config.Config
	Store    *store.Store
	Registry *registry.Registry
	Sessions *session.Coordinator
	Backend  *backend.Client
	Terminal *terminal.Log
	Clock    clock.Clock

	statePath string
	lock      *flock.Guard
	logger    zerolog.Logger
}

// newApp builds the application graph and restores persisted client state.
// A corrupted state file is reported but never blocks the command; the
// client starts over with an empty store.
func newApp(ctx context.Context, flags *GlobalFlags) (*App, error) {
	logger := Logger()

	overrides := &config.Config{}
	if flags != nil && flags.BackendURL != "" {
		overrides.Backend.BaseURL = flags.BackendURL
	}
	cfg, err := config.LoadWithOverrides(ctx, overrides)
	if err != nil {
		return nil, err
	}

	statePath, err := config.StateFilePath()
	if err != nil {
		return nil, err
	}

	// One process at a time may own the state file.
	lock, err := flock.Acquire(statePath + ".lock")
	if err != nil {
		return nil, err
	}

	clk := clock.RealClock{}
	st := store.New(clk, logger)
	st.SetTerminalCap(cfg.Terminal.MaxEntries)
	if err := st.Load(statePath); err != nil {
		logger.Warn().Err(err).Str("path", statePath).Msg("client state not restored, starting empty")
	}

	sessions := session.NewCoordinator(clk)
	app := &App{
		Config:    cfg,
		Store:     st,
		Registry:  registry.New(st, sessions, clk, logger),
		Sessions:  sessions,
		Backend:   backend.New(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout, logger),
		Terminal:  terminal.NewLog(st, clk, logger),
		Clock:     clk,
		statePath: statePath,
		lock:      lock,
		logger:    logger,
	}
	return app, nil
}

// Close persists the client state and releases the state file lock. Call
// via defer in every command that mutates the store.
func (a *App) Close() {
	if err := a.Store.Save(a.statePath); err != nil {
		a.logger.Error().Err(err).Str("path", a.statePath).Msg("failed to save client state")
	}
	a.lock.Release()
}

// FileTree creates the file tree manager for a project, backed by the
// backend client's storage endpoints.
func (a *App) FileTree(projectID string) *filetree.Manager {
	return filetree.NewManager(projectID, a.Backend, a.Store, a.logger)
}

// resolveProject finds a project by id or name, consulting the local store
// first and falling back to the backend. Resolved backend projects are
// cached in the store.
func (a *App) resolveProject(ctx context.Context, idOrName string) (domain.Project, error) {
	if idOrName == "" {
		return domain.Project{}, wrerrors.Wrap(wrerrors.ErrInvalidInput, "project is required (use --project)")
	}

	if p, err := a.Store.Project(idOrName); err == nil {
		return p, nil
	}
	for _, p := range a.Store.Projects() {
		if p.Name == idOrName {
			return p, nil
		}
	}

	if p, err := a.Backend.Project(ctx, idOrName); err == nil {
		a.Store.PutProject(p)
		return p, nil
	}

	projects, err := a.Backend.Projects(ctx)
	if err != nil {
		return domain.Project{}, wrerrors.Wrapf(err, "project %q not found locally and backend lookup failed", idOrName)
	}
	for _, p := range projects {
		if p.Name == idOrName || p.ID == idOrName {
			a.Store.PutProject(p)
			return p, nil
		}
	}

	return domain.Project{}, wrerrors.Wrapf(wrerrors.ErrProjectNotFound, "project %q", idOrName)
}
