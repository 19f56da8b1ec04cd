package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/waverider/waverider/internal/domain"
	wrerrors "github.com/waverider/waverider/internal/errors"
)

// File and directory permission constants.
const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// persistedState is the on-disk snapshot of the Entity Store.
//
// Task records are intentionally absent: in-flight task state is not
// persisted across reloads. A reload therefore loses pending/running tasks,
// and progress events that later arrive for those session ids are silently
// discarded by the registry.
type persistedState struct {
	Projects  []domain.Project             `json:"projects"`
	Chat      []domain.ChatMessage         `json:"chat"`
	Terminal  []domain.TerminalEntry       `json:"terminal"`
	FileCache map[string]map[string]string `json:"file_cache"`
	OpenFile  string                       `json:"open_file,omitempty"`
	UIFlags   map[string]bool              `json:"ui_flags,omitempty"`
}

// Save writes the persistable portion of the store to path atomically
// using write-then-rename, creating parent directories as needed.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	state := persistedState{
		Projects:  make([]domain.Project, 0, len(s.projects)),
		Chat:      append([]domain.ChatMessage(nil), s.chat...),
		Terminal:  append([]domain.TerminalEntry(nil), s.terminal...),
		FileCache: make(map[string]map[string]string, len(s.fileCache)),
		OpenFile:  s.openFile,
		UIFlags:   make(map[string]bool, len(s.uiFlags)),
	}
	for _, p := range s.projects {
		state.Projects = append(state.Projects, *p)
	}
	for projectID, files := range s.fileCache {
		cp := make(map[string]string, len(files))
		for k, v := range files {
			cp[k] = v
		}
		state.FileCache[projectID] = cp
	}
	for k, v := range s.uiFlags {
		state.UIFlags[k] = v
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return wrerrors.Wrap(err, "failed to marshal client state")
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return wrerrors.Wrap(err, "failed to create state directory")
	}
	if err := atomicWrite(path, data); err != nil {
		return wrerrors.Wrap(err, "failed to write client state")
	}

	s.logger.Debug().Str("path", path).Msg("client state saved")
	return nil
}

// Load replaces the persistable portion of the store with the snapshot at
// path. A missing file is not an error; the store is simply left empty.
// Subscribers are notified once per restored collection.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path) //#nosec G304 -- path is constructed from the waverider home dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return wrerrors.Wrap(err, "failed to read client state")
	}

	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return wrerrors.Wrap(err, "corrupted client state file")
	}

	s.mu.Lock()
	s.projects = make(map[string]*domain.Project, len(state.Projects))
	for i := range state.Projects {
		p := state.Projects[i]
		s.projects[p.ID] = &p
	}
	s.chat = state.Chat
	s.terminal = state.Terminal
	s.fileCache = state.FileCache
	if s.fileCache == nil {
		s.fileCache = make(map[string]map[string]string)
	}
	s.openFile = state.OpenFile
	s.uiFlags = state.UIFlags
	if s.uiFlags == nil {
		s.uiFlags = make(map[string]bool)
	}
	s.mu.Unlock()

	for _, kind := range []Kind{KindProjects, KindChat, KindTerminal, KindFiles} {
		s.notify(kind)
	}

	s.logger.Debug().Str("path", path).Msg("client state loaded")
	return nil
}

// atomicWrite writes data to a file atomically using write-then-rename.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Ensure data is persisted before rename
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
