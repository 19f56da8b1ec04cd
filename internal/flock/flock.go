package flock

import (
	"os"
	"path/filepath"

	wrerrors "github.com/waverider/waverider/internal/errors"
)

// Guard holds an exclusive lock on a lock file until released.
type Guard struct {
	file *os.File
}

// Acquire takes an exclusive non-blocking lock on path, creating the file
// and its parent directory as needed. Returns ErrConflict when another
// process already holds the lock.
func Acquire(path string) (*Guard, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, wrerrors.Wrap(err, "failed to create lock directory")
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) // #nosec G304 -- path is constructed from the waverider home dir
	if err != nil {
		return nil, wrerrors.Wrap(err, "failed to open lock file")
	}

	if err := exclusive(f.Fd()); err != nil {
		_ = f.Close()
		return nil, wrerrors.Wrapf(wrerrors.ErrConflict, "state file is locked by another process: %v", err)
	}

	return &Guard{file: f}, nil
}

// Release unlocks and closes the lock file. Safe to call once.
func (g *Guard) Release() {
	if g == nil || g.file == nil {
		return
	}
	_ = unlock(g.file.Fd())
	_ = g.file.Close()
	g.file = nil
}
