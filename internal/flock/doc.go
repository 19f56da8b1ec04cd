// Package flock provides cross-platform file locking for the client state
// file. Only one waverider process may mutate ~/.waverider/state.json at a
// time; a second process fails fast instead of corrupting the snapshot.
//
// Usage:
//
//	guard, err := flock.Acquire(lockPath)
//	if err != nil {
//	    // Another process holds the state file
//	}
//	defer guard.Release()
package flock
