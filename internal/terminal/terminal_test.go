package terminal

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waverider/waverider/internal/clock"
	"github.com/waverider/waverider/internal/domain"
	wrerrors "github.com/waverider/waverider/internal/errors"
	"github.com/waverider/waverider/internal/store"
)

func newTestLog(t *testing.T) (*Log, *store.Store) {
	t.Helper()
	mc := clock.NewMockClock(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	st := store.New(mc, zerolog.Nop())
	return NewLog(st, mc, zerolog.Nop()), st
}

// TestConnectivityChanged verifies connect and disconnect lines, including
// the disconnect reason.
func TestConnectivityChanged(t *testing.T) {
	l, st := newTestLog(t)

	l.ConnectivityChanged(domain.Connectivity{Connected: true})
	l.ConnectivityChanged(domain.Connectivity{Connected: false, Reason: "connection closed"})

	entries := st.TerminalLog()
	require.Len(t, entries, 2)
	assert.Equal(t, LevelInfo, entries[0].Level)
	assert.Contains(t, entries[0].Message, "connected")
	assert.Equal(t, LevelWarn, entries[1].Level)
	assert.Contains(t, entries[1].Message, "connection closed")
}

// TestTaskLifecycleEntries verifies start, complete, and fail lines.
func TestTaskLifecycleEntries(t *testing.T) {
	l, st := newTestLog(t)

	l.TaskStarted("s1", "build a snake game")
	l.TaskFinished("s1", true)
	l.TaskFinished("s2", false)

	entries := st.TerminalLog()
	require.Len(t, entries, 3)
	assert.Contains(t, entries[0].Message, "build a snake game")
	assert.Equal(t, LevelInfo, entries[1].Level)
	assert.Equal(t, LevelError, entries[2].Level)
}

// TestFileOpFailed verifies transport failures land in the log.
func TestFileOpFailed(t *testing.T) {
	l, st := newTestLog(t)

	l.FileOpFailed("delete", "a.txt", wrerrors.ErrTransportFailure)

	entries := st.TerminalLog()
	require.Len(t, entries, 1)
	assert.Equal(t, LevelError, entries[0].Level)
	assert.Contains(t, entries[0].Message, `delete "a.txt"`)
}

// TestTimestampsComeFromClock verifies entries carry the injected clock's
// time in UTC.
func TestTimestampsComeFromClock(t *testing.T) {
	l, st := newTestLog(t)

	l.Info("hello %s", "world")

	entries := st.TerminalLog()
	require.Len(t, entries, 1)
	assert.Equal(t, "hello world", entries[0].Message)
	assert.Equal(t, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), entries[0].Timestamp)
}
