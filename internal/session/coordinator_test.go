package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waverider/waverider/internal/clock"
	wrerrors "github.com/waverider/waverider/internal/errors"
)

// TestCoordinator_RegisterAndLookup verifies the basic round trip and that
// the registration timestamp comes from the clock when unset.
func TestCoordinator_RegisterAndLookup(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	c := NewCoordinator(clock.NewMockClock(now))

	require.NoError(t, c.Register("s1", Context{ProjectID: "p1", Surface: "chat", OpenFile: "a.txt"}))

	ctx, ok := c.Lookup("s1")
	require.True(t, ok)
	assert.Equal(t, "p1", ctx.ProjectID)
	assert.Equal(t, "chat", ctx.Surface)
	assert.Equal(t, "a.txt", ctx.OpenFile)
	assert.Equal(t, now, ctx.CreatedAt)
}

// TestCoordinator_RegisterDuplicate verifies re-registration is a conflict.
func TestCoordinator_RegisterDuplicate(t *testing.T) {
	c := NewCoordinator(clock.RealClock{})
	require.NoError(t, c.Register("s1", Context{ProjectID: "p1"}))

	err := c.Register("s1", Context{ProjectID: "p2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, wrerrors.ErrConflict)
}

// TestCoordinator_RegisterEmptyID verifies input validation.
func TestCoordinator_RegisterEmptyID(t *testing.T) {
	c := NewCoordinator(clock.RealClock{})

	err := c.Register("", Context{ProjectID: "p1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, wrerrors.ErrInvalidInput)
}

// TestCoordinator_Remove verifies removal and that removing an unknown id
// is a harmless no-op.
func TestCoordinator_Remove(t *testing.T) {
	c := NewCoordinator(clock.RealClock{})
	require.NoError(t, c.Register("s1", Context{ProjectID: "p1"}))
	require.Equal(t, 1, c.Len())

	c.Remove("s1")
	_, ok := c.Lookup("s1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	assert.NotPanics(t, func() { c.Remove("s1") })
}

// TestCoordinator_EntriesSurviveIndefinitely verifies there is no timer
// based expiry: an old correlation is still resolvable.
func TestCoordinator_EntriesSurviveIndefinitely(t *testing.T) {
	mc := clock.NewMockClock(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	c := NewCoordinator(mc)
	require.NoError(t, c.Register("s1", Context{ProjectID: "p1"}))

	mc.Advance(240 * time.Hour)

	_, ok := c.Lookup("s1")
	assert.True(t, ok)
}
