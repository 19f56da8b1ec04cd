package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSentinelErrors_AreDistinct verifies that no two sentinels compare equal,
// so errors.Is categorization cannot cross-match.
func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidInput,
		ErrConflict,
		ErrNotFound,
		ErrTransportFailure,
		ErrProjectNotFound,
		ErrSessionNotFound,
		ErrTaskTerminal,
		ErrInvalidTransition,
		ErrNodeExists,
		ErrNodeNotFound,
		ErrChannelClosed,
		ErrEmptyValue,
		ErrValueOutOfRange,
		ErrConfigInvalid,
		ErrBackendStatus,
		ErrRenameIncomplete,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, stderrors.Is(a, b), "sentinel %v should not match %v", a, b)
		}
	}
}

// TestWrap_PreservesChain verifies errors.Is still matches after wrapping.
func TestWrap_PreservesChain(t *testing.T) {
	wrapped := Wrap(ErrConflict, "creating file")
	require.Error(t, wrapped)
	assert.True(t, stderrors.Is(wrapped, ErrConflict))
	assert.Contains(t, wrapped.Error(), "creating file")
}

// TestWrap_NilReturnsNil verifies safe inline usage with nil errors.
func TestWrap_NilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
	assert.NoError(t, Wrapf(nil, "context %d", 1))
}

// TestWrapf_FormatsMessage verifies interpolation and chain preservation.
func TestWrapf_FormatsMessage(t *testing.T) {
	wrapped := Wrapf(ErrNodeNotFound, "renaming %s", "a.txt")
	require.Error(t, wrapped)
	assert.True(t, stderrors.Is(wrapped, ErrNodeNotFound))
	assert.Equal(t, fmt.Sprintf("renaming %s: %v", "a.txt", ErrNodeNotFound), wrapped.Error())
}
