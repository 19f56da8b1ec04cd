package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSelectLevel verifies the flag-to-level mapping, including verbose
// winning over quiet.
func TestSelectLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, selectLevel(true, false))
	assert.Equal(t, zerolog.WarnLevel, selectLevel(false, true))
	assert.Equal(t, zerolog.InfoLevel, selectLevel(false, false))
	assert.Equal(t, zerolog.DebugLevel, selectLevel(true, true))
}

// TestInitLoggerWithWriter verifies JSON output and level filtering.
func TestInitLoggerWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerWithWriter(false, false, &buf)

	logger.Debug().Msg("hidden")
	logger.Info().Str("session_id", "s1").Msg("task created")

	require.NotContains(t, buf.String(), "hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "task created", entry["message"])
	assert.Equal(t, "s1", entry["session_id"])
	assert.NotEmpty(t, entry["time"])
}

// TestCreateLogFileWriter verifies the rotating writer lands under the
// configured home directory.
func TestCreateLogFileWriter(t *testing.T) {
	t.Setenv("WAVERIDER_HOME", t.TempDir())

	w, err := createLogFileWriter()
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	_, err = w.Write([]byte("hello\n"))
	assert.NoError(t, err)
}
