package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waverider/waverider/internal/clock"
	"github.com/waverider/waverider/internal/constants"
	"github.com/waverider/waverider/internal/domain"
)

// TestStore_SaveLoad_RoundTrip verifies the persisted collections survive a
// save/load cycle while task records do not.
func TestStore_SaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s := newTestStore()
	s.PutProject(domain.Project{ID: "p1", Name: "demo", CreatedAt: time.Now().UTC()})
	s.AppendChat(domain.ChatMessage{ID: "m1", Sender: constants.SenderUser, Content: "hello"})
	s.AppendTerminal(domain.TerminalEntry{Level: "info", Message: "connected"})
	s.CacheFileContent("p1", "a.txt", "hi")
	s.SetOpenFile("a.txt")
	s.SetUIFlag("sidebar", true)
	require.NoError(t, s.PutTask(domain.AgentTask{SessionID: "s1", ProjectID: "p1", Status: constants.TaskStatusRunning}))

	require.NoError(t, s.Save(path))

	loaded := New(clock.RealClock{}, zerolog.Nop())
	require.NoError(t, loaded.Load(path))

	got, err := loaded.Project("p1")
	require.NoError(t, err)
	assert.Equal(t, "demo", got.Name)

	require.Len(t, loaded.ChatHistory(), 1)
	assert.Equal(t, "hello", loaded.ChatHistory()[0].Content)

	require.Len(t, loaded.TerminalLog(), 1)

	content, ok := loaded.CachedFile("p1", "a.txt")
	require.True(t, ok)
	assert.Equal(t, "hi", content)

	assert.Equal(t, "a.txt", loaded.OpenFile())
	assert.True(t, loaded.UIFlag("sidebar"))

	// In-flight task state is deliberately lost across reloads.
	assert.Empty(t, loaded.Tasks(""))
}

// TestStore_Load_MissingFileIsNotAnError verifies first-run behavior.
func TestStore_Load_MissingFileIsNotAnError(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.Load(filepath.Join(t.TempDir(), "absent.json")))
	assert.Empty(t, s.Projects())
}

// TestStore_Load_CorruptedFile verifies a broken state file surfaces an error.
func TestStore_Load_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := newTestStore()
	err := s.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupted")
}

// TestStore_Save_CreatesParentDirs verifies the state directory is created
// on demand.
func TestStore_Save_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")

	s := newTestStore()
	require.NoError(t, s.Save(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
