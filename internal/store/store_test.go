package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waverider/waverider/internal/clock"
	"github.com/waverider/waverider/internal/constants"
	"github.com/waverider/waverider/internal/domain"
	wrerrors "github.com/waverider/waverider/internal/errors"
)

func newTestStore() *Store {
	return New(clock.RealClock{}, zerolog.Nop())
}

// TestStore_PutAndGetProject verifies basic project round-trip and copying.
func TestStore_PutAndGetProject(t *testing.T) {
	s := newTestStore()
	s.PutProject(domain.Project{ID: "p1", Name: "demo"})

	got, err := s.Project("p1")
	require.NoError(t, err)
	assert.Equal(t, "demo", got.Name)

	// Mutating the returned copy must not affect the stored entity.
	got.Name = "changed"
	again, err := s.Project("p1")
	require.NoError(t, err)
	assert.Equal(t, "demo", again.Name)
}

// TestStore_ProjectNotFound verifies the error category for unknown projects.
func TestStore_ProjectNotFound(t *testing.T) {
	s := newTestStore()

	_, err := s.Project("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, wrerrors.ErrProjectNotFound)
	assert.False(t, s.HasProject("missing"))
}

// TestStore_PutTask_DuplicateSessionID verifies duplicate insertion is a conflict.
func TestStore_PutTask_DuplicateSessionID(t *testing.T) {
	s := newTestStore()
	task := domain.AgentTask{SessionID: "s1", ProjectID: "p1", Status: constants.TaskStatusPending}

	require.NoError(t, s.PutTask(task))
	err := s.PutTask(task)
	require.Error(t, err)
	assert.ErrorIs(t, err, wrerrors.ErrConflict)
}

// TestStore_UpdateTask_FailedFnLeavesTaskUntouched verifies that a mutation
// function returning an error does not commit a partial write.
func TestStore_UpdateTask_FailedFnLeavesTaskUntouched(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.PutTask(domain.AgentTask{SessionID: "s1", Status: constants.TaskStatusPending}))

	err := s.UpdateTask("s1", func(task *domain.AgentTask) error {
		task.Status = constants.TaskStatusRunning
		return wrerrors.ErrInvalidTransition
	})
	require.Error(t, err)

	got, err := s.Task("s1")
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusPending, got.Status)
}

// TestStore_UpdateTask_UnknownSession verifies the error category.
func TestStore_UpdateTask_UnknownSession(t *testing.T) {
	s := newTestStore()

	err := s.UpdateTask("ghost", func(*domain.AgentTask) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, wrerrors.ErrSessionNotFound)
}

// TestStore_Tasks_FiltersByProject verifies project scoping of task listings.
func TestStore_Tasks_FiltersByProject(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.PutTask(domain.AgentTask{SessionID: "s1", ProjectID: "p1"}))
	require.NoError(t, s.PutTask(domain.AgentTask{SessionID: "s2", ProjectID: "p2"}))
	require.NoError(t, s.PutTask(domain.AgentTask{SessionID: "s3", ProjectID: "p1"}))

	assert.Len(t, s.Tasks("p1"), 2)
	assert.Len(t, s.Tasks("p2"), 1)
	assert.Len(t, s.Tasks(""), 3)
}

// TestStore_Task_ReturnsDeepCopy verifies nested fields are copied so a
// reader cannot mutate stored progress or result.
func TestStore_Task_ReturnsDeepCopy(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.PutTask(domain.AgentTask{
		SessionID: "s1",
		Status:    constants.TaskStatusRunning,
		Progress:  &domain.ProgressRecord{Percentage: 40},
		Result:    &domain.TaskResult{FilesCreated: []string{"a.txt"}},
	}))

	got, err := s.Task("s1")
	require.NoError(t, err)
	got.Progress.Percentage = 99
	got.Result.FilesCreated[0] = "tampered"

	again, err := s.Task("s1")
	require.NoError(t, err)
	assert.Equal(t, 40, again.Progress.Percentage)
	assert.Equal(t, "a.txt", again.Result.FilesCreated[0])
}

// TestStore_Subscribe_NotifiedAfterCommit verifies the subscriber observes
// the committed value when the callback fires.
func TestStore_Subscribe_NotifiedAfterCommit(t *testing.T) {
	s := newTestStore()

	var mu sync.Mutex
	var observed []domain.AgentTask
	s.Subscribe(func(kind Kind) {
		if kind != KindTasks {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		observed = append(observed, s.Tasks("")...)
	})

	require.NoError(t, s.PutTask(domain.AgentTask{SessionID: "s1", Status: constants.TaskStatusPending}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, observed, 1)
	assert.Equal(t, constants.TaskStatusPending, observed[0].Status)
}

// TestStore_Unsubscribe verifies removed subscribers stop receiving events.
func TestStore_Unsubscribe(t *testing.T) {
	s := newTestStore()

	calls := 0
	id := s.Subscribe(func(Kind) { calls++ })
	s.PutProject(domain.Project{ID: "p1"})
	s.Unsubscribe(id)
	s.PutProject(domain.Project{ID: "p2"})

	assert.Equal(t, 1, calls)
}

// TestStore_ClearOpenFileIf verifies deleting the open file clears the
// reference while deleting any other file leaves it untouched.
func TestStore_ClearOpenFileIf(t *testing.T) {
	s := newTestStore()
	s.SetOpenFile("src/main.py")

	s.ClearOpenFileIf("src/other.py")
	assert.Equal(t, "src/main.py", s.OpenFile())

	s.ClearOpenFileIf("src/main.py")
	assert.Empty(t, s.OpenFile())
}

// TestStore_AppendTerminal_CapsEntries verifies the oldest entries are
// dropped once the cap is exceeded.
func TestStore_AppendTerminal_CapsEntries(t *testing.T) {
	s := newTestStore()
	for i := 0; i < constants.TerminalLogMaxEntries+10; i++ {
		s.AppendTerminal(domain.TerminalEntry{Level: "info", Message: "entry", Timestamp: time.Now()})
	}

	assert.Len(t, s.TerminalLog(), constants.TerminalLogMaxEntries)
}

// TestStore_SetTerminalCap verifies the cap is configurable and that the
// freshest entries survive trimming.
func TestStore_SetTerminalCap(t *testing.T) {
	s := newTestStore()
	s.SetTerminalCap(3)
	for i := 0; i < 5; i++ {
		s.AppendTerminal(domain.TerminalEntry{Level: "info", Message: fmt.Sprintf("entry %d", i)})
	}

	entries := s.TerminalLog()
	require.Len(t, entries, 3)
	assert.Equal(t, "entry 2", entries[0].Message)
	assert.Equal(t, "entry 4", entries[2].Message)

	// Values below one leave the cap untouched.
	s.SetTerminalCap(0)
	s.AppendTerminal(domain.TerminalEntry{Level: "info", Message: "entry 5"})
	assert.Len(t, s.TerminalLog(), 3)
}

// TestStore_FileCacheRoundTrip verifies cache insert, lookup, and drop.
func TestStore_FileCacheRoundTrip(t *testing.T) {
	s := newTestStore()
	s.CacheFileContent("p1", "a.txt", "hi")

	content, ok := s.CachedFile("p1", "a.txt")
	require.True(t, ok)
	assert.Equal(t, "hi", content)

	s.DropCachedFile("p1", "a.txt")
	_, ok = s.CachedFile("p1", "a.txt")
	assert.False(t, ok)
}

// TestStore_ConcurrentMutations exercises the single-writer mutation path
// from many goroutines; the race detector guards correctness here.
func TestStore_ConcurrentMutations(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.PutTask(domain.AgentTask{SessionID: "s1", Status: constants.TaskStatusRunning}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = s.UpdateTask("s1", func(task *domain.AgentTask) error {
				task.Progress = &domain.ProgressRecord{Percentage: n}
				return nil
			})
			_ = s.Tasks("")
			s.AppendTerminal(domain.TerminalEntry{Message: "tick"})
		}(i)
	}
	wg.Wait()

	got, err := s.Task("s1")
	require.NoError(t, err)
	require.NotNil(t, got.Progress)
}
