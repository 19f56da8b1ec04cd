package tui

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waverider/waverider/internal/constants"
	"github.com/waverider/waverider/internal/domain"
)

// TestTaskLine verifies the streaming summary line with and without a
// progress record.
func TestTaskLine(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	CheckNoColor()

	bare := domain.AgentTask{SessionID: "s1", Status: constants.TaskStatusPending}
	assert.Contains(t, TaskLine(bare), "pending")
	assert.Contains(t, TaskLine(bare), "s1")

	running := domain.AgentTask{
		SessionID: "s1",
		Status:    constants.TaskStatusRunning,
		Progress:  &domain.ProgressRecord{Percentage: 40, Status: "executing", Message: "generating"},
	}
	line := TaskLine(running)
	assert.Contains(t, line, "40%")
	assert.Contains(t, line, "executing generating")
}

// TestTTYOutput_Task verifies the multi-line summary: headline, indented
// description, and result details.
func TestTTYOutput_Task(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	CheckNoColor()

	var buf bytes.Buffer
	out := NewTTYOutput(&buf)
	out.Task(domain.AgentTask{
		SessionID:   "s1",
		Description: "build a snake game",
		Status:      constants.TaskStatusCompleted,
		Result:      &domain.TaskResult{Success: true, FilesCreated: []string{"main.py"}},
	})

	got := buf.String()
	assert.Contains(t, got, "completed")
	assert.Contains(t, got, "s1")
	assert.Contains(t, got, "  build a snake game")
	assert.Contains(t, got, "  created main.py")
}

// TestJSONOutput_Task verifies the task lands as parseable JSON and that
// message-level methods stay silent.
func TestJSONOutput_Task(t *testing.T) {
	var buf bytes.Buffer
	out := NewJSONOutput(&buf)
	out.Info("noise")
	out.Detail("more noise")
	out.Task(domain.AgentTask{SessionID: "s1", Status: constants.TaskStatusRunning})

	var decoded domain.AgentTask
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "s1", decoded.SessionID)
	assert.Equal(t, constants.TaskStatusRunning, decoded.Status)
}
