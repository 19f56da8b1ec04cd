// Package backend implements the REST client for the WaveRider backend:
// project management, task submission and polling, chat, and the file
// storage collaborator used by the file tree manager.
//
// HTTP status codes are mapped onto the client's error taxonomy so callers
// never inspect status codes themselves:
//
//	400, 422       -> ErrInvalidInput
//	404            -> ErrNotFound
//	409            -> ErrConflict
//	everything else -> ErrBackendStatus
//	network failure -> ErrTransportFailure
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/waverider/waverider/internal/constants"
	"github.com/waverider/waverider/internal/domain"
	wrerrors "github.com/waverider/waverider/internal/errors"
)

// Client talks to one backend instance. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a Client for the given base URL (no trailing slash). A zero
// or negative timeout falls back to the default request timeout.
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = constants.RequestTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "backend").Logger(),
	}
}

// statusErr maps a non-2xx response onto the error taxonomy. The body is
// included in the message when the backend sent one.
func statusErr(code int, body []byte) error {
	detail := string(bytes.TrimSpace(body))
	if detail == "" {
		detail = http.StatusText(code)
	}

	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return wrerrors.Wrapf(wrerrors.ErrInvalidInput, "backend rejected request: %s", detail)
	case http.StatusNotFound:
		return wrerrors.Wrapf(wrerrors.ErrNotFound, "backend: %s", detail)
	case http.StatusConflict:
		return wrerrors.Wrapf(wrerrors.ErrConflict, "backend: %s", detail)
	default:
		return wrerrors.Wrapf(wrerrors.ErrBackendStatus, "backend returned %d: %s", code, detail)
	}
}

// doJSON issues one request and decodes the 2xx response body into out
// (skipped when out is nil). body is JSON-encoded when non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return wrerrors.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return wrerrors.Wrap(err, "failed to create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend request failed")
		return wrerrors.Wrapf(wrerrors.ErrTransportFailure, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-side close

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return wrerrors.Wrapf(wrerrors.ErrTransportFailure, "failed to read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusErr(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return wrerrors.Wrapf(err, "failed to decode %s %s response", method, path)
	}
	return nil
}

// CreateProject registers a new project and returns the backend's record.
func (c *Client) CreateProject(ctx context.Context, name, description string) (domain.Project, error) {
	req := struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}{Name: name, Description: description}

	var p domain.Project
	if err := c.doJSON(ctx, http.MethodPost, "/api/projects", req, &p); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

// Projects lists all projects known to the backend.
func (c *Client) Projects(ctx context.Context) ([]domain.Project, error) {
	var out []domain.Project
	if err := c.doJSON(ctx, http.MethodGet, "/api/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Project fetches one project by id.
func (c *Client) Project(ctx context.Context, id string) (domain.Project, error) {
	var p domain.Project
	if err := c.doJSON(ctx, http.MethodGet, "/api/projects/"+id, nil, &p); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

// SubmitTask asks the backend to start an agent task and returns the
// correlation id the backend allocated for it.
func (c *Client) SubmitTask(ctx context.Context, projectID, description, agentKind string) (string, error) {
	req := struct {
		Task      string `json:"task"`
		Type      string `json:"type,omitempty"`
		ProjectID string `json:"project_id"`
	}{Task: description, Type: agentKind, ProjectID: projectID}

	var resp struct {
		SessionID string `json:"session_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/tasks", req, &resp); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", wrerrors.Wrap(wrerrors.ErrBackendStatus, "backend returned no session id")
	}
	return resp.SessionID, nil
}

// TaskStatusRecord is the backend's polled view of a task. It complements
// the broadcast channel: polling survives a dropped connection.
type TaskStatusRecord struct {
	SessionID string               `json:"session_id"`
	Status    constants.TaskStatus `json:"status"`
	Progress  int                  `json:"progress"`
	Message   string               `json:"message,omitempty"`
	Result    *domain.TaskResult   `json:"result,omitempty"`
}

// TaskStatus polls the backend for a task's current state.
func (c *Client) TaskStatus(ctx context.Context, sessionID string) (TaskStatusRecord, error) {
	var rec TaskStatusRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/tasks/"+sessionID, nil, &rec); err != nil {
		return TaskStatusRecord{}, err
	}
	return rec, nil
}

// ChatReply is the backend's answer to a chat message.
type ChatReply struct {
	Response     string   `json:"response"`
	FilesCreated []string `json:"files_created,omitempty"`
}

// SendChat sends a chat message scoped to a project and returns the
// agent's reply.
func (c *Client) SendChat(ctx context.Context, projectID, message string) (ChatReply, error) {
	req := struct {
		Message   string `json:"message"`
		ProjectID string `json:"project_id"`
	}{Message: message, ProjectID: projectID}

	var reply ChatReply
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat", req, &reply); err != nil {
		return ChatReply{}, err
	}
	return reply, nil
}

// fileOpRequest is the wire shape of the single file operation endpoint.
type fileOpRequest struct {
	Operation string `json:"operation"`
	Path      string `json:"path"`
	Content   string `json:"content,omitempty"`
	ProjectID string `json:"project_id"`
}

// Read fetches a file's content. Implements filetree.Storage.
func (c *Client) Read(ctx context.Context, projectID, path string) (string, error) {
	var resp struct {
		Content string `json:"content"`
	}
	req := fileOpRequest{Operation: "read", Path: path, ProjectID: projectID}
	if err := c.doJSON(ctx, http.MethodPost, "/api/files", req, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Write stores content at a path. Implements filetree.Storage.
func (c *Client) Write(ctx context.Context, projectID, path, content string) error {
	req := fileOpRequest{Operation: "create", Path: path, Content: content, ProjectID: projectID}
	return c.doJSON(ctx, http.MethodPost, "/api/files", req, nil)
}

// Delete removes the file at a path. Implements filetree.Storage.
func (c *Client) Delete(ctx context.Context, projectID, path string) error {
	req := fileOpRequest{Operation: "delete", Path: path, ProjectID: projectID}
	return c.doJSON(ctx, http.MethodPost, "/api/files", req, nil)
}

// backendFile is one entry of the backend's project file listing. The
// backend tags kinds with "type"; the client taxonomy uses "kind".
type backendFile struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Size     int64  `json:"size,omitempty"`
	Modified string `json:"modified,omitempty"`
}

// List returns a project's files as a flat ordered listing, preserving the
// backend's ordering exactly. Implements filetree.Storage.
func (c *Client) List(ctx context.Context, projectID string) ([]domain.FileListing, error) {
	var resp struct {
		Files []backendFile `json:"files"`
	}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/projects/%s/files", projectID), nil, &resp); err != nil {
		return nil, err
	}

	out := make([]domain.FileListing, 0, len(resp.Files))
	for _, f := range resp.Files {
		kind := constants.NodeKindFile
		if f.Type == string(constants.NodeKindDirectory) {
			kind = constants.NodeKindDirectory
		}
		out = append(out, domain.FileListing{
			Path: f.Path,
			Name: f.Name,
			Kind: kind,
			Size: f.Size,
		})
	}
	return out, nil
}
