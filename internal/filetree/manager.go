// Package filetree materializes the storage collaborator's flat file
// listing into the hierarchical tree held by the entity store, and applies
// create, delete, and rename operations against it.
//
// The manager never reflects a mutation as committed before the storage
// collaborator has acknowledged it: a failed write leaves the tree exactly
// as it was. The UI-only expand/collapse toggle is the one operation that
// never touches storage.
package filetree

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/waverider/waverider/internal/constants"
	"github.com/waverider/waverider/internal/domain"
	wrerrors "github.com/waverider/waverider/internal/errors"
	"github.com/waverider/waverider/internal/store"
)

// Storage is the external file-storage collaborator. Implementations issue
// the actual I/O; the manager only mirrors acknowledged results into the
// entity store.
type Storage interface {
	// Read returns the content of a file, or ErrNotFound.
	Read(ctx context.Context, projectID, path string) (string, error)

	// Write stores content at a path, creating or overwriting the file.
	Write(ctx context.Context, projectID, path, content string) error

	// Delete removes the file at a path.
	Delete(ctx context.Context, projectID, path string) error

	// List returns the project's files as a flat, ordered sequence.
	// Order is significant: siblings render in exactly this order.
	List(ctx context.Context, projectID string) ([]domain.FileListing, error)
}

// Manager mutates one project's file tree. Operations serialize through an
// internal mutex in addition to the store's write lock, so a create racing
// a rename cannot interleave their storage calls.
type Manager struct {
	mu        sync.Mutex
	storage   Storage
	store     *store.Store
	logger    zerolog.Logger
	projectID string
}

// NewManager creates a Manager for one project.
func NewManager(projectID string, storage Storage, st *store.Store, logger zerolog.Logger) *Manager {
	return &Manager{
		storage:   storage,
		store:     st,
		logger:    logger.With().Str("component", "filetree").Str("project_id", projectID).Logger(),
		projectID: projectID,
	}
}

// Reload fetches the storage listing and replaces the tree, preserving the
// expansion flags of directories that survive the reload.
func (m *Manager) Reload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reloadLocked(ctx)
}

func (m *Manager) reloadLocked(ctx context.Context) error {
	listings, err := m.storage.List(ctx, m.projectID)
	if err != nil {
		return wrerrors.Wrap(err, "failed to list project files")
	}

	roots, nodes := materialize(listings)

	// Carry expansion state over from the previous tree.
	for i := range nodes {
		if prev, ok := m.store.TreeNode(m.projectID, nodes[i].Path); ok {
			nodes[i].Expanded = prev.Expanded
		}
	}

	m.store.ReplaceTree(m.projectID, roots, nodes)
	return nil
}

// materialize builds the node arena from a flat, ordered listing. Sibling
// order follows listing order. Parent directories missing from the listing
// are synthesized at their first point of use.
func materialize(listings []domain.FileListing) (roots []string, nodes []domain.FileNode) {
	index := make(map[string]int, len(listings))

	// ensure inserts proto once, linking it to its parent (synthesized as
	// a directory when the listing never mentioned it) or to the roots.
	var ensure func(proto domain.FileNode) int
	ensure = func(proto domain.FileNode) int {
		if i, ok := index[proto.Path]; ok {
			return i
		}
		nodes = append(nodes, proto)
		i := len(nodes) - 1
		index[proto.Path] = i

		parent := parentPath(proto.Path)
		if parent == "" {
			roots = append(roots, proto.Path)
			return i
		}
		pi := ensure(domain.FileNode{
			Path: parent,
			Name: baseName(parent),
			Kind: constants.NodeKindDirectory,
		})
		nodes[pi].Children = append(nodes[pi].Children, proto.Path)
		return i
	}

	for _, l := range listings {
		ensure(domain.FileNode{
			Path:     l.Path,
			Name:     l.Name,
			Kind:     l.Kind,
			Size:     l.Size,
			Modified: l.Modified,
		})
	}

	return roots, nodes
}

// parentPath returns the directory portion of a path, empty for roots.
func parentPath(path string) string {
	if i := strings.LastIndex(path, "/"); i > 0 {
		return path[:i]
	}
	return ""
}

// baseName returns the final path element.
func baseName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Create writes a new file through the storage collaborator and, only on
// acknowledged success, inserts the node and reloads the tree.
//
// Returns ErrInvalidInput for a blank path and ErrConflict if a node
// already exists at the path.
func (m *Manager) Create(ctx context.Context, path, content string) error {
	if strings.TrimSpace(path) == "" {
		return wrerrors.Wrap(wrerrors.ErrInvalidInput, "path is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.store.TreeNode(m.projectID, path); ok {
		return wrerrors.Wrapf(wrerrors.ErrConflict, "path %q already exists", path)
	}

	if err := m.storage.Write(ctx, m.projectID, path, content); err != nil {
		return wrerrors.Wrapf(err, "failed to create %q", path)
	}

	m.store.CacheFileContent(m.projectID, path, content)
	m.store.InsertNode(m.projectID, parentPath(path), domain.FileNode{
		Path: path,
		Name: baseName(path),
		Kind: constants.NodeKindFile,
		Size: int64(len(content)),
	})

	// Refresh from storage so sizes and ordering match the collaborator's
	// view. The node above stays committed even if the reload fails.
	if err := m.reloadLocked(ctx); err != nil {
		m.logger.Warn().Err(err).Str("path", path).Msg("tree reload after create failed")
	}

	m.logger.Info().Str("path", path).Msg("file created")
	return nil
}

// Delete removes a file or directory. The node is removed from the tree
// only after the storage collaborator acknowledges the deletion. If the
// deleted path was the currently open file, the open-file reference is
// cleared. Confirmation is an upstream UI concern, not enforced here.
func (m *Manager) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.store.TreeNode(m.projectID, path); !ok {
		return wrerrors.Wrapf(wrerrors.ErrNodeNotFound, "path %q", path)
	}

	if err := m.storage.Delete(ctx, m.projectID, path); err != nil {
		return wrerrors.Wrapf(err, "failed to delete %q", path)
	}

	m.store.RemoveNode(m.projectID, path)
	m.store.DropCachedFile(m.projectID, path)
	m.store.ClearOpenFileIf(path)

	m.logger.Info().Str("path", path).Msg("file deleted")
	return nil
}

// Rename moves a file from oldPath to newPath. The storage collaborator has
// no atomic rename, so this is read old content, write new path, delete old
// path. A failed write leaves the old node untouched and surfaces the
// error. A failed delete after a successful write keeps BOTH nodes rather
// than silently losing data, and returns ErrRenameIncomplete.
func (m *Manager) Rename(ctx context.Context, oldPath, newPath string) error {
	if strings.TrimSpace(newPath) == "" {
		return wrerrors.Wrap(wrerrors.ErrInvalidInput, "new path is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.store.TreeNode(m.projectID, oldPath)
	if !ok {
		return wrerrors.Wrapf(wrerrors.ErrNodeNotFound, "path %q", oldPath)
	}
	if node.IsDir() {
		return wrerrors.Wrap(wrerrors.ErrInvalidInput, "directories cannot be renamed")
	}
	if _, ok := m.store.TreeNode(m.projectID, newPath); ok {
		return wrerrors.Wrapf(wrerrors.ErrConflict, "path %q already exists", newPath)
	}

	content, err := m.storage.Read(ctx, m.projectID, oldPath)
	if err != nil {
		return wrerrors.Wrapf(err, "failed to read %q", oldPath)
	}

	if err := m.storage.Write(ctx, m.projectID, newPath, content); err != nil {
		// Write step failed: old node untouched, error surfaced.
		return wrerrors.Wrapf(err, "failed to write %q", newPath)
	}

	newNode := domain.FileNode{
		Path: newPath,
		Name: baseName(newPath),
		Kind: constants.NodeKindFile,
		Size: int64(len(content)),
	}

	if err := m.storage.Delete(ctx, m.projectID, oldPath); err != nil {
		// Write succeeded but delete failed: both copies exist in storage,
		// so the tree reflects both rather than losing data.
		m.store.InsertNode(m.projectID, parentPath(newPath), newNode)
		m.store.CacheFileContent(m.projectID, newPath, content)
		m.logger.Warn().
			Err(err).
			Str("old_path", oldPath).
			Str("new_path", newPath).
			Msg("rename delete step failed, keeping both paths")
		return wrerrors.Wrapf(wrerrors.ErrRenameIncomplete, "%q and %q both exist", oldPath, newPath)
	}

	m.store.RemoveNode(m.projectID, oldPath)
	m.store.DropCachedFile(m.projectID, oldPath)
	m.store.InsertNode(m.projectID, parentPath(newPath), newNode)
	m.store.CacheFileContent(m.projectID, newPath, content)

	// Follow the open-file reference across the rename.
	if m.store.OpenFile() == oldPath {
		m.store.SetOpenFile(newPath)
	}

	m.logger.Info().Str("old_path", oldPath).Str("new_path", newPath).Msg("file renamed")
	return nil
}

// Toggle flips a directory's expansion flag. Pure client-side: no storage
// interaction and no failure mode; unknown paths are ignored.
func (m *Manager) Toggle(path string) {
	m.store.ToggleNode(m.projectID, path)
}

// Visible returns the tree in render order, honoring expansion flags.
func (m *Manager) Visible() []domain.FileNode {
	return m.store.VisibleTree(m.projectID)
}

// Flatten returns the full tree in render order, ignoring expansion flags.
// Used by non-interactive surfaces that always show everything.
func (m *Manager) Flatten() []domain.FileNode {
	var out []domain.FileNode
	var walk func(paths []string)
	walk = func(paths []string) {
		for _, p := range paths {
			n, ok := m.store.TreeNode(m.projectID, p)
			if !ok {
				continue
			}
			n.Expanded = n.IsDir()
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(m.store.TreeRoots(m.projectID))
	return out
}
