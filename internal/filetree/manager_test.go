package filetree

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waverider/waverider/internal/clock"
	"github.com/waverider/waverider/internal/constants"
	"github.com/waverider/waverider/internal/domain"
	wrerrors "github.com/waverider/waverider/internal/errors"
	"github.com/waverider/waverider/internal/store"
)

// fakeStorage is an in-memory Storage that preserves insertion order in
// listings and supports per-operation error injection.
type fakeStorage struct {
	mu      sync.Mutex
	order   []string
	files   map[string]string
	dirs    map[string]bool
	readErr map[string]error
	writeEr map[string]error
	delErr  map[string]error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		files:   make(map[string]string),
		dirs:    make(map[string]bool),
		readErr: make(map[string]error),
		writeEr: make(map[string]error),
		delErr:  make(map[string]error),
	}
}

func (f *fakeStorage) seedFile(path, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[path]; !ok {
		f.order = append(f.order, path)
	}
	f.files[path] = content
}

func (f *fakeStorage) seedDir(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.dirs[path] {
		f.order = append(f.order, path)
	}
	f.dirs[path] = true
}

func (f *fakeStorage) Read(_ context.Context, _ string, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.readErr[path]; err != nil {
		return "", err
	}
	content, ok := f.files[path]
	if !ok {
		return "", wrerrors.ErrNotFound
	}
	return content, nil
}

func (f *fakeStorage) Write(_ context.Context, _ string, path, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.writeEr[path]; err != nil {
		return err
	}
	if _, ok := f.files[path]; !ok {
		f.order = append(f.order, path)
	}
	f.files[path] = content
	return nil
}

func (f *fakeStorage) Delete(_ context.Context, _ string, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.delErr[path]; err != nil {
		return err
	}
	if _, ok := f.files[path]; !ok && !f.dirs[path] {
		return wrerrors.ErrNotFound
	}
	delete(f.files, path)
	delete(f.dirs, path)
	for i, p := range f.order {
		if p == path {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeStorage) List(_ context.Context, _ string) ([]domain.FileListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.FileListing, 0, len(f.order))
	for _, path := range f.order {
		kind := constants.NodeKindFile
		var size int64
		if f.dirs[path] {
			kind = constants.NodeKindDirectory
		} else {
			size = int64(len(f.files[path]))
		}
		out = append(out, domain.FileListing{
			Path: path,
			Name: baseName(path),
			Kind: kind,
			Size: size,
		})
	}
	return out, nil
}

func newTestManager(t *testing.T) (*Manager, *fakeStorage, *store.Store) {
	t.Helper()
	st := store.New(clock.RealClock{}, zerolog.Nop())
	fs := newFakeStorage()
	return NewManager("p1", fs, st, zerolog.Nop()), fs, st
}

// TestReload_MaterializesOrderedTree verifies the flat listing becomes a
// nested tree with sibling order preserved exactly.
func TestReload_MaterializesOrderedTree(t *testing.T) {
	m, fs, st := newTestManager(t)
	fs.seedDir("src")
	fs.seedFile("src/zebra.py", "z")
	fs.seedFile("src/alpha.py", "a")
	fs.seedFile("README.md", "readme")

	require.NoError(t, m.Reload(context.Background()))

	assert.Equal(t, []string{"src", "README.md"}, st.TreeRoots("p1"))

	srcNode, ok := st.TreeNode("p1", "src")
	require.True(t, ok)
	assert.True(t, srcNode.IsDir())
	// Storage order, not sorted: zebra before alpha.
	assert.Equal(t, []string{"src/zebra.py", "src/alpha.py"}, srcNode.Children)
}

// TestReload_SynthesizesMissingParents verifies parent directories absent
// from the listing are created on demand.
func TestReload_SynthesizesMissingParents(t *testing.T) {
	m, fs, st := newTestManager(t)
	fs.seedFile("a/b/c.txt", "deep")

	require.NoError(t, m.Reload(context.Background()))

	dir, ok := st.TreeNode("p1", "a/b")
	require.True(t, ok)
	assert.True(t, dir.IsDir())
	assert.Equal(t, []string{"a/b/c.txt"}, dir.Children)

	root, ok := st.TreeNode("p1", "a")
	require.True(t, ok)
	assert.Equal(t, []string{"a/b"}, root.Children)
	assert.Equal(t, []string{"a"}, st.TreeRoots("p1"))
}

// TestReload_PreservesExpansion verifies expansion flags survive a reload.
func TestReload_PreservesExpansion(t *testing.T) {
	m, fs, _ := newTestManager(t)
	fs.seedDir("src")
	fs.seedFile("src/main.py", "x")

	require.NoError(t, m.Reload(context.Background()))
	m.Toggle("src")

	require.NoError(t, m.Reload(context.Background()))
	node, ok := m.store.TreeNode("p1", "src")
	require.True(t, ok)
	assert.True(t, node.Expanded)
}

// TestCreate_RoundTrip verifies create followed by a collaborator read
// yields the content unchanged.
func TestCreate_RoundTrip(t *testing.T) {
	m, fs, st := newTestManager(t)
	require.NoError(t, m.Reload(context.Background()))

	require.NoError(t, m.Create(context.Background(), "a.txt", "hi"))

	content, err := fs.Read(context.Background(), "p1", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", content)

	node, ok := st.TreeNode("p1", "a.txt")
	require.True(t, ok)
	assert.Equal(t, constants.NodeKindFile, node.Kind)

	cached, ok := st.CachedFile("p1", "a.txt")
	require.True(t, ok)
	assert.Equal(t, "hi", cached)
}

// TestCreate_DuplicatePathConflicts verifies the second create fails with
// Conflict and the original content is untouched.
func TestCreate_DuplicatePathConflicts(t *testing.T) {
	m, fs, _ := newTestManager(t)
	require.NoError(t, m.Create(context.Background(), "a.txt", "hi"))

	err := m.Create(context.Background(), "a.txt", "bye")
	require.Error(t, err)
	assert.ErrorIs(t, err, wrerrors.ErrConflict)

	content, readErr := fs.Read(context.Background(), "p1", "a.txt")
	require.NoError(t, readErr)
	assert.Equal(t, "hi", content)

	// Exactly one node for the path.
	count := 0
	for _, n := range m.Visible() {
		if n.Path == "a.txt" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

// TestCreate_EmptyPath verifies input validation.
func TestCreate_EmptyPath(t *testing.T) {
	m, _, _ := newTestManager(t)

	err := m.Create(context.Background(), "  ", "content")
	require.Error(t, err)
	assert.ErrorIs(t, err, wrerrors.ErrInvalidInput)
}

// TestCreate_StorageFailureLeavesTreeUntouched verifies no node appears
// when the storage write is not acknowledged.
func TestCreate_StorageFailureLeavesTreeUntouched(t *testing.T) {
	m, fs, st := newTestManager(t)
	fs.writeEr["a.txt"] = wrerrors.ErrTransportFailure

	err := m.Create(context.Background(), "a.txt", "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, wrerrors.ErrTransportFailure)

	_, ok := st.TreeNode("p1", "a.txt")
	assert.False(t, ok)
}

// TestDelete_ClearsOpenFileOnlyWhenMatching verifies the open-file rule.
func TestDelete_ClearsOpenFileOnlyWhenMatching(t *testing.T) {
	m, fs, st := newTestManager(t)
	fs.seedFile("a.txt", "a")
	fs.seedFile("b.txt", "b")
	require.NoError(t, m.Reload(context.Background()))

	st.SetOpenFile("b.txt")
	require.NoError(t, m.Delete(context.Background(), "a.txt"))
	assert.Equal(t, "b.txt", st.OpenFile())

	require.NoError(t, m.Delete(context.Background(), "b.txt"))
	assert.Empty(t, st.OpenFile())
}

// TestDelete_UnknownPath verifies the error category.
func TestDelete_UnknownPath(t *testing.T) {
	m, _, _ := newTestManager(t)

	err := m.Delete(context.Background(), "ghost.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, wrerrors.ErrNodeNotFound)
}

// TestDelete_StorageFailureKeepsNode verifies the node survives when the
// storage collaborator does not acknowledge the deletion.
func TestDelete_StorageFailureKeepsNode(t *testing.T) {
	m, fs, st := newTestManager(t)
	fs.seedFile("a.txt", "a")
	require.NoError(t, m.Reload(context.Background()))
	fs.delErr["a.txt"] = wrerrors.ErrTransportFailure

	err := m.Delete(context.Background(), "a.txt")
	require.Error(t, err)

	_, ok := st.TreeNode("p1", "a.txt")
	assert.True(t, ok)
}

// TestRename_MovesContentAndNode verifies the happy path, including the
// open-file reference following the rename.
func TestRename_MovesContentAndNode(t *testing.T) {
	m, fs, st := newTestManager(t)
	fs.seedFile("old.txt", "body")
	require.NoError(t, m.Reload(context.Background()))
	st.SetOpenFile("old.txt")

	require.NoError(t, m.Rename(context.Background(), "old.txt", "new.txt"))

	_, ok := st.TreeNode("p1", "old.txt")
	assert.False(t, ok)
	node, ok := st.TreeNode("p1", "new.txt")
	require.True(t, ok)
	assert.Equal(t, "new.txt", node.Name)

	content, err := fs.Read(context.Background(), "p1", "new.txt")
	require.NoError(t, err)
	assert.Equal(t, "body", content)
	_, err = fs.Read(context.Background(), "p1", "old.txt")
	assert.ErrorIs(t, err, wrerrors.ErrNotFound)

	assert.Equal(t, "new.txt", st.OpenFile())
}

// TestRename_WriteFailureLeavesOriginalUntouched verifies the first
// failure mode: old node present and unmodified, error surfaced.
func TestRename_WriteFailureLeavesOriginalUntouched(t *testing.T) {
	m, fs, st := newTestManager(t)
	fs.seedFile("old.txt", "body")
	require.NoError(t, m.Reload(context.Background()))
	fs.writeEr["new.txt"] = wrerrors.ErrTransportFailure

	err := m.Rename(context.Background(), "old.txt", "new.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, wrerrors.ErrTransportFailure)

	node, ok := st.TreeNode("p1", "old.txt")
	require.True(t, ok)
	assert.Equal(t, "old.txt", node.Path)
	_, ok = st.TreeNode("p1", "new.txt")
	assert.False(t, ok)

	content, readErr := fs.Read(context.Background(), "p1", "old.txt")
	require.NoError(t, readErr)
	assert.Equal(t, "body", content)
}

// TestRename_DeleteFailureKeepsBothPaths verifies the duplicate-until-
// resolved policy when the delete step fails after a successful write.
func TestRename_DeleteFailureKeepsBothPaths(t *testing.T) {
	m, fs, st := newTestManager(t)
	fs.seedFile("old.txt", "body")
	require.NoError(t, m.Reload(context.Background()))
	fs.delErr["old.txt"] = wrerrors.ErrTransportFailure

	err := m.Rename(context.Background(), "old.txt", "new.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, wrerrors.ErrRenameIncomplete)

	_, oldOK := st.TreeNode("p1", "old.txt")
	_, newOK := st.TreeNode("p1", "new.txt")
	assert.True(t, oldOK, "old path must survive a failed delete")
	assert.True(t, newOK, "written path must be reflected")
}

// TestRename_TargetConflict verifies renaming onto an existing path fails.
func TestRename_TargetConflict(t *testing.T) {
	m, fs, _ := newTestManager(t)
	fs.seedFile("a.txt", "a")
	fs.seedFile("b.txt", "b")
	require.NoError(t, m.Reload(context.Background()))

	err := m.Rename(context.Background(), "a.txt", "b.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, wrerrors.ErrConflict)
}

// TestToggle_ControlsVisibility verifies children render only while the
// parent directory is expanded, and that toggling never touches storage.
func TestToggle_ControlsVisibility(t *testing.T) {
	m, fs, _ := newTestManager(t)
	fs.seedDir("src")
	fs.seedFile("src/main.py", "x")
	require.NoError(t, m.Reload(context.Background()))

	paths := func() []string {
		var out []string
		for _, n := range m.Visible() {
			out = append(out, n.Path)
		}
		return out
	}

	assert.Equal(t, []string{"src"}, paths())

	m.Toggle("src")
	assert.Equal(t, []string{"src", "src/main.py"}, paths())

	m.Toggle("src")
	assert.Equal(t, []string{"src"}, paths())

	// Unknown path: no failure mode.
	assert.NotPanics(t, func() { m.Toggle("ghost") })
}
