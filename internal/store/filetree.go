package store

import (
	"github.com/waverider/waverider/internal/domain"
)

// projectTree is the arena of file tree nodes for one project, indexed by
// path. Parent/child relations are stored as path references rather than
// pointers, preserving O(1) lookup without ownership cycles.
type projectTree struct {
	nodes map[string]*domain.FileNode

	// roots holds top-level paths in the exact order the storage
	// collaborator returned them.
	roots []string
}

// ensureTree returns the tree for a project, creating it if needed.
// Caller must hold the write lock.
func (s *Store) ensureTree(projectID string) *projectTree {
	if s.trees == nil {
		s.trees = make(map[string]*projectTree)
	}
	tree, ok := s.trees[projectID]
	if !ok {
		tree = &projectTree{nodes: make(map[string]*domain.FileNode)}
		s.trees[projectID] = tree
	}
	return tree
}

// ReplaceTree swaps in a freshly materialized tree for a project. The nodes
// slice carries sibling order implicitly through each directory's Children
// and the roots slice; the store takes ownership of copies.
func (s *Store) ReplaceTree(projectID string, roots []string, nodes []domain.FileNode) {
	s.mu.Lock()
	tree := s.ensureTree(projectID)
	tree.nodes = make(map[string]*domain.FileNode, len(nodes))
	for i := range nodes {
		n := nodes[i]
		n.Children = append([]string(nil), nodes[i].Children...)
		tree.nodes[n.Path] = &n
	}
	tree.roots = append([]string(nil), roots...)
	s.mu.Unlock()

	s.notify(KindFiles)
}

// TreeNode returns a copy of the node at path within a project's tree.
func (s *Store) TreeNode(projectID, path string) (domain.FileNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tree, ok := s.trees[projectID]
	if !ok {
		return domain.FileNode{}, false
	}
	n, ok := tree.nodes[path]
	if !ok {
		return domain.FileNode{}, false
	}
	cp := *n
	cp.Children = append([]string(nil), n.Children...)
	return cp, true
}

// TreeRoots returns the top-level paths of a project's tree in storage order.
func (s *Store) TreeRoots(projectID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tree, ok := s.trees[projectID]
	if !ok {
		return nil
	}
	return append([]string(nil), tree.roots...)
}

// InsertNode adds a node under the given parent path, appended last among
// its siblings. An empty parent inserts a root node. Existing nodes are
// replaced in place, preserving sibling order.
func (s *Store) InsertNode(projectID, parent string, node domain.FileNode) {
	s.mu.Lock()
	tree := s.ensureTree(projectID)

	_, existed := tree.nodes[node.Path]
	cp := node
	cp.Children = append([]string(nil), node.Children...)
	tree.nodes[node.Path] = &cp

	if !existed {
		if parent == "" {
			tree.roots = append(tree.roots, node.Path)
		} else if p, ok := tree.nodes[parent]; ok {
			p.Children = append(p.Children, node.Path)
		} else {
			// Parent not materialized yet; treat as root rather than drop.
			tree.roots = append(tree.roots, node.Path)
		}
	}
	s.mu.Unlock()

	s.notify(KindFiles)
}

// RemoveNode deletes a node and all its descendants from a project's tree,
// detaching it from its parent's child list.
func (s *Store) RemoveNode(projectID, path string) {
	s.mu.Lock()
	tree, ok := s.trees[projectID]
	if !ok {
		s.mu.Unlock()
		return
	}
	removeSubtree(tree, path)
	tree.roots = removePath(tree.roots, path)
	for _, n := range tree.nodes {
		n.Children = removePath(n.Children, path)
	}
	s.mu.Unlock()

	s.notify(KindFiles)
}

// removeSubtree deletes path and every descendant from the arena.
func removeSubtree(tree *projectTree, path string) {
	n, ok := tree.nodes[path]
	if !ok {
		return
	}
	for _, child := range n.Children {
		removeSubtree(tree, child)
	}
	delete(tree.nodes, path)
}

// removePath returns paths with the first occurrence of path removed,
// preserving order.
func removePath(paths []string, path string) []string {
	for i, p := range paths {
		if p == path {
			return append(paths[:i:i], paths[i+1:]...)
		}
	}
	return paths
}

// ToggleNode flips the UI-only expansion flag of a directory node.
// Unknown paths and file nodes are ignored; toggling has no failure mode.
func (s *Store) ToggleNode(projectID, path string) {
	s.mu.Lock()
	tree, ok := s.trees[projectID]
	if !ok {
		s.mu.Unlock()
		return
	}
	n, ok := tree.nodes[path]
	if !ok || !n.IsDir() {
		s.mu.Unlock()
		return
	}
	n.Expanded = !n.Expanded
	s.mu.Unlock()

	s.notify(KindFiles)
}

// VisibleTree returns the nodes of a project's tree in render order:
// roots in storage order, with a directory's children included only while
// its expansion flag is set.
func (s *Store) VisibleTree(projectID string) []domain.FileNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tree, ok := s.trees[projectID]
	if !ok {
		return nil
	}

	var out []domain.FileNode
	var walk func(paths []string)
	walk = func(paths []string) {
		for _, p := range paths {
			n, ok := tree.nodes[p]
			if !ok {
				continue
			}
			cp := *n
			cp.Children = append([]string(nil), n.Children...)
			out = append(out, cp)
			if n.IsDir() && n.Expanded {
				walk(n.Children)
			}
		}
	}
	walk(tree.roots)
	return out
}
