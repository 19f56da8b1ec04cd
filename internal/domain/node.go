package domain

import (
	"time"

	"github.com/waverider/waverider/internal/constants"
)

// FileNode represents a single entry in a project's file tree.
// Paths are unique within a project; a directory's children all have paths
// prefixed by the directory's path. Nodes are created, renamed, and deleted
// only through the file tree manager, never mutated directly.
type FileNode struct {
	// Path is the project-relative path, unique within the project.
	Path string `json:"path"`

	// Name is the final path element, kept separately for rendering.
	Name string `json:"name"`

	// Kind distinguishes files from directories.
	Kind constants.NodeKind `json:"kind"`

	// Size is the file size in bytes, when the storage collaborator
	// reported one.
	Size int64 `json:"size,omitempty"`

	// Modified is the last-modified timestamp, when reported.
	Modified *time.Time `json:"modified,omitempty"`

	// Children holds child paths for directories, in the exact order the
	// storage collaborator returned them. Never re-sorted.
	Children []string `json:"children,omitempty"`

	// Expanded is the UI-only expansion flag. It is not persisted to the
	// backing store and has no failure mode.
	Expanded bool `json:"-"`
}

// IsDir reports whether the node is a directory.
func (n *FileNode) IsDir() bool {
	return n.Kind == constants.NodeKindDirectory
}

// FileListing is one entry of the flat, ordered list returned by the
// storage collaborator's list operation. The file tree manager materializes
// these into FileNodes.
type FileListing struct {
	// Path is the project-relative path.
	Path string `json:"path"`

	// Name is the final path element.
	Name string `json:"name"`

	// Kind distinguishes files from directories.
	Kind constants.NodeKind `json:"kind"`

	// Size is the file size in bytes, if known.
	Size int64 `json:"size,omitempty"`

	// Modified is the last-modified timestamp, if known.
	Modified *time.Time `json:"modified,omitempty"`
}
