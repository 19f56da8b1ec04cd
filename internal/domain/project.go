// Package domain provides shared domain types for the WaveRider client core.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case to match the backend wire format.
package domain

import "time"

// Project represents a workspace the user has opened or imported.
// Projects own file tree nodes and agent tasks; they are created on first
// use or explicit import and never implicitly deleted.
//
// Example JSON representation:
//
//	{
//	    "id": "e5f21a3a-7da2-45e1-ad13-bf467e0382bf",
//	    "name": "wave-demo",
//	    "description": "Demo project",
//	    "root_path": "/projects/wave-demo",
//	    "created_at": "2026-08-01T10:00:00Z",
//	    "updated_at": "2026-08-01T10:05:00Z"
//	}
type Project struct {
	// ID is the unique project identifier (UUID issued at creation).
	ID string `json:"id"`

	// Name is the display name shown in the project picker.
	Name string `json:"name"`

	// Description is an optional human-readable summary.
	Description string `json:"description,omitempty"`

	// RootPath is the storage-side root directory of the project.
	RootPath string `json:"root_path,omitempty"`

	// CreatedAt is when the project was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the project was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}
