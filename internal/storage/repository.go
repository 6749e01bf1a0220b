// Package storage defines the persistence contract for writing projects.
//
// This package decouples the rest of the system from storage mechanics.
// The canonical implementation is the JSON-file repository in
// internal/storage/file; tests and future backends implement the same
// interface.
//
// # Conventions
//
//   - Load operations return (nil, nil) when the entity does not exist.
//     An error means the storage layer itself failed, not a miss.
//   - Query operations load the full entity set and filter in memory.
//     Project counts are desktop-scale, not server-scale.
//   - All operations may be called from any goroutine, but at most one
//     writer per project id should be active at a time; the repository
//     does not serialize concurrent saves of the same project.
package storage

import (
	"time"

	"github.com/quillworks/quill/internal/project"
)

// IndexEntry is the denormalized per-project record kept in the central
// index. It is a cache: rebuildable, corrected whenever it disagrees
// with an authoritative project file.
type IndexEntry struct {
	Title     string         `json:"title"`
	Desc      string         `json:"description,omitempty"`
	Type      project.Type   `json:"project_type"`
	Status    project.Status `json:"status"`
	Path      string         `json:"path,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Stats summarizes one project for display without exposing the full
// statistics component.
type Stats struct {
	ProjectID   string         `json:"project_id"`
	Name        string         `json:"name"`
	Status      project.Status `json:"status"`
	TotalWords  int            `json:"total_words"`
	Progress    float64        `json:"progress_percentage"`
	Documents   int            `json:"total_documents"`
	Sessions    int            `json:"session_count"`
	LastUpdated time.Time      `json:"last_updated"`
}

// Repository is the capability interface for project persistence.
type Repository interface {
	// ===================
	// Core persistence
	// ===================

	// Save persists the project durably. It either fully succeeds or
	// leaves the previous on-disk state intact.
	Save(p *project.Project) error

	// Load returns the project by id, or nil when not found.
	Load(id string) (*project.Project, error)

	// LoadByPath reads a project from an arbitrary directory holding a
	// project.json, registering it in the index as a side effect.
	LoadByPath(path string) (*project.Project, error)

	// Delete removes the project's managed files and index entries.
	// Returns false when the project did not exist.
	Delete(id string) (bool, error)

	// Exists reports whether the project can be loaded.
	Exists(id string) (bool, error)

	// ===================
	// Queries
	// ===================

	ListAll() ([]*project.Project, error)
	ListByStatus(status project.Status) ([]*project.Project, error)
	ListByType(typ project.Type) ([]*project.Project, error)

	// Search matches the query case-insensitively against name,
	// description, and tags.
	Search(query string) ([]*project.Project, error)

	// Recent returns up to limit projects sorted by last-opened
	// descending. Projects never opened sort last.
	Recent(limit int) ([]*project.Project, error)

	// UpdateLastOpened stamps the project's open time and saves it.
	UpdateLastOpened(id string) (bool, error)

	// ===================
	// Maintenance
	// ===================

	// CreateBackup copies the project's directory tree to destPath.
	// This is the coarse directory copy, not the archive engine.
	CreateBackup(id, destPath string) (bool, error)

	// RestoreBackup replaces the project's directory with the tree at
	// srcPath, removing any existing directory first.
	RestoreBackup(id, srcPath string) (bool, error)

	// Export writes the project to a single file at path in the given
	// format ("json" is always supported).
	Export(id, path, format string) (bool, error)

	// Import reads a previously exported file and persists the project.
	Import(path, format string) (*project.Project, error)

	// Statistics returns the display summary for one project, or nil
	// when the project does not exist.
	Statistics(id string) (*Stats, error)

	// ValidateStructure checks that the directory at path has the
	// expected project layout, returning one message per problem.
	ValidateStructure(path string) ([]string, error)

	// Migrate upgrades a stored project to the target format version.
	// Returns false when the project does not exist.
	Migrate(id, targetVersion string) (bool, error)

	// ===================
	// Templates
	// ===================

	// SaveAsTemplate captures the project's structure as a reusable
	// template and returns the template id.
	SaveAsTemplate(id, name, description string) (string, error)

	// CreateFromTemplate instantiates a new project from a template,
	// substituting the given title and author.
	CreateFromTemplate(templateID, title, author string) (*project.Project, error)

	ListTemplates() ([]TemplateInfo, error)

	// GetTemplate returns one template's descriptor, nil when missing.
	GetTemplate(templateID string) (*TemplateInfo, error)

	DeleteTemplate(templateID string) (bool, error)
}

// TemplateInfo describes one stored template.
type TemplateInfo struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Type        project.Type `json:"project_type"`
	CreatedAt   time.Time    `json:"created_at"`
}
