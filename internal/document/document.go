// Package document provides the minimal document model the persistence
// and backup layers operate on, plus a JSON-file backed store.
package document

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document is a single piece of writing inside a project. The backup
// engine archives its content; the version engine snapshots it.
type Document struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an empty document attached to a project.
func New(projectID, title string) *Document {
	now := time.Now()
	return &Document{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetContent replaces the document body and bumps the updated time.
func (d *Document) SetContent(content string) {
	d.Content = content
	d.UpdatedAt = time.Now()
}

// WordCount counts whitespace-separated words in the content.
func (d *Document) WordCount() int {
	return len(strings.Fields(d.Content))
}

// CharacterCount counts runes in the content.
func (d *Document) CharacterCount() int {
	return len([]rune(d.Content))
}

// Store is the persistence contract for documents. Load returns nil with
// no error when the document does not exist.
type Store interface {
	ListByProject(projectID string) ([]*Document, error)
	Load(id string) (*Document, error)
	Save(doc *Document) error
	Delete(id string) (bool, error)
}
