package file

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/quillworks/quill/internal/project"
	"github.com/quillworks/quill/internal/storage"
)

// indexFileName is the central id -> entry map kept in the managed
// projects directory.
const indexFileName = "index.json"

// loadIndex reads the central index. A missing or corrupt index file
// yields an empty map: the index is a cache and must never block loads.
func (r *Repository) loadIndex() map[string]storage.IndexEntry {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Printf("index unreadable, rebuilding from scratch: %v", err)
		}
		return map[string]storage.IndexEntry{}
	}
	var idx map[string]storage.IndexEntry
	if err := json.Unmarshal(data, &idx); err != nil {
		r.logger.Printf("index corrupt, rebuilding from scratch: %v", err)
		return map[string]storage.IndexEntry{}
	}
	if idx == nil {
		idx = map[string]storage.IndexEntry{}
	}
	return idx
}

// saveIndex writes the central index atomically.
func (r *Repository) saveIndex(idx map[string]storage.IndexEntry) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	if err := writeFileAtomic(r.indexPath(), data); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// indexEntryFor builds the denormalized index record for a project.
func indexEntryFor(p *project.Project) storage.IndexEntry {
	return storage.IndexEntry{
		Title:     p.Name,
		Desc:      p.Metadata.Description,
		Type:      p.Type,
		Status:    p.Status,
		Path:      p.RootPath,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// updateIndex rewrites one entry in the central index.
func (r *Repository) updateIndex(id string, entry storage.IndexEntry) error {
	r.indexMu.Lock()
	defer r.indexMu.Unlock()
	idx := r.loadIndex()
	idx[id] = entry
	return r.saveIndex(idx)
}

// removeFromIndex drops one entry from the central index. Reports
// whether the entry was present.
func (r *Repository) removeFromIndex(id string) (bool, error) {
	r.indexMu.Lock()
	defer r.indexMu.Unlock()
	idx := r.loadIndex()
	if _, ok := idx[id]; !ok {
		return false, nil
	}
	delete(idx, id)
	return true, r.saveIndex(idx)
}

// repairIndex refreshes the entry for a project whose authoritative file
// was just loaded successfully. The index is never trusted over the
// file; disagreement is resolved in the file's favor.
func (r *Repository) repairIndex(p *project.Project) {
	if err := r.updateIndex(p.ID, indexEntryFor(p)); err != nil {
		r.logger.Printf("index repair for %s failed: %v", p.ID, err)
	}
}

// indexRecord is the lightweight per-project file written next to the
// central index when a project lives at a custom root. It keeps the
// project discoverable if the central index is lost.
type indexRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Path      string    `json:"path"`
	UpdatedAt time.Time `json:"updated_at"`
}

// writeIndexRecord writes the <id>_index.json record for a custom-path
// project.
func (r *Repository) writeIndexRecord(p *project.Project) error {
	rec := indexRecord{ID: p.ID, Title: p.Name, Path: p.RootPath, UpdatedAt: p.UpdatedAt}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index record: %w", err)
	}
	if err := writeFileAtomic(r.indexRecordPath(p.ID), data); err != nil {
		return fmt.Errorf("write index record: %w", err)
	}
	return nil
}

// readIndexRecord reads the <id>_index.json record, or nil when absent
// or unreadable.
func (r *Repository) readIndexRecord(id string) *indexRecord {
	data, err := os.ReadFile(r.indexRecordPath(id))
	if err != nil {
		return nil
	}
	var rec indexRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.Printf("skipping corrupt index record for %s: %v", id, err)
		return nil
	}
	return &rec
}
