package backup

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/quillworks/quill/internal/events"
)

// VersionInfo is one full-content snapshot of a document. Versions are
// complete copies, not diffs.
type VersionInfo struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"document_id"`
	Number      int       `json:"version_number"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
}

// Versions manages per-document snapshot files under one directory.
type Versions struct {
	dir         string
	maxVersions int
	logger      *log.Logger
	publisher   events.Publisher
}

// NewVersions creates the version directory if needed. maxVersions <= 0
// means the default cap of 20. The publisher may be nil.
func NewVersions(dir string, maxVersions int, logger *log.Logger, publisher events.Publisher) (*Versions, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create versions directory: %w", err)
	}
	if maxVersions <= 0 {
		maxVersions = 20
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[versions] ", log.LstdFlags)
	}
	return &Versions{dir: dir, maxVersions: maxVersions, logger: logger, publisher: publisher}, nil
}

func (v *Versions) versionPath(info VersionInfo) string {
	name := fmt.Sprintf("%s_v%d_%s.json", info.DocumentID, info.Number, info.CreatedAt.Format("20060102_150405.000"))
	return filepath.Join(v.dir, name)
}

// Create writes a new snapshot for the document. The version number is
// one past the highest existing number, so numbers are never reused
// after eviction. Retention eviction runs after each creation.
func (v *Versions) Create(documentID, content, description, author string) (*VersionInfo, error) {
	existing, err := v.List(documentID)
	if err != nil {
		return nil, err
	}
	next := 1
	if len(existing) > 0 {
		// List is number-descending.
		next = existing[0].Number + 1
	}

	now := time.Now()
	info := VersionInfo{
		ID:          fmt.Sprintf("%s_v%d", documentID, next),
		DocumentID:  documentID,
		Number:      next,
		Content:     content,
		CreatedAt:   now,
		Description: description,
		Author:      author,
	}

	data, err := json.MarshalIndent(&info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal version: %w", err)
	}
	if err := os.WriteFile(v.versionPath(info), data, 0o644); err != nil {
		return nil, fmt.Errorf("write version file: %w", err)
	}

	v.evict(documentID)
	events.Publish(v.publisher, v.logger, events.Event{
		Kind: events.VersionCreated, DocumentID: documentID, Detail: info.ID,
	})
	return &info, nil
}

// List returns the document's versions sorted by number descending.
// Corrupt version files are skipped with a log line.
func (v *Versions) List(documentID string) ([]VersionInfo, error) {
	entries, err := os.ReadDir(v.dir)
	if err != nil {
		return nil, fmt.Errorf("read versions directory: %w", err)
	}

	var versions []VersionInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, documentID+"_v") || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(v.dir, name))
		if err != nil {
			v.logger.Printf("skipping unreadable version file %s: %v", name, err)
			continue
		}
		var info VersionInfo
		if err := json.Unmarshal(data, &info); err != nil {
			v.logger.Printf("skipping corrupt version file %s: %v", name, err)
			continue
		}
		if info.DocumentID != documentID {
			continue
		}
		versions = append(versions, info)
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Number > versions[j].Number
	})
	return versions, nil
}

// Restore returns the stored content of a version verbatim. Writing it
// back into the live document is the caller's job; this keeps the
// engine a pure content source.
func (v *Versions) Restore(versionID string) (string, error) {
	// The version id encodes the document id: <doc>_v<N>.
	i := strings.LastIndex(versionID, "_v")
	if i < 0 {
		return "", fmt.Errorf("malformed version id %q", versionID)
	}
	documentID := versionID[:i]

	versions, err := v.List(documentID)
	if err != nil {
		return "", err
	}
	for _, info := range versions {
		if info.ID == versionID {
			events.Publish(v.publisher, v.logger, events.Event{
				Kind: events.VersionRestored, DocumentID: documentID, Detail: versionID,
			})
			return info.Content, nil
		}
	}
	return "", fmt.Errorf("version %s not found", versionID)
}

// evict removes the oldest versions past the per-document cap, oldest
// first by version number. Failures are logged, never fatal.
func (v *Versions) evict(documentID string) {
	versions, err := v.List(documentID)
	if err != nil {
		v.logger.Printf("version retention check for %s failed: %v", documentID, err)
		return
	}
	for _, info := range versions[min(len(versions), v.maxVersions):] {
		if err := os.Remove(v.versionPath(info)); err != nil && !os.IsNotExist(err) {
			v.logger.Printf("evicting version %s failed: %v", info.ID, err)
		}
	}
}
