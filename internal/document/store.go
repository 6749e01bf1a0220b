package document

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore keeps each document as one JSON file named <id>.json under a
// single directory. It is safe for one writer per document id; callers
// serialize concurrent saves.
type FileStore struct {
	dir    string
	logger *log.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the directory if needed. A nil logger discards.
func NewFileStore(dir string, logger *log.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create document directory: %w", err)
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[documents] ", log.LstdFlags)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes the document atomically: temp file in the same directory,
// then rename over the target.
func (s *FileStore) Save(doc *Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document has no id")
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", doc.ID, err)
	}

	target := s.path(doc.ID)
	tmp, err := os.CreateTemp(s.dir, doc.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write document %s: %w", doc.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace document %s: %w", doc.ID, err)
	}
	return nil
}

// Load returns the document, or nil when it does not exist.
func (s *FileStore) Load(id string) (*Document, error) {
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", id, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document %s: %w", id, err)
	}
	return &doc, nil
}

// ListByProject scans the directory and returns the project's documents
// ordered by position. Unreadable files are skipped with a log line so
// one corrupt document never hides the rest.
func (s *FileStore) ListByProject(projectID string) ([]*Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read document directory: %w", err)
	}

	var docs []*Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			s.logger.Printf("skipping unreadable document file %s: %v", entry.Name(), err)
			continue
		}
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			s.logger.Printf("skipping corrupt document file %s: %v", entry.Name(), err)
			continue
		}
		if doc.ProjectID == projectID {
			docs = append(docs, &doc)
		}
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Position != docs[j].Position {
			return docs[i].Position < docs[j].Position
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs, nil
}

// Delete removes the document file. Returns false when it did not exist.
func (s *FileStore) Delete(id string) (bool, error) {
	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete document %s: %w", id, err)
	}
	return true, nil
}
