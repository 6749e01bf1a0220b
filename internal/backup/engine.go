// Package backup provides point-in-time archival of a project and its
// documents into zip archives, and per-document version snapshots.
package backup

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/quillworks/quill/internal/document"
	"github.com/quillworks/quill/internal/events"
	"github.com/quillworks/quill/internal/project"
	"github.com/quillworks/quill/internal/storage"
)

// Type tags a backup with how it was triggered.
type Type string

const (
	TypeManual    Type = "manual"
	TypeAuto      Type = "auto"
	TypeScheduled Type = "scheduled"
)

// Info describes one backup archive. It is reconstructed from the
// archive manifests on listing, never persisted separately.
type Info struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Path        string    `json:"path"`
	CreatedAt   time.Time `json:"created_at"`
	SizeBytes   int64     `json:"size_bytes"`
	Description string    `json:"description"`
	Type        Type      `json:"backup_type"`
}

// manifest is the project.json entry inside each archive.
type manifest struct {
	Project   json.RawMessage     `json:"project"`
	Documents []document.Document `json:"documents"`
	Backup    manifestInfo        `json:"backup_info"`
}

type manifestInfo struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	CreatedAt   time.Time `json:"created_at"`
	Description string    `json:"description"`
	Type        Type      `json:"backup_type"`
}

// Config holds the engine's dependencies and policy knobs.
type Config struct {
	// Dir is where archives are written.
	Dir string

	// MaxBackups is the per-project retention cap. Zero means the
	// default of 50.
	MaxBackups int

	// AutoInterval is the cadence for automatic backups. Zero means
	// the default of 30 minutes.
	AutoInterval time.Duration

	Logger    *log.Logger
	Publisher events.Publisher
}

// DefaultConfig returns the standard policy for a backup directory.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:          dir,
		MaxBackups:   50,
		AutoInterval: 30 * time.Minute,
		Logger:       log.New(os.Stderr, "[backup] ", log.LstdFlags),
	}
}

// Engine creates, lists, restores, and prunes project backup archives.
type Engine struct {
	dir          string
	maxBackups   int
	autoInterval time.Duration
	logger       *log.Logger
	publisher    events.Publisher

	repo storage.Repository
	docs document.Store

	// writeEntry adds one named file to an archive. Swapped out in
	// tests to simulate per-entry failures.
	writeEntry func(zw *zip.Writer, name string, data []byte) error
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// NewEngine creates the backup directory if needed.
func NewEngine(cfg Config, repo storage.Repository, docs document.Store) (*Engine, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("backup directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 50
	}
	if cfg.AutoInterval <= 0 {
		cfg.AutoInterval = 30 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[backup] ", log.LstdFlags)
	}
	return &Engine{
		dir:          cfg.Dir,
		maxBackups:   cfg.MaxBackups,
		autoInterval: cfg.AutoInterval,
		logger:       cfg.Logger,
		publisher:    cfg.Publisher,
		repo:         repo,
		docs:         docs,
		writeEntry:   writeZipEntry,
	}, nil
}

// backupID builds the sortable archive identifier. Millisecond precision
// keeps ids collision-free for a single-user session.
func backupID(projectID string, at time.Time) string {
	return projectID + "_" + at.Format("20060102_150405.000")
}

func (e *Engine) archivePath(id string) string {
	return filepath.Join(e.dir, id+".zip")
}

// Create archives the project and all its documents. On any failure the
// partial archive is removed; no orphaned half-written archives remain.
func (e *Engine) Create(projectID, description string, typ Type) (*Info, error) {
	p, err := e.repo.Load(projectID)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}
	if p == nil {
		return nil, fmt.Errorf("project %s not found", projectID)
	}

	docs, err := e.docs.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("list documents for %s: %w", projectID, err)
	}

	now := time.Now()
	id := backupID(projectID, now)
	path := e.archivePath(id)

	if err := e.writeArchive(path, p, docs, manifestInfo{
		ID:          id,
		ProjectID:   projectID,
		CreatedAt:   now,
		Description: description,
		Type:        typ,
	}); err != nil {
		os.Remove(path)
		return nil, err
	}

	fi, err := os.Stat(path)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	e.evict(projectID)

	events.Publish(e.publisher, e.logger, events.Event{
		Kind: events.BackupCreated, ProjectID: projectID, BackupID: id,
	})
	return &Info{
		ID:          id,
		ProjectID:   projectID,
		Path:        path,
		CreatedAt:   now,
		SizeBytes:   fi.Size(),
		Description: description,
		Type:        typ,
	}, nil
}

func (e *Engine) writeArchive(path string, p *project.Project, docs []*document.Document, mi manifestInfo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	zw := zip.NewWriter(f)

	fail := func(err error) error {
		zw.Close()
		f.Close()
		return err
	}

	projData, err := json.Marshal(p)
	if err != nil {
		return fail(fmt.Errorf("marshal project: %w", err))
	}
	docList := make([]document.Document, len(docs))
	for i, d := range docs {
		docList[i] = *d
	}
	manifestData, err := json.MarshalIndent(manifest{
		Project:   projData,
		Documents: docList,
		Backup:    mi,
	}, "", "  ")
	if err != nil {
		return fail(fmt.Errorf("marshal manifest: %w", err))
	}

	if err := e.writeEntry(zw, "project.json", manifestData); err != nil {
		return fail(fmt.Errorf("write manifest entry: %w", err))
	}

	for _, d := range docs {
		if d.Content == "" {
			continue
		}
		// One bad document must not abort the whole backup; a restore
		// treats its missing content entry as empty.
		if err := e.writeEntry(zw, "documents/"+d.ID+".txt", []byte(d.Content)); err != nil {
			e.logger.Printf("skipping document %s in backup %s: %v", d.ID, mi.ID, err)
		}
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finish archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

// List enumerates archives, optionally filtered to one project, sorted
// by creation time descending. Archives that fail to open or parse are
// skipped with a log line.
func (e *Engine) List(projectID string) ([]Info, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".zip") {
			continue
		}
		if projectID != "" && !strings.HasPrefix(name, projectID+"_") {
			continue
		}
		info, err := e.readInfo(filepath.Join(e.dir, name))
		if err != nil {
			e.logger.Printf("skipping unreadable backup %s: %v", name, err)
			continue
		}
		if projectID != "" && info.ProjectID != projectID {
			continue
		}
		backups = append(backups, *info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// readInfo opens one archive and rebuilds its Info from the manifest.
func (e *Engine) readInfo(path string) (*Info, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	m, err := readManifest(&zr.Reader)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &Info{
		ID:          m.Backup.ID,
		ProjectID:   m.Backup.ProjectID,
		Path:        path,
		CreatedAt:   m.Backup.CreatedAt,
		SizeBytes:   fi.Size(),
		Description: m.Backup.Description,
		Type:        m.Backup.Type,
	}, nil
}

func readManifest(zr *zip.Reader) (*manifest, error) {
	for _, zf := range zr.File {
		if zf.Name != "project.json" {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("open manifest: %w", err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read manifest: %w", err)
		}
		var m manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse manifest: %w", err)
		}
		return &m, nil
	}
	return nil, fmt.Errorf("archive has no project.json manifest")
}

// Restore rebuilds the project and its documents from the archive at
// path. All entities are staged in memory before anything is written, so
// a malformed archive never commits a partial restore. Writes after that
// point are best-effort; a document whose content entry is missing from
// the archive restores with empty content.
func (e *Engine) Restore(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open backup archive: %w", err)
	}
	defer zr.Close()

	m, err := readManifest(&zr.Reader)
	if err != nil {
		return "", err
	}

	var p project.Project
	if err := json.Unmarshal(m.Project, &p); err != nil {
		return "", fmt.Errorf("parse archived project: %w", err)
	}

	// Stage document contents before writing anything.
	contents := map[string]string{}
	for _, zf := range zr.File {
		if !strings.HasPrefix(zf.Name, "documents/") || !strings.HasSuffix(zf.Name, ".txt") {
			continue
		}
		docID := strings.TrimSuffix(strings.TrimPrefix(zf.Name, "documents/"), ".txt")
		rc, err := zf.Open()
		if err != nil {
			return "", fmt.Errorf("open archived document %s: %w", docID, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read archived document %s: %w", docID, err)
		}
		contents[docID] = string(data)
	}

	if err := e.repo.Save(&p); err != nil {
		return "", fmt.Errorf("restore project %s: %w", p.ID, err)
	}
	for i := range m.Documents {
		d := m.Documents[i]
		// Absent content entry means the document was empty at backup
		// time.
		d.Content = contents[d.ID]
		if err := e.docs.Save(&d); err != nil {
			return "", fmt.Errorf("restore document %s: %w", d.ID, err)
		}
	}

	events.Publish(e.publisher, e.logger, events.Event{
		Kind: events.BackupRestored, ProjectID: p.ID,
	})
	return p.ID, nil
}

// Delete removes the archive. Returns false when it did not exist.
func (e *Engine) Delete(id string) (bool, error) {
	err := os.Remove(e.archivePath(id))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete backup %s: %w", id, err)
	}
	return true, nil
}

// Prune deletes the project's backups created before the cutoff.
// Returns the deleted ids.
func (e *Engine) Prune(projectID string, before time.Time) ([]string, error) {
	backups, err := e.List(projectID)
	if err != nil {
		return nil, err
	}
	var deleted []string
	for _, b := range backups {
		if b.CreatedAt.Before(before) {
			if _, err := e.Delete(b.ID); err != nil {
				return deleted, err
			}
			deleted = append(deleted, b.ID)
		}
	}
	return deleted, nil
}

// evict enforces the per-project retention cap, removing the oldest
// archives beyond it. Eviction failures are logged, never fatal.
func (e *Engine) evict(projectID string) {
	backups, err := e.List(projectID)
	if err != nil {
		e.logger.Printf("retention check for %s failed: %v", projectID, err)
		return
	}
	// List is newest-first; everything past the cap goes.
	for _, b := range backups[min(len(backups), e.maxBackups):] {
		if _, err := e.Delete(b.ID); err != nil {
			e.logger.Printf("evicting backup %s failed: %v", b.ID, err)
		}
	}
}

// AutoDue reports whether an automatic backup is due for the project: no
// automatic backup exists yet, or the newest one is older than the
// configured interval.
func (e *Engine) AutoDue(projectID string) (bool, error) {
	backups, err := e.List(projectID)
	if err != nil {
		return false, err
	}
	for _, b := range backups {
		if b.Type == TypeAuto {
			return time.Since(b.CreatedAt) >= e.autoInterval, nil
		}
	}
	return true, nil
}
