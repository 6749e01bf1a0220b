// Package file implements the project repository on top of plain JSON
// files: one authoritative file per project, a denormalized central
// index for discovery, and an fsnotify watcher that invalidates the
// decode cache when a custom-root project changes on disk.
package file

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/quillworks/quill/internal/events"
	"github.com/quillworks/quill/internal/project"
	"github.com/quillworks/quill/internal/storage"
)

// Config holds the repository's dependencies and directories.
type Config struct {
	// DataDir is the managed storage root. Projects live under
	// DataDir/projects, templates under DataDir/templates.
	DataDir string

	// Logger receives operational messages. Nil gets a default.
	Logger *log.Logger

	// Publisher receives domain events, best-effort. May be nil.
	Publisher events.Publisher

	// Watch enables the fsnotify cache-invalidation watcher for
	// custom-root projects.
	Watch bool
}

// DefaultConfig returns a config with standard settings.
func DefaultConfig(dataDir string) Config {
	return Config{
		DataDir: dataDir,
		Logger:  log.New(os.Stderr, "[storage] ", log.LstdFlags),
		Watch:   true,
	}
}

// Repository is the JSON-file implementation of storage.Repository.
type Repository struct {
	projectsDir  string
	templatesDir string
	logger       *log.Logger
	publisher    events.Publisher

	indexMu sync.Mutex

	cache   *projectCache
	watcher *Watcher
}

var _ storage.Repository = (*Repository)(nil)

// New creates the managed directories and, when configured, starts the
// cache-invalidation watcher. Call Close when done.
func New(cfg Config) (*Repository, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[storage] ", log.LstdFlags)
	}

	r := &Repository{
		projectsDir:  filepath.Join(cfg.DataDir, "projects"),
		templatesDir: filepath.Join(cfg.DataDir, "templates"),
		logger:       cfg.Logger,
		publisher:    cfg.Publisher,
		cache:        newProjectCache(),
	}
	for _, dir := range []string{r.projectsDir, r.templatesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory %s: %w", dir, err)
		}
	}

	if cfg.Watch {
		w, err := NewWatcher(r.cache.Invalidate, cfg.Logger)
		if err != nil {
			// The repository works without the watcher; loads just
			// skip the cache shortcut less often.
			cfg.Logger.Printf("cache watcher unavailable: %v", err)
		} else {
			r.watcher = w
		}
	}
	return r, nil
}

// Close stops the watcher.
func (r *Repository) Close() error {
	if r.watcher != nil {
		return r.watcher.Stop()
	}
	return nil
}

func (r *Repository) indexPath() string {
	return filepath.Join(r.projectsDir, indexFileName)
}

func (r *Repository) managedPath(id string) string {
	return filepath.Join(r.projectsDir, id+".json")
}

func (r *Repository) indexRecordPath(id string) string {
	return filepath.Join(r.projectsDir, id+"_index.json")
}

// Save persists the project. A project with a custom root gets its
// authoritative file there plus a lightweight index record in the
// managed directory; everything else lives in the managed directory
// keyed by id. The managed-side writes are the recovery path, so a
// failed custom-root write is logged rather than failing the save.
func (r *Repository) Save(p *project.Project) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("project has no id")
	}
	p.Touch()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project %s: %w", p.ID, err)
	}

	if p.RootPath != "" {
		if err := r.saveToCustomRoot(p, data); err != nil {
			r.logger.Printf("custom-root write for %s failed, index copy still updated: %v", p.ID, err)
		}
		if err := r.writeIndexRecord(p); err != nil {
			return fmt.Errorf("save project %s: %w", p.ID, err)
		}
		// A project that moved to a custom root must not shadow it
		// with a stale managed copy.
		_ = os.Remove(r.managedPath(p.ID))
	} else {
		if err := writeFileAtomicBackup(r.managedPath(p.ID), data); err != nil {
			return fmt.Errorf("save project %s: %w", p.ID, err)
		}
	}

	if err := r.updateIndex(p.ID, indexEntryFor(p)); err != nil {
		return fmt.Errorf("save project %s: %w", p.ID, err)
	}

	events.Publish(r.publisher, r.logger, events.Event{
		Kind: events.ProjectSaved, ProjectID: p.ID,
	})
	return nil
}

func (r *Repository) saveToCustomRoot(p *project.Project, data []byte) error {
	if err := os.MkdirAll(p.RootPath, 0o755); err != nil {
		return fmt.Errorf("create project root: %w", err)
	}
	target := filepath.Join(p.RootPath, "project.json")
	if err := writeFileAtomicBackup(target, data); err != nil {
		return err
	}
	r.cache.Invalidate(target)
	if r.watcher != nil {
		if err := r.watcher.WatchDir(p.RootPath); err != nil {
			r.logger.Printf("cannot watch %s: %v", p.RootPath, err)
		}
	}
	return nil
}

// Load returns the project by id. It tries the managed file first, then
// the custom path recorded in the central index, then the per-project
// index record. A successful load from a custom path repairs the index.
func (r *Repository) Load(id string) (*project.Project, error) {
	if p := r.decodeProjectFile(r.managedPath(id)); p != nil {
		return p, nil
	}

	r.indexMu.Lock()
	entry, ok := r.loadIndex()[id]
	r.indexMu.Unlock()
	if ok && entry.Path != "" {
		if p, err := r.LoadByPath(entry.Path); err == nil && p != nil && p.ID == id {
			return p, nil
		}
	}

	if rec := r.readIndexRecord(id); rec != nil && rec.Path != "" {
		if p, err := r.LoadByPath(rec.Path); err == nil && p != nil && p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

// LoadByPath reads project.json under the given directory. The loaded
// project's root path is set to the directory, and the index entry for
// it is refreshed so externally created or moved projects register
// themselves.
func (r *Repository) LoadByPath(path string) (*project.Project, error) {
	target := filepath.Join(path, "project.json")

	if p := r.cache.Get(target); p != nil {
		return p, nil
	}

	p := r.decodeProjectFile(target)
	if p == nil {
		return nil, nil
	}
	p.RootPath = path
	r.cache.Put(target, p)
	if r.watcher != nil {
		if err := r.watcher.WatchDir(path); err != nil {
			r.logger.Printf("cannot watch %s: %v", path, err)
		}
	}
	r.repairIndex(p)
	return p, nil
}

// decodeProjectFile reads and decodes one project file. Malformed or
// unreadable files are reported as not-found, logged once.
func (r *Repository) decodeProjectFile(path string) *project.Project {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Printf("unreadable project file %s: %v", path, err)
		}
		return nil
	}
	var p project.Project
	if err := json.Unmarshal(data, &p); err != nil {
		r.logger.Printf("corrupt project file %s: %v", path, err)
		return nil
	}
	return &p
}

// Delete removes the project's managed files and index entries. Custom
// root directories belong to the user and are left in place.
func (r *Repository) Delete(id string) (bool, error) {
	existed := false
	for _, path := range []string{
		r.managedPath(id),
		r.managedPath(id) + ".bak",
		r.indexRecordPath(id),
	} {
		err := os.Remove(path)
		if err == nil {
			existed = true
		} else if !os.IsNotExist(err) {
			return false, fmt.Errorf("delete project %s: %w", id, err)
		}
	}

	indexed, err := r.removeFromIndex(id)
	if err != nil {
		return false, fmt.Errorf("delete project %s: %w", id, err)
	}
	existed = existed || indexed

	if existed {
		events.Publish(r.publisher, r.logger, events.Event{
			Kind: events.ProjectDeleted, ProjectID: id,
		})
	}
	return existed, nil
}

// Exists reports whether the project can be loaded.
func (r *Repository) Exists(id string) (bool, error) {
	p, err := r.Load(id)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}

// ListAll loads every known project: managed files plus custom-root
// projects reachable through index records. Corrupt files are skipped
// with a log line.
func (r *Repository) ListAll() ([]*project.Project, error) {
	entries, err := os.ReadDir(r.projectsDir)
	if err != nil {
		return nil, fmt.Errorf("read projects directory: %w", err)
	}

	seen := map[string]bool{}
	var projects []*project.Project
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || name == indexFileName {
			continue
		}
		if strings.HasSuffix(name, "_index.json") {
			id := strings.TrimSuffix(name, "_index.json")
			if seen[id] {
				continue
			}
			rec := r.readIndexRecord(id)
			if rec == nil || rec.Path == "" {
				continue
			}
			p, err := r.LoadByPath(rec.Path)
			if err != nil || p == nil {
				continue
			}
			seen[p.ID] = true
			projects = append(projects, p)
			continue
		}
		p := r.decodeProjectFile(filepath.Join(r.projectsDir, name))
		if p == nil || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		projects = append(projects, p)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})
	return projects, nil
}

// ListByStatus returns the projects in the given lifecycle state.
func (r *Repository) ListByStatus(status project.Status) ([]*project.Project, error) {
	return r.filter(func(p *project.Project) bool { return p.Status == status })
}

// ListByType returns the projects of the given type.
func (r *Repository) ListByType(typ project.Type) ([]*project.Project, error) {
	return r.filter(func(p *project.Project) bool { return p.Type == typ })
}

func (r *Repository) filter(keep func(*project.Project) bool) ([]*project.Project, error) {
	all, err := r.ListAll()
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, p := range all {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Search matches the query case-insensitively against project name,
// description, and tags. An empty query returns everything.
func (r *Repository) Search(query string) ([]*project.Project, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return r.ListAll()
	}
	return r.filter(func(p *project.Project) bool {
		if strings.Contains(strings.ToLower(p.Name), q) {
			return true
		}
		if strings.Contains(strings.ToLower(p.Metadata.Description), q) {
			return true
		}
		for _, tag := range p.Metadata.Tags {
			if strings.Contains(tag, q) {
				return true
			}
		}
		return false
	})
}

// Recent returns up to limit projects ordered by last-opened descending.
// Projects never opened sort last.
func (r *Repository) Recent(limit int) ([]*project.Project, error) {
	all, err := r.ListAll()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i].LastOpenedAt, all[j].LastOpenedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// UpdateLastOpened stamps the project's open time and saves it.
func (r *Repository) UpdateLastOpened(id string) (bool, error) {
	p, err := r.Load(id)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, nil
	}
	p.Open()
	if err := r.Save(p); err != nil {
		return false, err
	}
	events.Publish(r.publisher, r.logger, events.Event{
		Kind: events.ProjectOpened, ProjectID: id,
	})
	return true, nil
}

// CreateBackup copies the project's on-disk tree to destPath. This is
// the coarse directory copy; the archive engine lives in internal/backup.
func (r *Repository) CreateBackup(id, destPath string) (bool, error) {
	p, err := r.Load(id)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, nil
	}

	if err := os.MkdirAll(destPath, 0o755); err != nil {
		return false, fmt.Errorf("create backup directory: %w", err)
	}
	if p.RootPath != "" {
		if err := copyTree(p.RootPath, destPath); err != nil {
			return false, fmt.Errorf("copy project tree: %w", err)
		}
		return true, nil
	}

	data, err := os.ReadFile(r.managedPath(id))
	if err != nil {
		return false, fmt.Errorf("read project file: %w", err)
	}
	if err := os.WriteFile(filepath.Join(destPath, "project.json"), data, 0o644); err != nil {
		return false, fmt.Errorf("write backup copy: %w", err)
	}
	return true, nil
}

// RestoreBackup replaces the project's storage with the tree at srcPath.
// Any existing custom-root directory is removed first so stale files do
// not merge with the restored ones.
func (r *Repository) RestoreBackup(id, srcPath string) (bool, error) {
	src := filepath.Join(srcPath, "project.json")
	restored := r.decodeProjectFile(src)
	if restored == nil {
		return false, fmt.Errorf("no valid project.json under %s", srcPath)
	}
	if restored.ID != id {
		return false, fmt.Errorf("backup holds project %s, not %s", restored.ID, id)
	}

	if restored.RootPath != "" {
		if err := os.RemoveAll(restored.RootPath); err != nil {
			return false, fmt.Errorf("clear project root: %w", err)
		}
		if err := copyTree(srcPath, restored.RootPath); err != nil {
			return false, fmt.Errorf("copy backup tree: %w", err)
		}
		r.cache.Invalidate(filepath.Join(restored.RootPath, "project.json"))
		r.repairIndex(restored)
		return true, nil
	}

	if err := r.Save(restored); err != nil {
		return false, err
	}
	return true, nil
}

// Export writes the project to a single JSON file at path.
func (r *Repository) Export(id, path, format string) (bool, error) {
	if format != "" && format != "json" {
		return false, fmt.Errorf("unsupported export format %q", format)
	}
	p, err := r.Load(id)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, nil
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return false, fmt.Errorf("marshal project %s: %w", id, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create export directory: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return false, err
	}
	return true, nil
}

// Import reads a previously exported file and persists the project. An
// existing project with the same id is overwritten.
func (r *Repository) Import(path, format string) (*project.Project, error) {
	if format != "" && format != "json" {
		return nil, fmt.Errorf("unsupported import format %q", format)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	var p project.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}
	// Imported files came from elsewhere; their recorded root path is
	// not trusted.
	p.RootPath = ""
	if err := r.Save(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Statistics returns the display summary for one project, or nil when
// it does not exist.
func (r *Repository) Statistics(id string) (*storage.Stats, error) {
	p, err := r.Load(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return &storage.Stats{
		ProjectID:   p.ID,
		Name:        p.Name,
		Status:      p.Status,
		TotalWords:  p.Statistics.TotalWords,
		Progress:    p.ProgressPercentage(),
		Documents:   p.Statistics.TotalDocuments,
		Sessions:    p.Statistics.SessionCount,
		LastUpdated: p.UpdatedAt,
	}, nil
}

// ValidateStructure checks the directory at path for the expected
// project layout, returning one message per problem found.
func (r *Repository) ValidateStructure(path string) ([]string, error) {
	var problems []string

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return []string{fmt.Sprintf("directory does not exist: %s", path)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{fmt.Sprintf("not a directory: %s", path)}, nil
	}

	target := filepath.Join(path, "project.json")
	data, err := os.ReadFile(target)
	if os.IsNotExist(err) {
		return append(problems, "project.json is missing"), nil
	}
	if err != nil {
		return append(problems, fmt.Sprintf("project.json is unreadable: %v", err)), nil
	}

	var p project.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return append(problems, fmt.Sprintf("project.json is not valid JSON: %v", err)), nil
	}
	if p.ID == "" {
		problems = append(problems, "project.json has no id")
	}
	if p.Name == "" {
		problems = append(problems, "project.json has no name")
	}
	problems = append(problems, p.Validate()...)
	return problems, nil
}

// Migrate upgrades a stored project to the target format version. The
// defensive decode already normalizes old layouts, so migration is a
// load, restamp, save.
func (r *Repository) Migrate(id, targetVersion string) (bool, error) {
	if targetVersion == "" {
		targetVersion = project.FormatVersion
	}
	p, err := r.Load(id)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, nil
	}
	if p.FormatVersion == targetVersion {
		return true, nil
	}
	p.FormatVersion = targetVersion
	if err := r.Save(p); err != nil {
		return false, err
	}
	return true, nil
}
