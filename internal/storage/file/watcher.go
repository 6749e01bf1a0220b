package file

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quillworks/quill/internal/project"
)

// projectCache holds decoded projects for custom-root files so repeated
// loads skip the parse. Entries are dropped when the watcher sees the
// file change on disk.
type projectCache struct {
	mu      sync.Mutex
	entries map[string]*project.Project
}

func newProjectCache() *projectCache {
	return &projectCache{entries: map[string]*project.Project{}}
}

// Get returns an independent copy of the cached project, or nil.
// Returning a clone keeps caller mutations out of the cache.
func (c *projectCache) Get(path string) *project.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.entries[path]; ok {
		return p.Clone()
	}
	return nil
}

// Put stores a copy of the project under the file path.
func (c *projectCache) Put(path string, p *project.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = p.Clone()
}

// Invalidate drops the entry for one file path.
func (c *projectCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// debounceWindow is how long a change must be quiet before the
// invalidation fires. Editors and atomic renames produce bursts of
// events for one logical write.
const debounceWindow = 500 * time.Millisecond

// Watcher invalidates cache entries when project files change on disk.
// Change events are debounced per path.
type Watcher struct {
	watcher    *fsnotify.Watcher
	invalidate func(path string)
	logger     *log.Logger

	mu      sync.Mutex
	pending map[string]time.Time
	watched map[string]bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher starts the event loop. The invalidate callback is invoked
// with the changed file path after the debounce window passes.
func NewWatcher(invalidate func(path string), logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher:    fsw,
		invalidate: invalidate,
		logger:     logger,
		pending:    map[string]time.Time{},
		watched:    map[string]bool{},
		done:       make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// WatchDir adds a directory to the watch set. Adding the same directory
// twice is a no-op.
func (w *Watcher) WatchDir(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watched[dir] {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.watched[dir] = true
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(debounceWindow / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.mu.Lock()
				w.pending[event.Name] = time.Now()
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Printf("watcher error: %v", err)
			}

		case <-ticker.C:
			w.flush()
		}
	}
}

// flush fires invalidations for paths quiet past the debounce window.
func (w *Watcher) flush() {
	now := time.Now()

	w.mu.Lock()
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= debounceWindow {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		w.invalidate(path)
	}
}
