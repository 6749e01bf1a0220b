package file

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quillworks/quill/internal/project"
)

func TestProjectCacheCopies(t *testing.T) {
	cache := newProjectCache()
	p := project.New("Cached", project.TypeNovel)
	cache.Put("/some/path", p)

	got := cache.Get("/some/path")
	if got == nil || got.Name != "Cached" {
		t.Fatalf("get = %+v", got)
	}

	// Mutating the returned copy must not poison the cache.
	got.Name = "Mutated"
	again := cache.Get("/some/path")
	if again.Name != "Cached" {
		t.Errorf("cache entry was mutated through a caller copy: %q", again.Name)
	}

	cache.Invalidate("/some/path")
	if cache.Get("/some/path") != nil {
		t.Error("invalidated entry should be gone")
	}
}

func TestWatcherInvalidatesOnExternalWrite(t *testing.T) {
	repo, err := New(Config{
		DataDir: t.TempDir(),
		Logger:  log.New(io.Discard, "", 0),
		Watch:   true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer repo.Close()
	if repo.watcher == nil {
		t.Skip("fsnotify unavailable on this platform")
	}

	root := filepath.Join(t.TempDir(), "watched")
	p := project.New("Watched", project.TypeNovel)
	p.RootPath = root
	if err := repo.Save(p); err != nil {
		t.Fatal(err)
	}
	// Prime the cache.
	if _, err := repo.Load(p.ID); err != nil {
		t.Fatal(err)
	}

	// Simulate an external editor rewriting the file.
	p.Name = "Edited Elsewhere"
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "project.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		got, err := repo.Load(p.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got != nil && got.Name == "Edited Elsewhere" {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("cache never invalidated; still seeing %q", got.Name)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
