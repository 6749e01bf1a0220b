package backup

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/quillworks/quill/internal/document"
	"github.com/quillworks/quill/internal/project"
	storagefile "github.com/quillworks/quill/internal/storage/file"
)

func newTestEngine(t *testing.T, maxBackups int) (*Engine, *storagefile.Repository, document.Store) {
	t.Helper()
	logger := log.New(io.Discard, "", 0)

	repo, err := storagefile.New(storagefile.Config{DataDir: t.TempDir(), Logger: logger})
	if err != nil {
		t.Fatalf("repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	docs, err := document.NewFileStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("document store: %v", err)
	}

	cfg := DefaultConfig(t.TempDir())
	cfg.Logger = logger
	if maxBackups > 0 {
		cfg.MaxBackups = maxBackups
	}
	engine, err := NewEngine(cfg, repo, docs)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return engine, repo, docs
}

func seedProject(t *testing.T, repo *storagefile.Repository, docs document.Store, name string) *project.Project {
	t.Helper()
	p := project.New(name, project.TypeNovel)
	if err := repo.Save(p); err != nil {
		t.Fatal(err)
	}
	for i, title := range []string{"Chapter 1", "Chapter 2"} {
		d := document.New(p.ID, title)
		d.Position = i + 1
		d.SetContent("Content of " + title)
		if err := docs.Save(d); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func TestBackupLifecycle(t *testing.T) {
	engine, repo, docs := newTestEngine(t, 0)
	p := seedProject(t, repo, docs, "Draft A")

	if ok, _ := p.ChangeStatus(project.StatusActive); !ok {
		t.Fatal("draft -> active should succeed")
	}
	if err := repo.Save(p); err != nil {
		t.Fatal(err)
	}

	info, err := engine.Create(p.ID, "milestone 1", TypeManual)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if info.SizeBytes <= 0 {
		t.Error("archive should have nonzero size")
	}

	backups, err := engine.List(p.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected exactly one backup, got %d", len(backups))
	}
	if backups[0].Description != "milestone 1" || backups[0].Type != TypeManual {
		t.Errorf("backup = %+v", backups[0])
	}

	ok, err := engine.Delete(info.ID)
	if err != nil || !ok {
		t.Fatalf("delete = %v, %v", ok, err)
	}
	backups, err = engine.List(p.ID)
	if err != nil || len(backups) != 0 {
		t.Errorf("after delete list = %+v, %v", backups, err)
	}
}

func TestBackupMissingProject(t *testing.T) {
	engine, _, _ := newTestEngine(t, 0)
	if _, err := engine.Create("missing", "", TypeManual); err == nil {
		t.Error("backing up a missing project should error")
	}
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	engine, repo, docs := newTestEngine(t, 0)
	p := seedProject(t, repo, docs, "Restorable")

	info, err := engine.Create(p.ID, "before changes", TypeManual)
	if err != nil {
		t.Fatal(err)
	}

	// Mutate everything after the backup.
	p.Name = "Renamed"
	if err := repo.Save(p); err != nil {
		t.Fatal(err)
	}
	list, err := docs.ListByProject(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range list {
		d.SetContent("overwritten")
		if err := docs.Save(d); err != nil {
			t.Fatal(err)
		}
	}

	restoredID, err := engine.Restore(info.Path)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restoredID != p.ID {
		t.Errorf("restored id = %s", restoredID)
	}

	got, err := repo.Load(p.ID)
	if err != nil || got == nil {
		t.Fatal(err)
	}
	if got.Name != "Restorable" {
		t.Errorf("restored name = %q", got.Name)
	}
	restoredDocs, err := docs.ListByProject(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range restoredDocs {
		if d.Content == "overwritten" {
			t.Errorf("document %s content not restored", d.Title)
		}
	}
}

func TestRestoreMalformedArchive(t *testing.T) {
	engine, _, _ := newTestEngine(t, 0)
	if _, err := engine.Restore("/nonexistent/archive.zip"); err == nil {
		t.Error("restoring a missing archive should error")
	}
}

func TestEmptyDocumentSkippedInArchive(t *testing.T) {
	engine, repo, docs := newTestEngine(t, 0)
	p := seedProject(t, repo, docs, "Sparse")

	empty := document.New(p.ID, "Empty Chapter")
	if err := docs.Save(empty); err != nil {
		t.Fatal(err)
	}

	info, err := engine.Create(p.ID, "", TypeManual)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Restore should bring the empty document back with empty content.
	if _, err := engine.Restore(info.Path); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, err := docs.Load(empty.ID)
	if err != nil || got == nil {
		t.Fatalf("empty document should survive the round trip: %+v, %v", got, err)
	}
	if got.Content != "" {
		t.Errorf("content = %q, want empty", got.Content)
	}
}

func TestBackupRetention(t *testing.T) {
	engine, repo, docs := newTestEngine(t, 3)
	p := seedProject(t, repo, docs, "Retained")

	var ids []string
	for i := 0; i < 5; i++ {
		info, err := engine.Create(p.ID, "", TypeManual)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, info.ID)
		// Distinct millisecond timestamps keep ids unique and ordered.
		time.Sleep(5 * time.Millisecond)
	}

	backups, err := engine.List(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(backups))
	}
	// The three most recent survive, newest first.
	for i, want := range []string{ids[4], ids[3], ids[2]} {
		if backups[i].ID != want {
			t.Errorf("backups[%d] = %s, want %s", i, backups[i].ID, want)
		}
	}
}

func TestAutoDue(t *testing.T) {
	engine, repo, docs := newTestEngine(t, 0)
	p := seedProject(t, repo, docs, "Cadence")

	due, err := engine.AutoDue(p.ID)
	if err != nil || !due {
		t.Errorf("no auto backup yet, should be due: %v, %v", due, err)
	}

	if _, err := engine.Create(p.ID, "", TypeAuto); err != nil {
		t.Fatal(err)
	}
	due, err = engine.AutoDue(p.ID)
	if err != nil || due {
		t.Errorf("fresh auto backup, should not be due: %v, %v", due, err)
	}

	// A manual backup does not reset the automatic cadence.
	time.Sleep(5 * time.Millisecond)
	if _, err := engine.Create(p.ID, "", TypeManual); err != nil {
		t.Fatal(err)
	}
	due, err = engine.AutoDue(p.ID)
	if err != nil || due {
		t.Errorf("cadence should key off the newest auto backup: %v, %v", due, err)
	}
}

func TestPruneBefore(t *testing.T) {
	engine, repo, docs := newTestEngine(t, 0)
	p := seedProject(t, repo, docs, "Pruned")

	old, err := engine.Create(p.ID, "", TypeManual)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	cutoff := time.Now()
	time.Sleep(20 * time.Millisecond)
	fresh, err := engine.Create(p.ID, "", TypeManual)
	if err != nil {
		t.Fatal(err)
	}

	deleted, err := engine.Prune(p.ID, cutoff)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if len(deleted) != 1 || deleted[0] != old.ID {
		t.Errorf("deleted = %v, want only %s", deleted, old.ID)
	}

	backups, err := engine.List(p.ID)
	if err != nil || len(backups) != 1 || backups[0].ID != fresh.ID {
		t.Errorf("remaining = %+v, %v", backups, err)
	}
}

func TestBackupSkipsFailingDocument(t *testing.T) {
	engine, repo, docs := newTestEngine(t, 0)
	p := seedProject(t, repo, docs, "Resilient")

	bad := document.New(p.ID, "Cursed Chapter")
	bad.SetContent("doomed content")
	if err := docs.Save(bad); err != nil {
		t.Fatal(err)
	}

	badEntry := "documents/" + bad.ID + ".txt"
	engine.writeEntry = func(zw *zip.Writer, name string, data []byte) error {
		if name == badEntry {
			return fmt.Errorf("simulated write failure")
		}
		return writeZipEntry(zw, name, data)
	}

	info, err := engine.Create(p.ID, "", TypeManual)
	if err != nil {
		t.Fatalf("one failing document should not abort the backup: %v", err)
	}

	zr, err := zip.OpenReader(info.Path)
	if err != nil {
		t.Fatal(err)
	}
	written := 0
	for _, f := range zr.File {
		if f.Name == badEntry {
			t.Error("failed document entry should not appear in the archive")
		}
		if strings.HasPrefix(f.Name, "documents/") {
			written++
		}
	}
	zr.Close()
	if written != 2 {
		t.Errorf("archive document entries = %d, want the 2 healthy chapters", written)
	}

	// A restore of this archive treats the missing content as empty.
	if _, err := engine.Restore(info.Path); err != nil {
		t.Fatalf("restore: %v", err)
	}
	restored, err := docs.Load(bad.ID)
	if err != nil || restored == nil {
		t.Fatalf("load restored document: %+v, %v", restored, err)
	}
	if restored.Content != "" {
		t.Errorf("content = %q, want empty for the skipped entry", restored.Content)
	}
}
