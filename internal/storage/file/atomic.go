package file

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeFileAtomic writes data to path via a temp file in the same
// directory followed by a rename, so readers never observe a torn write.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// writeFileAtomicBackup is writeFileAtomic plus preservation of the
// prior version as <path>.bak when one exists.
func writeFileAtomicBackup(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		prior, err := os.ReadFile(path)
		if err == nil {
			// Best effort; a failed .bak write never blocks the save.
			_ = os.WriteFile(path+".bak", prior, 0o644)
		}
	}
	return writeFileAtomic(path, data)
}

// copyTree recursively copies the directory at src to dst. dst must not
// exist beforehand for a clean copy; existing files are overwritten.
func copyTree(src, dst string) error {
	return filepath.Walk(src, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		return os.WriteFile(target, data, info.Mode().Perm())
	})
}
