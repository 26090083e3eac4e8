package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"
)

var directWrite atomic.Bool

// SetDirectWrite makes every store in the process write files in place
// instead of through a temp file and rename. Sandboxes that forbid creating
// sibling files need this; the SNAP environment variable turns it on too.
func SetDirectWrite(on bool) {
	directWrite.Store(on)
}

func useDirectWrite() bool {
	return directWrite.Load() || os.Getenv("SNAP") != ""
}

// commit replaces path with data. A crash at any point leaves either the old
// or the new contents, never a mix.
func commit(path string, data []byte, mode os.FileMode) error {
	if useDirectWrite() {
		return os.WriteFile(path, data, mode)
	}

	dir, base := filepath.Split(path)
	tmp := filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		if errors.Is(err, syscall.EXDEV) {
			return os.WriteFile(path, data, mode)
		}
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
