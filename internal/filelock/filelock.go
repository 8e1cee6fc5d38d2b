// Package filelock guards cross-process exclusivity and atomic file writes.
// An apply run holds the run lock in the state home for its whole duration;
// plan files and reports go through AtomicWrite so readers never observe a
// partially written file.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrHeld reports that another process already holds the lock.
var ErrHeld = errors.New("lock already held")

// RunLock is an advisory cross-process lock backed by flock. The lock file
// persists after release; only the flock state matters.
type RunLock struct {
	flock *flock.Flock
	path  string
}

// NewRunLock creates a lock handle for the given lock file path.
func NewRunLock(path string) *RunLock {
	return &RunLock{flock: flock.New(path), path: path}
}

// Acquire takes the lock without blocking. A lock held elsewhere surfaces
// as ErrHeld so callers can print a useful message instead of hanging.
func (l *RunLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.path, err)
	}
	if !acquired {
		return fmt.Errorf("%w: %s", ErrHeld, l.path)
	}
	return nil
}

// Release drops the lock. Safe to call on a lock that was never acquired.
func (l *RunLock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}

// Path returns the lock file path.
func (l *RunLock) Path() string {
	return l.path
}

// AtomicWrite writes data through a temp file in the target's directory and
// renames it into place. The temp file lands on the same filesystem, which
// keeps the rename atomic; on any failure the original file is unchanged.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}

	tmp = nil
	return nil
}
