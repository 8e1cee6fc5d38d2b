package filelock

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestRunLockExclusive verifies a held lock rejects a second acquirer with
// ErrHeld until released.
func TestRunLockExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apply.lock")

	first := NewRunLock(path)
	if err := first.Acquire(); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	second := NewRunLock(path)
	err := second.Acquire()
	if err == nil {
		t.Fatal("second acquire should fail while the lock is held")
	}
	if !errors.Is(err, ErrHeld) {
		t.Errorf("expected ErrHeld, got %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if err := second.Acquire(); err != nil {
		t.Errorf("acquire after release failed: %v", err)
	}
	if err := second.Release(); err != nil {
		t.Errorf("final release failed: %v", err)
	}
}

// TestRunLockCreatesParentDirectory verifies acquiring creates the lock
// file's directory when missing.
func TestRunLockCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "nested", "apply.lock")

	lock := NewRunLock(path)
	if err := lock.Acquire(); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer lock.Release()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("lock directory was not created: %v", err)
	}
	if lock.Path() != path {
		t.Errorf("Path() = %q, want %q", lock.Path(), path)
	}
}

// TestAtomicWrite verifies writes land with the expected content and mode,
// and replace existing files.
func TestAtomicWrite(t *testing.T) {
	t.Run("creates file with content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.yaml")
		if err := AtomicWrite(path, []byte("hello")); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read back failed: %v", err)
		}
		if string(data) != "hello" {
			t.Errorf("content = %q, want %q", data, "hello")
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0644 {
			t.Errorf("mode = %v, want 0644", info.Mode().Perm())
		}
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.yaml")
		if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := AtomicWrite(path, []byte("new")); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}

		data, _ := os.ReadFile(path)
		if string(data) != "new" {
			t.Errorf("content = %q, want %q", data, "new")
		}
	})

	t.Run("creates missing parents", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a", "b", "out.yaml")
		if err := AtomicWrite(path, []byte("x")); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("file missing: %v", err)
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.yaml")
		if err := AtomicWrite(path, []byte("x")); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".tmp-") {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
	})
}
