package executor

import (
	"fmt"
	"io"
	"os"
)

// ensureDir creates dir and any missing parents.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// copyFile copies src to dst, overwriting dst if present. The target is
// always left writable even when the source is read-only, so a later
// re-run can overwrite it.
func copyFile(src, dst string, preserveTimes bool) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	if err := clearReadOnly(dst); err != nil {
		return fmt.Errorf("clear read-only target: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()|0200)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy contents: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close target: %w", err)
	}

	// O_CREATE applies the mode only to new files; an overwritten
	// target keeps its old permissions otherwise.
	if err := os.Chmod(dst, info.Mode().Perm()|0200); err != nil {
		return fmt.Errorf("set target permissions: %w", err)
	}

	if preserveTimes {
		if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
			return fmt.Errorf("set target times: %w", err)
		}
	}
	return nil
}

// moveFile renames src to dst, falling back to copy-and-delete when the
// rename fails (typically across filesystems). Rename preserves
// timestamps natively.
func moveFile(src, dst string, preserveTimes bool) error {
	if err := clearReadOnly(dst); err != nil {
		return fmt.Errorf("clear read-only target: %w", err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst, preserveTimes); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

// clearReadOnly makes an existing read-only file writable. A missing
// file needs no clearing.
func clearReadOnly(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if info.Mode().Perm()&0200 == 0 {
		return os.Chmod(path, info.Mode().Perm()|0200)
	}
	return nil
}
