// Package models defines the plain data structures exchanged between the
// scan, detect, plan, and execute stages. All types here are serializable
// records with no behavior beyond validation and simple lookups, so that
// callers (CLI, reports, history) can consume them without importing any
// pipeline package.
package models

import (
	"errors"
	"time"
)

// FileRecord holds the metadata collected for a single file during a scan.
// Records are immutable once produced by the walker: detectors annotate by
// emitting separate Issue values keyed by path, never by writing back into
// the record.
type FileRecord struct {
	Path      string    `json:"path"`               // Absolute path
	RelPath   string    `json:"rel_path"`           // Path relative to the scan root
	Name      string    `json:"name"`               // Base name including extension
	Extension string    `json:"extension"`          // Extension with leading dot, "" if none
	Size      int64     `json:"size"`               // Size in bytes
	Created   time.Time `json:"created"`            // Creation time (falls back to mtime where unavailable)
	Modified  time.Time `json:"modified"`           // Last modification time
	Accessed  time.Time `json:"accessed"`           // Last access time
	Hash      string    `json:"hash,omitempty"`     // MD5 hex digest, "" when above the hash threshold or unreadable
	MIMEType  string    `json:"mime_type"`          // MIME type derived from the extension
	Owner     string    `json:"owner,omitempty"`    // Owning user, "" when lookup is unsupported
	ReadOnly  bool      `json:"read_only"`          // Owner write bit cleared
	Hidden    bool      `json:"hidden"`             // Dot-prefixed name
}

// Validate checks that the record carries the fields every consumer relies on.
func (r *FileRecord) Validate() error {
	if r.Path == "" {
		return errors.New("file record path is required")
	}
	if r.Name == "" {
		return errors.New("file record name is required")
	}
	return nil
}

// IndexRecords builds a path -> record index over a record set.
// The returned map points into the given slice; callers must not mutate it.
func IndexRecords(records []FileRecord) map[string]*FileRecord {
	index := make(map[string]*FileRecord, len(records))
	for i := range records {
		index[records[i].Path] = &records[i]
	}
	return index
}
