package models

import (
	"errors"
	"fmt"
)

// IssueKind identifies the constraint a file violates.
type IssueKind string

// Issue kinds produced by the detectors and the walker.
const (
	KindNameTooLong      IssueKind = "name_too_long"
	KindIllegalCharacter IssueKind = "illegal_character"
	KindReservedName     IssueKind = "reserved_name"
	KindIllegalPrefix    IssueKind = "illegal_prefix"
	KindIllegalSuffix    IssueKind = "illegal_suffix"
	KindPathTooLong      IssueKind = "path_too_long"
	KindDuplicate        IssueKind = "duplicate"
	KindReadOnly         IssueKind = "read_only"
	KindZeroByte         IssueKind = "zero_byte"
	KindUnreadable       IssueKind = "unreadable"
)

// AllIssueKinds lists every issue kind in display order.
func AllIssueKinds() []IssueKind {
	return []IssueKind{
		KindNameTooLong,
		KindIllegalCharacter,
		KindReservedName,
		KindIllegalPrefix,
		KindIllegalSuffix,
		KindPathTooLong,
		KindDuplicate,
		KindReadOnly,
		KindZeroByte,
		KindUnreadable,
	}
}

// ParseIssueKind converts a string to an IssueKind.
// Returns an error for unknown kinds.
func ParseIssueKind(s string) (IssueKind, error) {
	kind := IssueKind(s)
	for _, known := range AllIssueKinds() {
		if kind == known {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown issue kind %q", s)
}

// Severity classifies an issue as blocking or advisory.
type Severity string

// Severity levels. Critical issues block a clean migration; warnings do not.
const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// ParseSeverity converts a string to a Severity.
// Returns an error for unknown severities.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityCritical:
		return SeverityCritical, nil
	case SeverityWarning:
		return SeverityWarning, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// DefaultSeverities returns the built-in kind -> severity table.
// Callers may override individual entries through configuration; resolution
// is a pure lookup with no other state.
func DefaultSeverities() map[IssueKind]Severity {
	return map[IssueKind]Severity{
		KindNameTooLong:      SeverityCritical,
		KindIllegalCharacter: SeverityCritical,
		KindReservedName:     SeverityCritical,
		KindIllegalPrefix:    SeverityCritical,
		KindIllegalSuffix:    SeverityCritical,
		KindPathTooLong:      SeverityCritical,
		KindDuplicate:        SeverityWarning,
		KindReadOnly:         SeverityWarning,
		KindZeroByte:         SeverityWarning,
		KindUnreadable:       SeverityWarning,
	}
}

// Issue describes one constraint violation on one path. Issues are created
// once by a detector (or by the walker, for unreadable files) and never
// mutated afterward.
type Issue struct {
	Path        string            `json:"path"`             // Subject path; always present in the owning ScanResult's records
	Kind        IssueKind         `json:"kind"`             // What rule was violated
	Severity    Severity          `json:"severity"`         // Resolved from kind via the configured table
	Description string            `json:"description"`      // Human-readable summary
	Detail      map[string]string `json:"detail,omitempty"` // Kind-specific metadata (offending character, limit, duplicate-of path, ...)
}

// Validate checks that the issue has all required fields.
func (i *Issue) Validate() error {
	if i.Path == "" {
		return errors.New("issue path is required")
	}
	if _, err := ParseIssueKind(string(i.Kind)); err != nil {
		return err
	}
	if _, err := ParseSeverity(string(i.Severity)); err != nil {
		return err
	}
	return nil
}

// Detail keys used across issue kinds.
const (
	DetailCharacter   = "character"    // Offending character for illegal_character
	DetailLimit       = "limit"        // Configured limit for length issues
	DetailLength      = "length"       // Actual length for length issues
	DetailPrefix      = "prefix"       // Matched prefix for illegal_prefix
	DetailSuffix      = "suffix"       // Matched suffix for illegal_suffix
	DetailDuplicateOf = "duplicate_of" // Keeper path for duplicate
	DetailGroupKey    = "group_key"    // Duplicate group key
	DetailError       = "error"        // Underlying error text for unreadable
)
