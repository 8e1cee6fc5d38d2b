package models

import (
	"testing"
)

func TestParseIssueKind(t *testing.T) {
	for _, kind := range AllIssueKinds() {
		parsed, err := ParseIssueKind(string(kind))
		if err != nil {
			t.Errorf("ParseIssueKind(%q) returned error: %v", kind, err)
		}
		if parsed != kind {
			t.Errorf("ParseIssueKind(%q) = %q", kind, parsed)
		}
	}

	if _, err := ParseIssueKind("bogus"); err == nil {
		t.Error("ParseIssueKind should reject unknown kinds")
	}
	if _, err := ParseIssueKind(""); err == nil {
		t.Error("ParseIssueKind should reject empty input")
	}
}

func TestParseSeverity(t *testing.T) {
	if s, err := ParseSeverity("critical"); err != nil || s != SeverityCritical {
		t.Errorf("ParseSeverity(critical) = %q, %v", s, err)
	}
	if s, err := ParseSeverity("warning"); err != nil || s != SeverityWarning {
		t.Errorf("ParseSeverity(warning) = %q, %v", s, err)
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Error("ParseSeverity should reject unknown severities")
	}
}

func TestDefaultSeveritiesCoverAllKinds(t *testing.T) {
	table := DefaultSeverities()
	for _, kind := range AllIssueKinds() {
		if _, ok := table[kind]; !ok {
			t.Errorf("default severity table missing kind %q", kind)
		}
	}

	// Naming and length violations block migration; the rest are advisory.
	if table[KindReservedName] != SeverityCritical {
		t.Errorf("reserved_name should default to critical, got %q", table[KindReservedName])
	}
	if table[KindPathTooLong] != SeverityCritical {
		t.Errorf("path_too_long should default to critical, got %q", table[KindPathTooLong])
	}
	if table[KindDuplicate] != SeverityWarning {
		t.Errorf("duplicate should default to warning, got %q", table[KindDuplicate])
	}
	if table[KindReadOnly] != SeverityWarning {
		t.Errorf("read_only should default to warning, got %q", table[KindReadOnly])
	}
}

func TestIssueValidate(t *testing.T) {
	valid := Issue{
		Path:        "/data/CON.txt",
		Kind:        KindReservedName,
		Severity:    SeverityCritical,
		Description: "name uses a reserved word",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid issue should pass validation: %v", err)
	}

	missingPath := valid
	missingPath.Path = ""
	if err := missingPath.Validate(); err == nil {
		t.Error("issue without path should fail validation")
	}

	badKind := valid
	badKind.Kind = "weird"
	if err := badKind.Validate(); err == nil {
		t.Error("issue with unknown kind should fail validation")
	}

	badSeverity := valid
	badSeverity.Severity = "urgent"
	if err := badSeverity.Validate(); err == nil {
		t.Error("issue with unknown severity should fail validation")
	}
}
