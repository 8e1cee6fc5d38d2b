package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/shipshape/internal/report"
)

// seedSourceTree builds a small tree with one illegal name, one duplicate
// pair, one empty file and one clean file.
func seedSourceTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}

	write("bad:name.txt", "needs a rename")
	write("dup1.txt", "same content")
	write("copies/dup2.txt", "same content")
	write("empty.dat", "")
	write("readme.txt", "all good here")
	return root
}

func TestScanCommand(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())
	root := seedSourceTree(t)

	output, err := executeCommand(t, nil, "scan", root)
	if err != nil {
		t.Fatalf("scan failed: %v\n%s", err, output)
	}

	if !strings.Contains(output, "=== Scan Summary ===") {
		t.Errorf("Expected a scan summary, got: %s", output)
	}
	for _, kind := range []string{"illegal_character", "duplicate", "zero_byte"} {
		if !strings.Contains(output, kind) {
			t.Errorf("Summary should list %s issues, got: %s", kind, output)
		}
	}
	if !strings.Contains(output, "=== Duplicates ===") {
		t.Errorf("Expected a duplicates section, got: %s", output)
	}
}

func TestScanCommandJSONExport(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())
	root := seedSourceTree(t)
	jsonPath := filepath.Join(t.TempDir(), "report.json")

	output, err := executeCommand(t, nil, "scan", root, "--json", jsonPath)
	if err != nil {
		t.Fatalf("scan failed: %v\n%s", err, output)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("JSON report not written: %v", err)
	}
	var summary report.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("JSON report does not parse: %v", err)
	}
	if summary.TotalFiles != 5 {
		t.Errorf("Expected 5 files in the JSON report, got %d", summary.TotalFiles)
	}
	if summary.DuplicateGroupCount != 1 {
		t.Errorf("Expected 1 duplicate group, got %d", summary.DuplicateGroupCount)
	}
}

func TestScanCommandRecordsHistory(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())
	root := seedSourceTree(t)

	if output, err := executeCommand(t, nil, "scan", root); err != nil {
		t.Fatalf("scan failed: %v\n%s", err, output)
	}

	output, err := executeCommand(t, nil, "history", "list")
	if err != nil {
		t.Fatalf("history list failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, root) {
		t.Errorf("History should contain the scanned root, got: %s", output)
	}
}

func TestScanCommandNoHistory(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())
	root := seedSourceTree(t)

	if output, err := executeCommand(t, nil, "scan", root, "--no-history"); err != nil {
		t.Fatalf("scan failed: %v\n%s", err, output)
	}

	output, err := executeCommand(t, nil, "history", "list")
	if err != nil {
		t.Fatalf("history list failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "No scans recorded") {
		t.Errorf("History should be empty after --no-history, got: %s", output)
	}
}

func TestScanCommandMissingRoot(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())

	_, err := executeCommand(t, nil, "scan", filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("Expected an error for a missing root")
	}
}

func TestScanCommandRequiresRoot(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())

	_, err := executeCommand(t, nil, "scan")
	if err == nil {
		t.Fatal("Expected an error when no root is given")
	}
}

func TestScanCommandRejectsBadFlagCombination(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())
	root := seedSourceTree(t)

	_, err := executeCommand(t, nil, "scan", root, "--workers", "-2")
	if err == nil {
		t.Fatal("Expected negative workers to be rejected")
	}
}
