package cmd

import (
	"strings"
	"testing"
)

// listedScanID extracts the first scan ID from history list output.
func listedScanID(t *testing.T, output string) string {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) < 2 {
		t.Fatalf("history list has no rows: %s", output)
	}
	fields := strings.Fields(lines[1])
	if len(fields) == 0 {
		t.Fatalf("history list row is empty: %s", output)
	}
	return fields[0]
}

func TestHistoryListEmpty(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())

	output, err := executeCommand(t, nil, "history", "list")
	if err != nil {
		t.Fatalf("history list failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "No scans recorded") {
		t.Errorf("Expected an empty history notice, got: %s", output)
	}
}

func TestHistoryShowByPrefix(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())
	root := seedSourceTree(t)

	if output, err := executeCommand(t, nil, "scan", root); err != nil {
		t.Fatalf("scan failed: %v\n%s", err, output)
	}

	listOutput, err := executeCommand(t, nil, "history", "list")
	if err != nil {
		t.Fatalf("history list failed: %v\n%s", err, listOutput)
	}
	id := listedScanID(t, listOutput)

	output, err := executeCommand(t, nil, "history", "show", id)
	if err != nil {
		t.Fatalf("history show failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "=== Scan Summary ===") {
		t.Errorf("Expected the stored summary, got: %s", output)
	}
	if !strings.Contains(output, root) {
		t.Errorf("Summary should mention the scanned root, got: %s", output)
	}
}

func TestHistoryShowUnknownID(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())

	_, err := executeCommand(t, nil, "history", "show", "doesnotexist")
	if err == nil {
		t.Fatal("Expected an error for an unknown scan ID")
	}
}

func TestHistoryStats(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())
	root := seedSourceTree(t)

	if output, err := executeCommand(t, nil, "scan", root); err != nil {
		t.Fatalf("scan failed: %v\n%s", err, output)
	}

	output, err := executeCommand(t, nil, "history", "stats")
	if err != nil {
		t.Fatalf("history stats failed: %v\n%s", err, output)
	}
	for _, want := range []string{"Scans recorded:", "Applies recorded:", "Files scanned:", "Reclaimable found:"} {
		if !strings.Contains(output, want) {
			t.Errorf("Stats should contain %q, got: %s", want, output)
		}
	}
}

func TestHistoryClearPromptDeclined(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())
	root := seedSourceTree(t)

	if output, err := executeCommand(t, nil, "scan", root); err != nil {
		t.Fatalf("scan failed: %v\n%s", err, output)
	}

	output, err := executeCommand(t, strings.NewReader("n\n"), "history", "clear")
	if err != nil {
		t.Fatalf("history clear failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Cancelled.") {
		t.Errorf("Declining the prompt should cancel, got: %s", output)
	}

	listOutput, err := executeCommand(t, nil, "history", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(listOutput, root) {
		t.Error("Declined clear should leave the history intact")
	}
}

func TestHistoryClearYes(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())
	root := seedSourceTree(t)

	if output, err := executeCommand(t, nil, "scan", root); err != nil {
		t.Fatalf("scan failed: %v\n%s", err, output)
	}

	output, err := executeCommand(t, nil, "history", "clear", "--yes")
	if err != nil {
		t.Fatalf("history clear failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "History cleared.") {
		t.Errorf("Expected a clear confirmation, got: %s", output)
	}

	listOutput, err := executeCommand(t, nil, "history", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(listOutput, "No scans recorded") {
		t.Errorf("History should be empty after clear, got: %s", listOutput)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("3f2a9c1b-aaaa-bbbb"); got != "3f2a9c1b" {
		t.Errorf("Expected 3f2a9c1b, got %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("Short IDs should pass through, got %q", got)
	}
}
