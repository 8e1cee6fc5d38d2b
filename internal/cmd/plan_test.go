package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/shipshape/internal/planner"
)

func TestPlanCommandPreview(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())
	root := seedSourceTree(t)
	target := filepath.Join(t.TempDir(), "staging")

	output, err := executeCommand(t, nil, "plan", root, "--target", target)
	if err != nil {
		t.Fatalf("plan failed: %v\n%s", err, output)
	}

	if !strings.Contains(output, "Plan ") {
		t.Errorf("Expected a plan header, got: %s", output)
	}
	if !strings.Contains(output, "rename") {
		t.Errorf("Expected a rename action in the preview, got: %s", output)
	}
	if !strings.Contains(output, "skip_duplicate") {
		t.Errorf("Expected a duplicate skip in the preview, got: %s", output)
	}
	if !strings.Contains(output, "Nothing has been changed.") {
		t.Errorf("Preview should state that nothing was changed, got: %s", output)
	}

	// Preview must not create the target tree.
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Error("Plan preview should not create the target root")
	}
}

func TestPlanCommandWritesFile(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())
	root := seedSourceTree(t)
	target := filepath.Join(t.TempDir(), "staging")
	outPath := filepath.Join(t.TempDir(), "fixes.yaml")

	output, err := executeCommand(t, nil, "plan", root, "--target", target, "--out", outPath)
	if err != nil {
		t.Fatalf("plan failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "written to") {
		t.Errorf("Expected a confirmation, got: %s", output)
	}

	plan, err := planner.LoadPlan(outPath)
	if err != nil {
		t.Fatalf("Saved plan does not load: %v", err)
	}
	// One rename for the illegal name, one rename for the duplicate
	// keeper, one skip for the non-keeper.
	if len(plan.Actions) != 3 {
		t.Errorf("Expected 3 actions, got %d", len(plan.Actions))
	}
	if plan.TargetRoot != target {
		t.Errorf("Expected target root %s, got %s", target, plan.TargetRoot)
	}
}

func TestPlanCommandCleanTree(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "fine.txt"), []byte("clean"), 0644); err != nil {
		t.Fatal(err)
	}

	output, err := executeCommand(t, nil, "plan", root, "--target", filepath.Join(t.TempDir(), "staging"))
	if err != nil {
		t.Fatalf("plan failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Nothing to fix") {
		t.Errorf("Expected nothing to fix, got: %s", output)
	}
}

func TestPlanCommandRequiresTarget(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())
	root := seedSourceTree(t)

	_, err := executeCommand(t, nil, "plan", root)
	if err == nil {
		t.Fatal("Expected an error when --target is missing")
	}
}

func TestPlanCommandBadKeepPolicy(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())
	root := seedSourceTree(t)

	_, err := executeCommand(t, nil, "plan", root, "--target", t.TempDir(), "--keep", "newest_name")
	if err == nil {
		t.Fatal("Expected an unknown keep policy to be rejected")
	}
}
