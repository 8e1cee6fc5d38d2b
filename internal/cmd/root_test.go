package cmd

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// executeCommand runs the root command with the given args against fresh
// buffers and returns the combined output. Tests that need stdin (the
// history clear prompt) pass a reader; nil leaves stdin untouched.
func executeCommand(t *testing.T, in io.Reader, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	if in != nil {
		root.SetIn(in)
	}
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

func TestRootCommandHelp(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())

	output, _ := executeCommand(t, nil, "--help")

	if !strings.Contains(output, "shipshape") {
		t.Errorf("Help should mention shipshape, got: %s", output)
	}
	for _, sub := range []string{"scan", "plan", "apply", "report", "history"} {
		if !strings.Contains(output, sub) {
			t.Errorf("Help should list the %s command, got: %s", sub, output)
		}
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := NewRootCommand()
	if root.Use != "shipshape" {
		t.Errorf("Expected Use to be 'shipshape', got %q", root.Use)
	}

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"scan", "plan", "apply", "report", "history"} {
		if !names[want] {
			t.Errorf("Missing subcommand %q", want)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())

	output, err := executeCommand(t, nil, "--version")
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if !strings.Contains(output, Version) {
		t.Errorf("Version output should contain %q, got: %s", Version, output)
	}
}

func TestUnknownCommand(t *testing.T) {
	t.Setenv("SHIPSHAPE_HOME", t.TempDir())

	_, err := executeCommand(t, nil, "frobnicate")
	if err == nil {
		t.Fatal("Expected an error for an unknown command")
	}
}
