package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
	"unicode/utf8"
)

// ActionKind identifies what the executor should do with one source file.
type ActionKind string

// Action kinds.
//
// ActionRename keeps the file and places it under the target root with a
// corrected name. ActionMove relocates it to a shortened target path.
// ActionSkipDuplicate drops a non-keeper duplicate; nothing is written, but
// the keeper's resolved target is recorded for audit.
const (
	ActionRename        ActionKind = "rename"
	ActionMove          ActionKind = "move"
	ActionSkipDuplicate ActionKind = "skip_duplicate"
)

// ParseActionKind converts a string to an ActionKind.
// Returns an error for unknown kinds.
func ParseActionKind(s string) (ActionKind, error) {
	switch ActionKind(s) {
	case ActionRename, ActionMove, ActionSkipDuplicate:
		return ActionKind(s), nil
	}
	return "", fmt.Errorf("unknown action kind %q", s)
}

// FixAction is one proposed remediation for one source file.
type FixAction struct {
	Source       string      `yaml:"source" json:"source"`                                   // Original absolute path
	Target       string      `yaml:"target,omitempty" json:"target,omitempty"`               // Proposed absolute path; empty for skip_duplicate
	Kind         ActionKind  `yaml:"kind" json:"kind"`                                       // What to do
	Resolves     []IssueKind `yaml:"resolves,omitempty" json:"resolves,omitempty"`           // Issue kinds this action addresses
	KeeperTarget string      `yaml:"keeper_target,omitempty" json:"keeper_target,omitempty"` // For skip_duplicate: resolved target of the kept copy
}

// Validate checks the per-action invariants.
func (a *FixAction) Validate() error {
	if a.Source == "" {
		return errors.New("action source is required")
	}
	if _, err := ParseActionKind(string(a.Kind)); err != nil {
		return err
	}
	if a.Kind == ActionSkipDuplicate {
		if a.Target != "" {
			return fmt.Errorf("skip action for %q must not carry a target", a.Source)
		}
		if a.KeeperTarget == "" {
			return fmt.Errorf("skip action for %q must reference the keeper's target", a.Source)
		}
		return nil
	}
	if a.Target == "" {
		return fmt.Errorf("%s action for %q needs a target", a.Kind, a.Source)
	}
	return nil
}

// FixPlan is an ordered, side-effect-free sequence of proposed remediation
// actions. It is produced by the planner, optionally written to a plan file,
// and consumed exactly once by the executor.
type FixPlan struct {
	ID         string      `yaml:"id" json:"id"`
	Root       string      `yaml:"root" json:"root"`               // Source tree the plan was built from
	TargetRoot string      `yaml:"target_root" json:"target_root"` // Destination root all targets live under
	PathLimit  int         `yaml:"path_limit" json:"path_limit"`   // Limit the targets were validated against
	CreatedAt  time.Time   `yaml:"created_at" json:"created_at"`
	Actions    []FixAction `yaml:"actions" json:"actions"`
}

// Validate checks the plan-wide invariants: every action is well-formed, no
// two actions share a target path, every target fits within the path limit,
// and targets preserve the source extension (extension-less sources
// excepted). A violation here means a planner bug, not bad user input.
func (p *FixPlan) Validate() error {
	if p.Root == "" {
		return errors.New("plan root is required")
	}
	if p.TargetRoot == "" {
		return errors.New("plan target root is required")
	}
	if p.PathLimit <= 0 {
		return fmt.Errorf("plan path limit must be positive, got %d", p.PathLimit)
	}

	targets := make(map[string]string, len(p.Actions))
	for i := range p.Actions {
		a := &p.Actions[i]
		if err := a.Validate(); err != nil {
			return err
		}
		if a.Target == "" {
			continue
		}
		if prev, taken := targets[a.Target]; taken {
			return fmt.Errorf("target %q proposed for both %q and %q", a.Target, prev, a.Source)
		}
		targets[a.Target] = a.Source

		if n := utf8.RuneCountInString(a.Target); n > p.PathLimit {
			return fmt.Errorf("target %q is %d chars, exceeds limit %d", a.Target, n, p.PathLimit)
		}
		ext := filepath.Ext(a.Source)
		if ext == filepath.Base(a.Source) {
			// Dotfiles like ".gitignore" have no extension to preserve.
			ext = ""
		}
		if ext != "" && filepath.Ext(a.Target) != ext {
			return fmt.Errorf("target %q does not preserve extension %q of %q", a.Target, ext, a.Source)
		}
	}

	return nil
}

// ActionsOfKind returns the actions matching the given kind, in plan order.
func (p *FixPlan) ActionsOfKind(kind ActionKind) []FixAction {
	var matched []FixAction
	for _, a := range p.Actions {
		if a.Kind == kind {
			matched = append(matched, a)
		}
	}
	return matched
}
