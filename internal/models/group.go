package models

import (
	"errors"
	"fmt"
)

// KeepPolicy selects which member of a duplicate group is retained.
type KeepPolicy string

// Keep policies. Ties are always broken by lexicographic path order so that
// keeper selection is deterministic for identical inputs.
const (
	KeepEarliestCreated KeepPolicy = "earliest-created"
	KeepNewestCreated   KeepPolicy = "newest-created"
	KeepSmallestSize    KeepPolicy = "smallest-size"
	KeepLargestSize     KeepPolicy = "largest-size"
)

// ParseKeepPolicy converts a string to a KeepPolicy.
// Returns an error for unknown policies.
func ParseKeepPolicy(s string) (KeepPolicy, error) {
	switch KeepPolicy(s) {
	case KeepEarliestCreated, KeepNewestCreated, KeepSmallestSize, KeepLargestSize:
		return KeepPolicy(s), nil
	}
	return "", fmt.Errorf("unknown keep policy %q", s)
}

// GroupKeyKind states how a duplicate group's key was derived.
type GroupKeyKind string

// Group key kinds. Hash keys compare content; name-size keys are the
// fallback for files that were too large to hash.
const (
	GroupKeyHash     GroupKeyKind = "hash"
	GroupKeyNameSize GroupKeyKind = "name-size"
)

// DuplicateGroup collects records that share a grouping key. Groups are
// ephemeral: they are recomputed on every analysis run and never persisted.
// Members are ordered by the active keep policy with the keeper first.
type DuplicateGroup struct {
	Key         string       `json:"key"`          // Content hash, or name|size fallback key
	KeyKind     GroupKeyKind `json:"key_kind"`     // How the key was derived
	Members     []FileRecord `json:"members"`      // Policy-ordered members, keeper first
	Keeper      string       `json:"keeper"`       // Path of the single retained member
	WastedBytes int64        `json:"wasted_bytes"` // Total size of the non-keeper members
}

// NonKeepers returns the members that are not the keeper.
func (g *DuplicateGroup) NonKeepers() []FileRecord {
	var rest []FileRecord
	for _, m := range g.Members {
		if m.Path != g.Keeper {
			rest = append(rest, m)
		}
	}
	return rest
}

// Validate checks the exactly-one-keeper invariant.
func (g *DuplicateGroup) Validate() error {
	if g.Key == "" {
		return errors.New("duplicate group key is required")
	}
	if len(g.Members) < 2 {
		return fmt.Errorf("duplicate group %q needs at least 2 members, got %d", g.Key, len(g.Members))
	}
	keepers := 0
	for _, m := range g.Members {
		if m.Path == g.Keeper {
			keepers++
		}
	}
	if keepers != 1 {
		return fmt.Errorf("duplicate group %q has %d keeper matches, want exactly 1", g.Key, keepers)
	}
	return nil
}
