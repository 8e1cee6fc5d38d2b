package detect

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/harrison/shipshape/internal/models"
)

// DuplicateFinder groups records that share content. Hashed records group
// by digest; records without a hash (above the hash threshold, unreadable,
// or hashing disabled) fall back to a lowercased name plus size key. The
// two key spaces never mix: a hashed file and an unhashed file are never
// considered duplicates of each other.
type DuplicateFinder struct {
	policy models.KeepPolicy
}

func NewDuplicateFinder(policy models.KeepPolicy) *DuplicateFinder {
	return &DuplicateFinder{policy: policy}
}

// Find returns the duplicate groups in the record set, sorted by keeper
// path. Singleton keys produce no group.
func (f *DuplicateFinder) Find(records []models.FileRecord) []models.DuplicateGroup {
	byHash := make(map[string][]models.FileRecord)
	byNameSize := make(map[string][]models.FileRecord)

	for _, r := range records {
		if r.Hash != "" {
			byHash[r.Hash] = append(byHash[r.Hash], r)
			continue
		}
		key := strings.ToLower(r.Name) + "|" + strconv.FormatInt(r.Size, 10)
		byNameSize[key] = append(byNameSize[key], r)
	}

	var groups []models.DuplicateGroup
	for key, members := range byHash {
		if g, ok := f.buildGroup(key, models.GroupKeyHash, members); ok {
			groups = append(groups, g)
		}
	}
	for key, members := range byNameSize {
		if g, ok := f.buildGroup(key, models.GroupKeyNameSize, members); ok {
			groups = append(groups, g)
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Keeper != groups[j].Keeper {
			return groups[i].Keeper < groups[j].Keeper
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// Issues converts groups into one duplicate issue per non-keeper. The
// keeper is never flagged.
func (f *DuplicateFinder) Issues(groups []models.DuplicateGroup) []models.Issue {
	var issues []models.Issue
	for i := range groups {
		g := &groups[i]
		for _, m := range g.NonKeepers() {
			issues = append(issues, models.Issue{
				Path:        m.Path,
				Kind:        models.KindDuplicate,
				Description: fmt.Sprintf("duplicate of %s", g.Keeper),
				Detail: map[string]string{
					models.DetailDuplicateOf: g.Keeper,
					models.DetailGroupKey:    g.Key,
				},
			})
		}
	}
	return issues
}

func (f *DuplicateFinder) buildGroup(key string, kind models.GroupKeyKind, members []models.FileRecord) (models.DuplicateGroup, bool) {
	if len(members) < 2 {
		return models.DuplicateGroup{}, false
	}

	ordered := make([]models.FileRecord, len(members))
	copy(ordered, members)
	sort.Slice(ordered, func(i, j int) bool { return f.prefer(ordered[i], ordered[j]) })

	var wasted int64
	for _, m := range ordered[1:] {
		wasted += m.Size
	}

	return models.DuplicateGroup{
		Key:         key,
		KeyKind:     kind,
		Members:     ordered,
		Keeper:      ordered[0].Path,
		WastedBytes: wasted,
	}, true
}

// prefer reports whether a should be kept over b under the active policy.
// Ties always fall through to path order, so keeper selection is
// deterministic for identical inputs.
func (f *DuplicateFinder) prefer(a, b models.FileRecord) bool {
	switch f.policy {
	case models.KeepNewestCreated:
		if !a.Created.Equal(b.Created) {
			return a.Created.After(b.Created)
		}
	case models.KeepSmallestSize:
		if a.Size != b.Size {
			return a.Size < b.Size
		}
	case models.KeepLargestSize:
		if a.Size != b.Size {
			return a.Size > b.Size
		}
	default: // earliest-created
		if !a.Created.Equal(b.Created) {
			return a.Created.Before(b.Created)
		}
	}
	return a.Path < b.Path
}
