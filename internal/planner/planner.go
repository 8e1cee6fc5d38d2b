// Package planner turns detected issues and duplicate groups into an
// ordered fix plan. Plan construction is pure: no I/O, and identical inputs
// always produce identical actions.
package planner

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/harrison/shipshape/internal/logger"
	"github.com/harrison/shipshape/internal/models"
	"github.com/harrison/shipshape/internal/rules"
)

// fixableKinds are the issue kinds a plan action can resolve. Attribute
// issues (read-only, zero-byte, unreadable) carry no action; read-only
// sources are handled by the executor's clear-before-write step.
var fixableKinds = map[models.IssueKind]bool{
	models.KindNameTooLong:      true,
	models.KindIllegalCharacter: true,
	models.KindReservedName:     true,
	models.KindIllegalPrefix:    true,
	models.KindIllegalSuffix:    true,
	models.KindPathTooLong:      true,
}

// Planner builds fix plans from one ruleset.
type Planner struct {
	rules  *rules.Ruleset
	logger logger.Logger
}

// New creates a Planner. A nil log disables logging.
func New(rs *rules.Ruleset, log logger.Logger) *Planner {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Planner{rules: rs, logger: log}
}

// BuildPlan maps issues and duplicate groups onto fix actions under the
// target root. Sources are processed in path order; every group keeper gets
// an action even when clean, so skip actions can reference the keeper's
// resolved target. The returned plan has passed its own validation.
func (p *Planner) BuildPlan(result *models.ScanResult, issues []models.Issue, groups []models.DuplicateGroup, targetRoot string) (*models.FixPlan, error) {
	if targetRoot == "" {
		return nil, fmt.Errorf("target root is required")
	}
	targetRoot = filepath.Clean(targetRoot)

	records := models.IndexRecords(result.Records)

	// Non-keepers are skipped outright; their naming issues are moot
	// because the file never reaches the destination.
	skip := make(map[string]*models.DuplicateGroup)
	keeper := make(map[string]bool)
	for i := range groups {
		g := &groups[i]
		keeper[g.Keeper] = true
		for _, m := range g.NonKeepers() {
			skip[m.Path] = g
		}
	}

	kindsByPath := make(map[string]map[models.IssueKind]bool)
	for _, issue := range issues {
		if !fixableKinds[issue.Kind] || skip[issue.Path] != nil {
			continue
		}
		if kindsByPath[issue.Path] == nil {
			kindsByPath[issue.Path] = make(map[models.IssueKind]bool)
		}
		kindsByPath[issue.Path][issue.Kind] = true
	}

	sources := make([]string, 0, len(kindsByPath)+len(keeper))
	for path := range kindsByPath {
		sources = append(sources, path)
	}
	for path := range keeper {
		if kindsByPath[path] == nil {
			sources = append(sources, path)
		}
	}
	sort.Strings(sources)

	claimed := make(map[string]string, len(sources))
	targetOf := make(map[string]string, len(sources))
	actions := make([]models.FixAction, 0, len(sources)+len(skip))

	for _, source := range sources {
		rec, ok := records[source]
		if !ok {
			return nil, fmt.Errorf("issue references unknown record %q", source)
		}

		target, moved, err := p.resolveTarget(targetRoot, rec)
		if err != nil {
			return nil, err
		}
		target = p.disambiguate(claimed, target)
		claimed[strings.ToLower(target)] = source
		targetOf[source] = target

		kind := models.ActionRename
		if moved {
			kind = models.ActionMove
		}
		actions = append(actions, models.FixAction{
			Source:   source,
			Target:   target,
			Kind:     kind,
			Resolves: sortedKinds(kindsByPath[source]),
		})
	}

	for path, g := range skip {
		actions = append(actions, models.FixAction{
			Source:       path,
			Kind:         models.ActionSkipDuplicate,
			Resolves:     []models.IssueKind{models.KindDuplicate},
			KeeperTarget: targetOf[g.Keeper],
		})
	}

	sort.Slice(actions, func(i, j int) bool { return actions[i].Source < actions[j].Source })

	plan := &models.FixPlan{
		ID:         uuid.New().String(),
		Root:       result.Root,
		TargetRoot: targetRoot,
		PathLimit:  p.rules.MaxPathLength,
		CreatedAt:  time.Now().UTC(),
		Actions:    actions,
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("plan failed self-validation: %w", err)
	}

	p.logger.LogDebug(fmt.Sprintf("plan %s: %d actions for target %s", plan.ID, len(actions), targetRoot))
	return plan, nil
}

// resolveTarget rebuilds the record's relative path under the target root
// with every segment fixed. When the fixed path still exceeds the limit,
// the shortening chain reshapes it, which relocates the file.
func (p *Planner) resolveTarget(targetRoot string, rec *models.FileRecord) (target string, moved bool, err error) {
	if rec.RelPath == "" {
		return "", false, fmt.Errorf("record %q has no relative path", rec.Path)
	}

	segs := strings.Split(filepath.ToSlash(rec.RelPath), "/")
	for i := 0; i < len(segs)-1; i++ {
		segs[i] = p.rules.SuggestFolderName(segs[i])
	}
	segs[len(segs)-1] = p.rules.SuggestName(segs[len(segs)-1])
	fixedRel := strings.Join(segs, "/")

	target = filepath.Join(targetRoot, filepath.FromSlash(fixedRel))
	if utf8.RuneCountInString(target) <= p.rules.MaxPathLength {
		return target, false, nil
	}

	shortened, err := p.rules.ShortenPath(targetRoot, fixedRel)
	if err != nil {
		return "", false, err
	}
	return shortened, true, nil
}

// disambiguate returns target unchanged when unclaimed, otherwise the first
// free numbered variant. Claims are keyed on the lowercased path because
// the destination treats names case-insensitively.
func (p *Planner) disambiguate(claimed map[string]string, target string) string {
	if _, taken := claimed[strings.ToLower(target)]; !taken {
		return target
	}

	dir, file := filepath.Split(target)
	stem, ext := rules.SplitName(file)
	extRunes := utf8.RuneCountInString(ext)

	for n := 1; ; n++ {
		suffix := "_" + strconv.Itoa(n)

		budget := p.rules.MaxNameLength - extRunes - utf8.RuneCountInString(suffix)
		if pathBudget := p.rules.MaxPathLength - utf8.RuneCountInString(dir) - extRunes - utf8.RuneCountInString(suffix); pathBudget < budget {
			budget = pathBudget
		}
		if budget < 1 {
			budget = 1
		}

		s := stem
		if r := []rune(s); len(r) > budget {
			s = strings.TrimRight(string(r[:budget]), " .")
			if s == "" {
				r = []rune(p.rules.Placeholder)
				if len(r) > budget {
					r = r[:budget]
				}
				s = string(r)
			}
		}

		candidate := dir + s + suffix + ext
		if _, taken := claimed[strings.ToLower(candidate)]; !taken {
			return candidate
		}
	}
}

func sortedKinds(set map[models.IssueKind]bool) []models.IssueKind {
	if len(set) == 0 {
		return nil
	}
	kinds := make([]models.IssueKind, 0, len(set))
	for k := range set {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
