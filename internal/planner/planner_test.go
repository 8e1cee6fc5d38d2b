package planner

import (
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/shipshape/internal/models"
	"github.com/harrison/shipshape/internal/rules"
)

func rec(rel string) models.FileRecord {
	name := filepath.Base(rel)
	return models.FileRecord{
		Path:      filepath.Join("/src", rel),
		RelPath:   rel,
		Name:      name,
		Extension: filepath.Ext(name),
		Size:      10,
	}
}

func scanFixture(records ...models.FileRecord) *models.ScanResult {
	return &models.ScanResult{
		ID:      "scan-1",
		Root:    "/src",
		Records: records,
		Stats:   models.ComputeStats(records, 0),
	}
}

func issueOn(r models.FileRecord, kind models.IssueKind) models.Issue {
	return models.Issue{Path: r.Path, Kind: kind, Severity: models.SeverityCritical}
}

// TestBuildPlanRenamesBadNames verifies a naming issue produces a rename
// action with the suggested name under the target root.
func TestBuildPlanRenamesBadNames(t *testing.T) {
	r := rec("reports/bad?file.txt")
	p := New(rules.Default(), nil)

	plan, err := p.BuildPlan(scanFixture(r), []models.Issue{issueOn(r, models.KindIllegalCharacter)}, nil, "/dst")
	require.NoError(t, err)
	require.Len(t, plan.Actions, 1)

	a := plan.Actions[0]
	assert.Equal(t, r.Path, a.Source)
	assert.Equal(t, filepath.Join("/dst", "reports", "bad_file.txt"), a.Target)
	assert.Equal(t, models.ActionRename, a.Kind)
	assert.Equal(t, []models.IssueKind{models.KindIllegalCharacter}, a.Resolves)

	assert.Equal(t, "/src", plan.Root)
	assert.Equal(t, "/dst", plan.TargetRoot)
	assert.Equal(t, 256, plan.PathLimit)
	assert.NotEmpty(t, plan.ID)
}

// TestBuildPlanFixesFolderSegments verifies every directory segment is fixed
// when the file's own issue triggers an action.
func TestBuildPlanFixesFolderSegments(t *testing.T) {
	r := rec("_vti_cnf/report?.docx")
	p := New(rules.Default(), nil)

	plan, err := p.BuildPlan(scanFixture(r), []models.Issue{issueOn(r, models.KindIllegalCharacter)}, nil, "/dst")
	require.NoError(t, err)
	require.Len(t, plan.Actions, 1)

	assert.Equal(t, filepath.Join("/dst", "SP_cnf", "report_.docx"), plan.Actions[0].Target)
}

// TestBuildPlanLeavesCleanFilesAlone verifies records without fixable
// issues, even under oddly named folders, get no action.
func TestBuildPlanLeavesCleanFilesAlone(t *testing.T) {
	clean := rec("_vti_cnf/clean.txt")
	frozen := rec("docs/frozen.txt")
	p := New(rules.Default(), nil)

	issues := []models.Issue{issueOn(frozen, models.KindReadOnly)}
	plan, err := p.BuildPlan(scanFixture(clean, frozen), issues, nil, "/dst")
	require.NoError(t, err)
	assert.Empty(t, plan.Actions, "attribute issues carry no plan action")
}

// TestBuildPlanShortensLongPaths verifies a path-too-long issue resolves
// through the strategy chain, producing a move, unless substituting the
// target root already brings the path under the limit.
func TestBuildPlanShortensLongPaths(t *testing.T) {
	rs, err := rules.New(rules.Params{
		MaxNameLength: 128,
		MaxPathLength: 30,
		IllegalChars:  rules.DefaultIllegalChars,
	})
	require.NoError(t, err)
	p := New(rs, nil)

	t.Run("shorter target root suffices", func(t *testing.T) {
		r := rec("Development/file.txt") // /dst form is 25 runes
		plan, err := p.BuildPlan(scanFixture(r), []models.Issue{issueOn(r, models.KindPathTooLong)}, nil, "/dst")
		require.NoError(t, err)
		require.Len(t, plan.Actions, 1)

		a := plan.Actions[0]
		assert.Equal(t, models.ActionRename, a.Kind)
		assert.Equal(t, filepath.Join("/dst", "Development", "file.txt"), a.Target)
	})

	t.Run("chain reshapes what the root swap cannot fix", func(t *testing.T) {
		r := rec("Development/Engineering/file.txt") // /dst form is 37 runes
		plan, err := p.BuildPlan(scanFixture(r), []models.Issue{issueOn(r, models.KindPathTooLong)}, nil, "/dst")
		require.NoError(t, err)
		require.Len(t, plan.Actions, 1)

		a := plan.Actions[0]
		assert.Equal(t, models.ActionMove, a.Kind)
		assert.Equal(t, filepath.Join("/dst", "Dev~ent", "Eng~ing", "file.txt"), a.Target)
		assert.LessOrEqual(t, utf8.RuneCountInString(a.Target), 30)
		assert.Equal(t, ".txt", filepath.Ext(a.Target))
		assert.Equal(t, []models.IssueKind{models.KindPathTooLong}, a.Resolves)
	})
}

// TestBuildPlanDuplicates verifies the keeper is always actioned, even when
// clean, and non-keepers become skips referencing the keeper's resolved
// target. A non-keeper's own naming issues are dropped.
func TestBuildPlanDuplicates(t *testing.T) {
	keeperRec := rec("docs/original.txt")
	dupeRec := rec("backup/copy?.txt")
	group := models.DuplicateGroup{
		Key:         "aaa",
		KeyKind:     models.GroupKeyHash,
		Members:     []models.FileRecord{keeperRec, dupeRec},
		Keeper:      keeperRec.Path,
		WastedBytes: 10,
	}
	issues := []models.Issue{
		issueOn(dupeRec, models.KindIllegalCharacter),
		issueOn(dupeRec, models.KindDuplicate),
	}

	p := New(rules.Default(), nil)
	plan, err := p.BuildPlan(scanFixture(keeperRec, dupeRec), issues, []models.DuplicateGroup{group}, "/dst")
	require.NoError(t, err)
	require.Len(t, plan.Actions, 2)

	skip := plan.Actions[0]
	assert.Equal(t, dupeRec.Path, skip.Source)
	assert.Equal(t, models.ActionSkipDuplicate, skip.Kind)
	assert.Empty(t, skip.Target)
	assert.Equal(t, filepath.Join("/dst", "docs", "original.txt"), skip.KeeperTarget)
	assert.Equal(t, []models.IssueKind{models.KindDuplicate}, skip.Resolves)

	keep := plan.Actions[1]
	assert.Equal(t, keeperRec.Path, keep.Source)
	assert.Equal(t, models.ActionRename, keep.Kind)
	assert.Equal(t, filepath.Join("/dst", "docs", "original.txt"), keep.Target)
	assert.Empty(t, keep.Resolves, "clean keeper resolves nothing, it is kept for audit")
}

// TestBuildPlanConflictSuffixes verifies colliding targets get numeric
// suffixes before the extension, assigned in source path order, with
// collisions judged case-insensitively.
func TestBuildPlanConflictSuffixes(t *testing.T) {
	p := New(rules.Default(), nil)

	t.Run("same suggested name", func(t *testing.T) {
		star := rec("a*.txt")
		question := rec("a?.txt")
		issues := []models.Issue{
			issueOn(star, models.KindIllegalCharacter),
			issueOn(question, models.KindIllegalCharacter),
		}

		plan, err := p.BuildPlan(scanFixture(star, question), issues, nil, "/dst")
		require.NoError(t, err)
		require.Len(t, plan.Actions, 2)

		bySource := map[string]models.FixAction{}
		for _, a := range plan.Actions {
			bySource[a.Source] = a
		}
		assert.Equal(t, "/dst/a_.txt", bySource[star.Path].Target, "first claimant in path order keeps the plain name")
		assert.Equal(t, "/dst/a__1.txt", bySource[question.Path].Target)
	})

	t.Run("case-insensitive collision", func(t *testing.T) {
		upper := rec("Report?.txt")
		lower := rec("report*.txt")
		issues := []models.Issue{
			issueOn(upper, models.KindIllegalCharacter),
			issueOn(lower, models.KindIllegalCharacter),
		}

		plan, err := p.BuildPlan(scanFixture(upper, lower), issues, nil, "/dst")
		require.NoError(t, err)

		bySource := map[string]models.FixAction{}
		for _, a := range plan.Actions {
			bySource[a.Source] = a
		}
		assert.Equal(t, "/dst/Report_.txt", bySource[upper.Path].Target)
		assert.Equal(t, "/dst/report__1.txt", bySource[lower.Path].Target)
	})
}

// TestBuildPlanConflictRespectsNameLimit verifies suffixed names are
// re-trimmed to fit the name length limit.
func TestBuildPlanConflictRespectsNameLimit(t *testing.T) {
	rs, err := rules.New(rules.Params{
		MaxNameLength: 10,
		MaxPathLength: 256,
		IllegalChars:  rules.DefaultIllegalChars,
	})
	require.NoError(t, err)
	p := New(rs, nil)

	star := rec("abcdefgh*.txt")
	question := rec("abcdefgh?.txt")
	issues := []models.Issue{
		issueOn(star, models.KindIllegalCharacter),
		issueOn(question, models.KindIllegalCharacter),
	}

	plan, err := p.BuildPlan(scanFixture(star, question), issues, nil, "/dst")
	require.NoError(t, err)

	bySource := map[string]models.FixAction{}
	for _, a := range plan.Actions {
		bySource[a.Source] = a
	}
	assert.Equal(t, "/dst/abcdef.txt", bySource[star.Path].Target)
	assert.Equal(t, "/dst/abcd_1.txt", bySource[question.Path].Target)
	assert.Equal(t, 10, utf8.RuneCountInString(filepath.Base(bySource[question.Path].Target)))
}

// TestBuildPlanDeterministic verifies two builds over the same inputs
// produce identical actions.
func TestBuildPlanDeterministic(t *testing.T) {
	a := rec("x/a?.txt")
	b := rec("x/a*.txt")
	keeperRec := rec("docs/kept.txt")
	dupeRec := rec("docs/extra.txt")
	group := models.DuplicateGroup{
		Key:     "hh",
		KeyKind: models.GroupKeyHash,
		Members: []models.FileRecord{keeperRec, dupeRec},
		Keeper:  keeperRec.Path,
	}
	issues := []models.Issue{
		issueOn(a, models.KindIllegalCharacter),
		issueOn(b, models.KindIllegalCharacter),
		issueOn(dupeRec, models.KindDuplicate),
	}
	result := scanFixture(a, b, keeperRec, dupeRec)

	p := New(rules.Default(), nil)
	first, err := p.BuildPlan(result, issues, []models.DuplicateGroup{group}, "/dst")
	require.NoError(t, err)
	second, err := p.BuildPlan(result, issues, []models.DuplicateGroup{group}, "/dst")
	require.NoError(t, err)

	assert.Equal(t, first.Actions, second.Actions)
}

// TestBuildPlanRejectsUnknownRecord verifies an issue pointing outside the
// record set is an input error, not a silent drop.
func TestBuildPlanRejectsUnknownRecord(t *testing.T) {
	r := rec("a.txt")
	ghost := models.Issue{Path: "/src/ghost?.txt", Kind: models.KindIllegalCharacter}

	p := New(rules.Default(), nil)
	_, err := p.BuildPlan(scanFixture(r), []models.Issue{ghost}, nil, "/dst")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown record")
}

// TestBuildPlanRequiresTargetRoot verifies the empty target root is
// rejected.
func TestBuildPlanRequiresTargetRoot(t *testing.T) {
	p := New(rules.Default(), nil)
	_, err := p.BuildPlan(scanFixture(), nil, nil, "")
	require.Error(t, err)
}
