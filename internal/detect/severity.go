package detect

import (
	"sort"

	"github.com/harrison/shipshape/internal/models"
)

// applySeverities stamps each issue with the severity its kind maps to.
func applySeverities(issues []models.Issue, table map[models.IssueKind]models.Severity) {
	for i := range issues {
		if sev, ok := table[issues[i].Kind]; ok {
			issues[i].Severity = sev
		}
	}
}

// sortIssues orders issues by path, then kind. The sort is stable so each
// detector's within-path ordering survives.
func sortIssues(issues []models.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Path != issues[j].Path {
			return issues[i].Path < issues[j].Path
		}
		return issues[i].Kind < issues[j].Kind
	})
}
