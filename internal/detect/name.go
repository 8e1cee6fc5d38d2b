package detect

import (
	"github.com/harrison/shipshape/internal/models"
	"github.com/harrison/shipshape/internal/rules"
)

// NameDetector flags records whose base name violates the naming rules.
// It checks with the same ruleset the planner fixes with, so a flagged
// name always has a suggestion and a clean name is never touched.
type NameDetector struct {
	rules *rules.Ruleset
}

func NewNameDetector(rs *rules.Ruleset) *NameDetector {
	return &NameDetector{rules: rs}
}

func (d *NameDetector) Name() string { return "naming" }

func (d *NameDetector) Detect(records []models.FileRecord) []models.Issue {
	var issues []models.Issue
	for i := range records {
		r := &records[i]
		for _, v := range d.rules.CheckName(r.Name) {
			issues = append(issues, models.Issue{
				Path:        r.Path,
				Kind:        v.Kind,
				Description: v.Message,
				Detail:      v.Detail,
			})
		}
	}
	return issues
}
