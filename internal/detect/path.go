package detect

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/harrison/shipshape/internal/models"
	"github.com/harrison/shipshape/internal/rules"
)

// PathDetector flags records whose full path, counted in runes, exceeds
// the configured limit.
type PathDetector struct {
	rules *rules.Ruleset
}

func NewPathDetector(rs *rules.Ruleset) *PathDetector {
	return &PathDetector{rules: rs}
}

func (d *PathDetector) Name() string { return "path-length" }

func (d *PathDetector) Detect(records []models.FileRecord) []models.Issue {
	var issues []models.Issue
	for i := range records {
		r := &records[i]
		n := utf8.RuneCountInString(r.Path)
		if n <= d.rules.MaxPathLength {
			continue
		}
		issues = append(issues, models.Issue{
			Path:        r.Path,
			Kind:        models.KindPathTooLong,
			Description: fmt.Sprintf("path is %d characters, limit is %d", n, d.rules.MaxPathLength),
			Detail: map[string]string{
				models.DetailLength: strconv.Itoa(n),
				models.DetailLimit:  strconv.Itoa(d.rules.MaxPathLength),
			},
		})
	}
	return issues
}
