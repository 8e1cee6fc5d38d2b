// Package detect turns a completed scan into issues and duplicate groups.
// Detection runs after the walk finishes because duplicate grouping and
// severity counting need the full record set; the individual detectors are
// pure functions over records, with no I/O.
package detect

import (
	"fmt"

	"github.com/harrison/shipshape/internal/config"
	"github.com/harrison/shipshape/internal/logger"
	"github.com/harrison/shipshape/internal/models"
)

// Detector inspects the full record set and reports violations. Detectors
// leave Severity unset; the Runner resolves it from the configured table.
type Detector interface {
	Name() string
	Detect(records []models.FileRecord) []models.Issue
}

// Runner drives all detectors plus duplicate grouping over one scan.
type Runner struct {
	detectors []Detector
	dupes     *DuplicateFinder
	table     map[models.IssueKind]models.Severity
	logger    logger.Logger
}

// NewRunner builds a Runner from configuration. The error surfaces invalid
// rule parameters.
func NewRunner(cfg *config.Config, log logger.Logger) (*Runner, error) {
	rs, err := cfg.Ruleset()
	if err != nil {
		return nil, err
	}
	table, err := cfg.SeverityTable()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.KeepPolicyValue()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Runner{
		detectors: []Detector{
			NewNameDetector(rs),
			NewPathDetector(rs),
			NewAttributeDetector(),
		},
		dupes:  NewDuplicateFinder(policy),
		table:  table,
		logger: log,
	}, nil
}

// Analyze merges the walker's own issues with detector output and duplicate
// issues, resolves severities, and sorts everything by path then kind. The
// scan result itself is not modified.
func (r *Runner) Analyze(result *models.ScanResult) ([]models.Issue, []models.DuplicateGroup) {
	issues := make([]models.Issue, 0, len(result.Issues))
	issues = append(issues, result.Issues...)

	for _, d := range r.detectors {
		found := d.Detect(result.Records)
		r.logger.LogDebug(fmt.Sprintf("%s detector found %d issues", d.Name(), len(found)))
		issues = append(issues, found...)
	}

	groups := r.dupes.Find(result.Records)
	issues = append(issues, r.dupes.Issues(groups)...)
	r.logger.LogDebug(fmt.Sprintf("%d duplicate groups", len(groups)))

	applySeverities(issues, r.table)
	sortIssues(issues)
	return issues, groups
}
