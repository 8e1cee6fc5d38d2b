// Package report turns scan and apply results into human- and
// machine-readable summaries. Building is pure; rendering targets text,
// Markdown, JSON and HTML from the same Summary.
package report

import (
	"sort"
	"time"

	"github.com/harrison/shipshape/internal/models"
)

// KindCount is one row of the issues-by-kind table.
type KindCount struct {
	Kind     models.IssueKind `json:"kind"`
	Severity models.Severity  `json:"severity"`
	Count    int              `json:"count"`
}

// ExtensionCount is one row of the extension table.
type ExtensionCount struct {
	Extension string `json:"extension"`
	Count     int    `json:"count"`
}

// MIMECount is one row of the MIME type table.
type MIMECount struct {
	MIME  string `json:"mime"`
	Count int    `json:"count"`
}

// FlaggedFile lists one file together with every issue kind raised
// against it.
type FlaggedFile struct {
	Path     string             `json:"path"`
	Severity models.Severity    `json:"severity"` // Worst severity across the file's issues
	Kinds    []models.IssueKind `json:"kinds"`
}

// ExecutionSummary condenses an apply run for the report.
type ExecutionSummary struct {
	PlanID    string           `json:"plan_id"`
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Skipped   int              `json:"skipped"`
	Cancelled bool             `json:"cancelled"`
	Duration  time.Duration    `json:"duration_ns"`
	Failures  []models.Outcome `json:"failures,omitempty"`
}

// Summary is the flattened, render-ready view of one run. Every renderer
// works from this struct alone.
type Summary struct {
	ScanID       string        `json:"scan_id"`
	Root         string        `json:"root"`
	GeneratedAt  time.Time     `json:"generated_at"`
	ScannedAt    time.Time     `json:"scanned_at"`
	ScanDuration time.Duration `json:"scan_duration_ns"`
	Incomplete   bool          `json:"incomplete"`

	TotalFiles   int   `json:"total_files"`
	TotalFolders int   `json:"total_folders"`
	TotalBytes   int64 `json:"total_bytes"`

	TotalIssues   int         `json:"total_issues"`
	CriticalCount int         `json:"critical_count"`
	WarningCount  int         `json:"warning_count"`
	KindCounts    []KindCount `json:"kind_counts"`

	DuplicateGroupCount int   `json:"duplicate_group_count"`
	ReclaimableBytes    int64 `json:"reclaimable_bytes"`

	Extensions    []ExtensionCount          `json:"extensions"`
	MIMETypes     []MIMECount               `json:"mime_types"`
	PathBuckets   []models.PathLengthBucket `json:"path_buckets"`
	AvgPathLength float64                   `json:"avg_path_length"`
	MaxPathLength int                       `json:"max_path_length"`

	FlaggedFiles []FlaggedFile `json:"flagged_files"`

	// Execution is nil when the report covers a scan without an apply.
	Execution *ExecutionSummary `json:"execution,omitempty"`
}

// Build assembles a Summary from a scanned-and-analyzed result, the
// duplicate groups found for it, and an optional apply result. The
// result's issue list is taken as-is; callers that ran detection attach
// the combined issue set to the result first.
func Build(result *models.ScanResult, groups []models.DuplicateGroup, exec *models.ExecutionResult) *Summary {
	s := &Summary{
		ScanID:       result.ID,
		Root:         result.Root,
		GeneratedAt:  time.Now().UTC(),
		ScannedAt:    result.StartedAt,
		ScanDuration: result.FinishedAt.Sub(result.StartedAt),
		Incomplete:   result.Incomplete,

		TotalFiles:    result.Stats.TotalFiles,
		TotalFolders:  result.Stats.TotalFolders,
		TotalBytes:    result.Stats.TotalBytes,
		PathBuckets:   result.Stats.PathBuckets,
		AvgPathLength: result.Stats.AvgPathLength,
		MaxPathLength: result.Stats.MaxPathLength,

		TotalIssues: len(result.Issues),
	}

	severities := result.CountBySeverity()
	s.CriticalCount = severities[models.SeverityCritical]
	s.WarningCount = severities[models.SeverityWarning]

	s.KindCounts = kindCounts(result)
	s.Extensions = extensionCounts(result.Stats.ExtensionCounts)
	s.MIMETypes = mimeCounts(result.Records)
	s.FlaggedFiles = flaggedFiles(result)

	s.DuplicateGroupCount = len(groups)
	for _, g := range groups {
		s.ReclaimableBytes += g.WastedBytes
	}

	s.Execution = NewExecutionSummary(exec)

	return s
}

// NewExecutionSummary condenses an apply result for reporting. It exists
// separately from Build so a stored scan summary can have a later apply
// attached before re-rendering. A nil exec yields nil.
func NewExecutionSummary(exec *models.ExecutionResult) *ExecutionSummary {
	if exec == nil {
		return nil
	}
	return &ExecutionSummary{
		PlanID:    exec.PlanID,
		Total:     exec.Total,
		Succeeded: exec.Succeeded,
		Failed:    exec.Failed,
		Skipped:   exec.Skipped,
		Cancelled: exec.Cancelled,
		Duration:  exec.Duration,
		Failures:  exec.FailedOutcomes(),
	}
}

// kindCounts tallies issues per kind, most frequent first. The severity
// shown per kind is the one stamped on its issues.
func kindCounts(result *models.ScanResult) []KindCount {
	severityByKind := make(map[models.IssueKind]models.Severity)
	for _, issue := range result.Issues {
		severityByKind[issue.Kind] = issue.Severity
	}

	counts := result.CountByKind()
	rows := make([]KindCount, 0, len(counts))
	for kind, count := range counts {
		rows = append(rows, KindCount{Kind: kind, Severity: severityByKind[kind], Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Kind < rows[j].Kind
	})
	return rows
}

func extensionCounts(byExt map[string]int) []ExtensionCount {
	rows := make([]ExtensionCount, 0, len(byExt))
	for ext, count := range byExt {
		rows = append(rows, ExtensionCount{Extension: ext, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Extension < rows[j].Extension
	})
	return rows
}

func mimeCounts(records []models.FileRecord) []MIMECount {
	byMIME := make(map[string]int)
	for _, r := range records {
		if r.MIMEType != "" {
			byMIME[r.MIMEType]++
		}
	}
	rows := make([]MIMECount, 0, len(byMIME))
	for mime, count := range byMIME {
		rows = append(rows, MIMECount{MIME: mime, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].MIME < rows[j].MIME
	})
	return rows
}

func flaggedFiles(result *models.ScanResult) []FlaggedFile {
	byPath := result.IssuesByPath()
	files := make([]FlaggedFile, 0, len(byPath))
	for path, issues := range byPath {
		f := FlaggedFile{Path: path, Severity: models.SeverityWarning}
		seen := make(map[models.IssueKind]bool, len(issues))
		for _, issue := range issues {
			if !seen[issue.Kind] {
				seen[issue.Kind] = true
				f.Kinds = append(f.Kinds, issue.Kind)
			}
			if issue.Severity == models.SeverityCritical {
				f.Severity = models.SeverityCritical
			}
		}
		sort.Slice(f.Kinds, func(i, j int) bool { return f.Kinds[i] < f.Kinds[j] })
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}
