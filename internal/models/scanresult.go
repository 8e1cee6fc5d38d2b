package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// pathBucketLimits are the upper bounds of the fixed path-length histogram
// buckets. Each path is assigned to the first bucket it does not exceed; a
// final unbounded bucket catches everything longer.
var pathBucketLimits = []int{50, 100, 150, 200, 250, 300}

// PathLengthBucket is one bucket of the path-length histogram.
type PathLengthBucket struct {
	Label string `json:"label"` // "<=50" ... ">300"
	Max   int    `json:"max"`   // Upper bound, -1 for the unbounded bucket
	Count int    `json:"count"` // Paths in this bucket
}

// ScanStats aggregates counters over a completed scan.
type ScanStats struct {
	TotalFiles      int                `json:"total_files"`
	TotalFolders    int                `json:"total_folders"`
	TotalBytes      int64              `json:"total_bytes"`
	ExtensionCounts map[string]int     `json:"extension_counts"` // Lower-cased extension -> file count
	PathBuckets     []PathLengthBucket `json:"path_buckets"`
	AvgPathLength   float64            `json:"avg_path_length"`
	MaxPathLength   int                `json:"max_path_length"`
}

// ComputeStats builds ScanStats from a record set and the folder count
// accumulated during enumeration.
func ComputeStats(records []FileRecord, folders int) ScanStats {
	stats := ScanStats{
		TotalFiles:      len(records),
		TotalFolders:    folders,
		ExtensionCounts: make(map[string]int),
		PathBuckets:     PathLengthBuckets(records),
	}

	totalLen := 0
	for _, r := range records {
		stats.TotalBytes += r.Size

		ext := strings.ToLower(r.Extension)
		if ext == "" {
			ext = "(none)"
		}
		stats.ExtensionCounts[ext]++

		if l := utf8.RuneCountInString(r.Path); l > 0 {
			totalLen += l
			if l > stats.MaxPathLength {
				stats.MaxPathLength = l
			}
		}
	}
	if len(records) > 0 {
		stats.AvgPathLength = float64(totalLen) / float64(len(records))
	}

	return stats
}

// PathLengthBuckets assigns each record's full path length, counted in
// runes, to the first fixed bucket it does not exceed.
func PathLengthBuckets(records []FileRecord) []PathLengthBucket {
	buckets := make([]PathLengthBucket, 0, len(pathBucketLimits)+1)
	for _, limit := range pathBucketLimits {
		buckets = append(buckets, PathLengthBucket{Label: fmt.Sprintf("<=%d", limit), Max: limit})
	}
	buckets = append(buckets, PathLengthBucket{Label: fmt.Sprintf(">%d", pathBucketLimits[len(pathBucketLimits)-1]), Max: -1})

	for _, r := range records {
		l := utf8.RuneCountInString(r.Path)
		placed := false
		for i := range buckets[:len(buckets)-1] {
			if l <= buckets[i].Max {
				buckets[i].Count++
				placed = true
				break
			}
		}
		if !placed {
			buckets[len(buckets)-1].Count++
		}
	}

	return buckets
}

// ScanResult is the complete output of one scan: the record set, the issues
// found by the walker and the detectors, and the aggregate counters. It is
// assembled once per scan and treated as read-only by everything downstream.
type ScanResult struct {
	ID         string       `json:"id"`         // Unique scan identifier
	Root       string       `json:"root"`       // Absolute scan root
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Records    []FileRecord `json:"records"`
	Issues     []Issue      `json:"issues"`
	Stats      ScanStats    `json:"stats"`
	Incomplete bool         `json:"incomplete"` // True when the walk was cancelled before finishing
}

// Validate checks the cross-record invariants: the file total matches the
// record count and every issue references a known record path.
func (r *ScanResult) Validate() error {
	if r.Root == "" {
		return fmt.Errorf("scan result root is required")
	}
	if r.Stats.TotalFiles != len(r.Records) {
		return fmt.Errorf("total_files is %d but %d records were collected", r.Stats.TotalFiles, len(r.Records))
	}

	known := make(map[string]bool, len(r.Records))
	for i := range r.Records {
		if err := r.Records[i].Validate(); err != nil {
			return err
		}
		if known[r.Records[i].Path] {
			return fmt.Errorf("record path %q appears more than once", r.Records[i].Path)
		}
		known[r.Records[i].Path] = true
	}

	for i := range r.Issues {
		if err := r.Issues[i].Validate(); err != nil {
			return err
		}
		if !known[r.Issues[i].Path] {
			return fmt.Errorf("issue references unknown path %q", r.Issues[i].Path)
		}
	}

	return nil
}

// IssuesByPath groups the result's issues by their subject path.
func (r *ScanResult) IssuesByPath() map[string][]Issue {
	byPath := make(map[string][]Issue)
	for _, issue := range r.Issues {
		byPath[issue.Path] = append(byPath[issue.Path], issue)
	}
	return byPath
}

// CountBySeverity tallies issues per severity level.
func (r *ScanResult) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int)
	for _, issue := range r.Issues {
		counts[issue.Severity]++
	}
	return counts
}

// CountByKind tallies issues per kind.
func (r *ScanResult) CountByKind() map[IssueKind]int {
	counts := make(map[IssueKind]int)
	for _, issue := range r.Issues {
		counts[issue.Kind]++
	}
	return counts
}
