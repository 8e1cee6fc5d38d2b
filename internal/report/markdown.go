package report

import (
	"fmt"
	"io"
	"strings"
)

// RenderMarkdown writes the report as GitHub-flavored Markdown. Unlike
// the text renderer it never truncates tables; the Markdown report is
// the one people file away.
func RenderMarkdown(w io.Writer, s *Summary) error {
	var b strings.Builder

	b.WriteString("# Migration Readiness Report\n\n")
	fmt.Fprintf(&b, "- **Scan**: `%s`\n", s.ScanID)
	fmt.Fprintf(&b, "- **Root**: `%s`\n", s.Root)
	fmt.Fprintf(&b, "- **Scanned**: %s (took %s)\n",
		s.ScannedAt.UTC().Format("2006-01-02 15:04:05 UTC"), formatDuration(s.ScanDuration))
	fmt.Fprintf(&b, "- **Files**: %d in %d folders, %s\n", s.TotalFiles, s.TotalFolders, FormatBytes(s.TotalBytes))
	if s.Incomplete {
		b.WriteString("\n> **Note**: the scan was cancelled before finishing; counts are partial.\n")
	}
	b.WriteString("\n")

	b.WriteString("## Issues\n\n")
	if s.TotalIssues == 0 {
		b.WriteString("No issues found.\n\n")
	} else {
		fmt.Fprintf(&b, "%d total: %d critical, %d warnings.\n\n", s.TotalIssues, s.CriticalCount, s.WarningCount)
		b.WriteString("| Kind | Count | Severity |\n")
		b.WriteString("|------|------:|----------|\n")
		for _, row := range s.KindCounts {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", row.Kind, row.Count, row.Severity)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Duplicates\n\n")
	if s.DuplicateGroupCount == 0 {
		b.WriteString("No duplicate groups.\n\n")
	} else {
		fmt.Fprintf(&b, "%d groups, %s reclaimable.\n\n", s.DuplicateGroupCount, FormatBytes(s.ReclaimableBytes))
	}

	if len(s.Extensions) > 0 {
		b.WriteString("## Extensions\n\n")
		b.WriteString("| Extension | Count |\n")
		b.WriteString("|-----------|------:|\n")
		for _, row := range s.Extensions {
			fmt.Fprintf(&b, "| %s | %d |\n", row.Extension, row.Count)
		}
		b.WriteString("\n")
	}

	if len(s.MIMETypes) > 0 {
		b.WriteString("## MIME Types\n\n")
		b.WriteString("| Type | Count |\n")
		b.WriteString("|------|------:|\n")
		for _, row := range s.MIMETypes {
			fmt.Fprintf(&b, "| %s | %d |\n", row.MIME, row.Count)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Path Lengths\n\n")
	b.WriteString("| Bucket | Count |\n")
	b.WriteString("|--------|------:|\n")
	for _, bucket := range s.PathBuckets {
		fmt.Fprintf(&b, "| %s | %d |\n", bucket.Label, bucket.Count)
	}
	fmt.Fprintf(&b, "\nAverage %.1f characters, longest %d.\n\n", s.AvgPathLength, s.MaxPathLength)

	if len(s.FlaggedFiles) > 0 {
		b.WriteString("## Flagged Files\n\n")
		b.WriteString("| Severity | Path | Issues |\n")
		b.WriteString("|----------|------|--------|\n")
		for _, f := range s.FlaggedFiles {
			fmt.Fprintf(&b, "| %s | `%s` | %s |\n", f.Severity, f.Path, joinKinds(f.Kinds))
		}
		b.WriteString("\n")
	}

	if s.Execution != nil {
		e := s.Execution
		b.WriteString("## Apply\n\n")
		fmt.Fprintf(&b, "- **Plan**: `%s`\n", e.PlanID)
		fmt.Fprintf(&b, "- **Actions**: %d (%d ok, %d failed, %d skipped)\n", e.Total, e.Succeeded, e.Failed, e.Skipped)
		fmt.Fprintf(&b, "- **Duration**: %s\n", formatDuration(e.Duration))
		if e.Cancelled {
			b.WriteString("\n> **Note**: the apply was cancelled; unreached actions are counted as skipped.\n")
		}
		if len(e.Failures) > 0 {
			b.WriteString("\n### Failed Actions\n\n")
			b.WriteString("| Source | Error |\n")
			b.WriteString("|--------|-------|\n")
			for _, f := range e.Failures {
				fmt.Fprintf(&b, "| `%s` | %s |\n", f.Source, f.Error)
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n\nGenerated %s by shipshape.\n",
		s.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	_, err := io.WriteString(w, b.String())
	return err
}
