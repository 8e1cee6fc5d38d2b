package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/shipshape/internal/models"
)

// Renderers cap the noisiest sections; the full detail is always
// available in the JSON format.
const (
	maxTextExtensions = 10
	maxTextMIMETypes  = 10
	maxTextFlagged    = 20
)

// palette holds the text renderer's colors. With useColor false every
// color is disabled and Sprint passes strings through unchanged.
type palette struct {
	header   *color.Color
	label    *color.Color
	critical *color.Color
	warn     *color.Color
	ok       *color.Color
}

func newPalette(useColor bool) *palette {
	p := &palette{
		header:   color.New(color.Bold),
		label:    color.New(color.FgCyan),
		critical: color.New(color.FgRed),
		warn:     color.New(color.FgYellow),
		ok:       color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.header, p.label, p.critical, p.warn, p.ok} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// RenderText writes the console report. Colors are applied only when
// useColor is set; callers decide based on TTY detection.
func RenderText(w io.Writer, s *Summary, useColor bool) error {
	p := newPalette(useColor)
	var b strings.Builder

	b.WriteString(p.header.Sprint("=== Scan Summary ===") + "\n")
	fmt.Fprintf(&b, "%s %s\n", p.label.Sprint("Scan:      "), s.ScanID)
	fmt.Fprintf(&b, "%s %s\n", p.label.Sprint("Root:      "), s.Root)
	fmt.Fprintf(&b, "%s %s (took %s)\n", p.label.Sprint("Scanned:   "),
		s.ScannedAt.UTC().Format("2006-01-02 15:04:05 UTC"), formatDuration(s.ScanDuration))
	fmt.Fprintf(&b, "%s %d\n", p.label.Sprint("Files:     "), s.TotalFiles)
	fmt.Fprintf(&b, "%s %d\n", p.label.Sprint("Folders:   "), s.TotalFolders)
	fmt.Fprintf(&b, "%s %s\n", p.label.Sprint("Total size:"), FormatBytes(s.TotalBytes))
	if s.Incomplete {
		b.WriteString(p.warn.Sprint("NOTE: the scan was cancelled before finishing; counts are partial.") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(p.header.Sprint("=== Issues ===") + "\n")
	if s.TotalIssues == 0 {
		b.WriteString(p.ok.Sprint("No issues found.") + "\n")
	} else {
		critical := fmt.Sprintf("critical: %d", s.CriticalCount)
		if s.CriticalCount > 0 {
			critical = p.critical.Sprint(critical)
		}
		warnings := fmt.Sprintf("warnings: %d", s.WarningCount)
		if s.WarningCount > 0 {
			warnings = p.warn.Sprint(warnings)
		}
		fmt.Fprintf(&b, "Total: %d (%s, %s)\n", s.TotalIssues, critical, warnings)
		for _, row := range s.KindCounts {
			line := fmt.Sprintf("  %-18s %5d  %s", row.Kind, row.Count, row.Severity)
			if row.Severity == models.SeverityCritical {
				line = p.critical.Sprint(line)
			}
			b.WriteString(line + "\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(p.header.Sprint("=== Duplicates ===") + "\n")
	if s.DuplicateGroupCount == 0 {
		b.WriteString("No duplicate groups.\n")
	} else {
		fmt.Fprintf(&b, "%s %d\n", p.label.Sprint("Groups:     "), s.DuplicateGroupCount)
		fmt.Fprintf(&b, "%s %s\n", p.label.Sprint("Reclaimable:"), FormatBytes(s.ReclaimableBytes))
	}
	b.WriteString("\n")

	if len(s.Extensions) > 0 {
		b.WriteString(p.header.Sprint("=== Extensions ===") + "\n")
		shown := s.Extensions
		if len(shown) > maxTextExtensions {
			shown = shown[:maxTextExtensions]
		}
		for _, row := range shown {
			fmt.Fprintf(&b, "  %-10s %6d\n", row.Extension, row.Count)
		}
		if rest := len(s.Extensions) - len(shown); rest > 0 {
			fmt.Fprintf(&b, "  (+%d more)\n", rest)
		}
		b.WriteString("\n")
	}

	if len(s.MIMETypes) > 0 {
		b.WriteString(p.header.Sprint("=== MIME Types ===") + "\n")
		shown := s.MIMETypes
		if len(shown) > maxTextMIMETypes {
			shown = shown[:maxTextMIMETypes]
		}
		for _, row := range shown {
			fmt.Fprintf(&b, "  %-28s %6d\n", row.MIME, row.Count)
		}
		if rest := len(s.MIMETypes) - len(shown); rest > 0 {
			fmt.Fprintf(&b, "  (+%d more)\n", rest)
		}
		b.WriteString("\n")
	}

	b.WriteString(p.header.Sprint("=== Path Lengths ===") + "\n")
	for _, bucket := range s.PathBuckets {
		fmt.Fprintf(&b, "  %-6s %6d\n", bucket.Label, bucket.Count)
	}
	fmt.Fprintf(&b, "Average: %.1f, longest: %d\n\n", s.AvgPathLength, s.MaxPathLength)

	if len(s.FlaggedFiles) > 0 {
		b.WriteString(p.header.Sprint("=== Flagged Files ===") + "\n")
		shown := s.FlaggedFiles
		if len(shown) > maxTextFlagged {
			shown = shown[:maxTextFlagged]
		}
		for _, f := range shown {
			severity := fmt.Sprintf("[%s]", f.Severity)
			if f.Severity == models.SeverityCritical {
				severity = p.critical.Sprint(severity)
			} else {
				severity = p.warn.Sprint(severity)
			}
			fmt.Fprintf(&b, "  %s %s (%s)\n", severity, f.Path, joinKinds(f.Kinds))
		}
		if rest := len(s.FlaggedFiles) - len(shown); rest > 0 {
			fmt.Fprintf(&b, "  (+%d more files)\n", rest)
		}
		b.WriteString("\n")
	}

	if s.Execution != nil {
		e := s.Execution
		b.WriteString(p.header.Sprint("=== Apply Summary ===") + "\n")
		fmt.Fprintf(&b, "%s %s\n", p.label.Sprint("Plan:    "), e.PlanID)

		succeeded := p.ok.Sprintf("%d ok", e.Succeeded)
		failed := fmt.Sprintf("%d failed", e.Failed)
		if e.Failed > 0 {
			failed = p.critical.Sprint(failed)
		}
		fmt.Fprintf(&b, "%s %d (%s, %s, %d skipped)\n", p.label.Sprint("Actions: "), e.Total, succeeded, failed, e.Skipped)
		fmt.Fprintf(&b, "%s %s\n", p.label.Sprint("Duration:"), formatDuration(e.Duration))
		if e.Cancelled {
			b.WriteString(p.warn.Sprint("NOTE: the apply was cancelled; unreached actions are counted as skipped.") + "\n")
		}
		if len(e.Failures) > 0 {
			b.WriteString(p.critical.Sprint("Failed actions:") + "\n")
			for _, f := range e.Failures {
				fmt.Fprintf(&b, "  - %s: %s\n", f.Source, f.Error)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func joinKinds(kinds []models.IssueKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}
