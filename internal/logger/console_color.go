package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// colorScheme defines consistent colors for different metric types.
// Green: success/positive metrics
// Red: critical counts
// Yellow: warning counts
// Cyan: labels and identifiers
type colorScheme struct {
	success  *color.Color
	critical *color.Color
	warn     *color.Color
	label    *color.Color
	value    *color.Color
}

// newColorScheme creates the standard color scheme for scan metrics.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success:  color.New(color.FgGreen),
		critical: color.New(color.FgRed),
		warn:     color.New(color.FgYellow),
		label:    color.New(color.FgCyan),
		value:    color.New(color.FgWhite),
	}
}

// formatColorizedMetric formats a single metric with colorized label and
// value. Format: "label: value"
func formatColorizedMetric(label string, value interface{}, scheme *colorScheme) string {
	labelColored := scheme.label.Sprint(label)
	valueColored := scheme.value.Sprintf("%v", value)
	return fmt.Sprintf("%s: %s", labelColored, valueColored)
}

// FormatIssueCounts formats scan issue counters with color coding.
// Format: "critical: N, warnings: N, duplicate groups: N"
// Critical counts are red and warning counts yellow whenever non-zero;
// zero counts keep the neutral label color. Colors are disabled
// automatically when output is not a TTY via fatih/color's detection.
func FormatIssueCounts(critical, warnings, duplicateGroups int) string {
	scheme := newColorScheme()
	var parts []string

	if critical > 0 {
		labelColored := scheme.critical.Sprint("critical")
		valueColored := scheme.critical.Sprintf("%d", critical)
		parts = append(parts, fmt.Sprintf("%s: %s", labelColored, valueColored))
	} else {
		parts = append(parts, formatColorizedMetric("critical", critical, scheme))
	}

	if warnings > 0 {
		labelColored := scheme.warn.Sprint("warnings")
		valueColored := scheme.warn.Sprintf("%d", warnings)
		parts = append(parts, fmt.Sprintf("%s: %s", labelColored, valueColored))
	} else {
		parts = append(parts, formatColorizedMetric("warnings", warnings, scheme))
	}

	if duplicateGroups > 0 {
		parts = append(parts, formatColorizedMetric("duplicate groups", duplicateGroups, scheme))
	}

	return strings.Join(parts, ", ")
}
