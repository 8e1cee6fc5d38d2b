package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/harrison/shipshape/internal/filelock"
)

// Format selects a report renderer.
type Format string

// Report formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// ParseFormat converts a string to a Format. "md" is accepted as an
// alias for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Render writes the summary in the requested format. useColor applies
// to the text format only.
func Render(w io.Writer, s *Summary, format Format, useColor bool) error {
	switch format {
	case FormatText:
		return RenderText(w, s, useColor)
	case FormatMarkdown:
		return RenderMarkdown(w, s)
	case FormatJSON:
		return RenderJSON(w, s)
	case FormatHTML:
		return RenderHTML(w, s)
	}
	return fmt.Errorf("unknown report format %q", format)
}

// Export renders the summary to a file, written atomically so a reader
// never sees a partial report. File exports are always colorless.
func Export(path string, s *Summary, format Format) error {
	var buf bytes.Buffer
	if err := Render(&buf, s, format, false); err != nil {
		return err
	}
	if err := filelock.AtomicWrite(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}
