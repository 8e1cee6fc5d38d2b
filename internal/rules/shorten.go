package rules

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// Abbreviation rewrites a directory segment longer than this to its
	// first three and last three runes around a tilde.
	abbrevThreshold = 8

	// Collapse keeps at most this many directory segments before the
	// middle is replaced with an ellipsis segment.
	collapseKeep    = 3
	ellipsisSegment = "..."

	// Truncation caps for the hardest non-fallback strategy.
	segmentCap  = 10
	segmentKeep = 8
	stemCap     = 30
	stemKeep    = 27
)

// ShortenPath rewrites relPath until filepath.Join(targetRoot, ...) fits
// within the path limit. Strategies apply cumulatively in the ruleset's
// configured order: each one reshapes the output of the previous, and the
// first result under the limit wins. The fallback strategy is terminal; it
// flattens the file into the ShortFolderName folder and errors only when
// the target root leaves no room for a single-rune stem.
//
// The file's extension is preserved through every strategy and the stem is
// never emptied.
func (rs *Ruleset) ShortenPath(targetRoot, relPath string) (string, error) {
	dir, file := filepath.Split(relPath)
	segments := splitSegments(dir)
	stem, ext := SplitName(file)

	if full := joinPath(targetRoot, segments, stem+ext); pathLen(full) <= rs.MaxPathLength {
		return full, nil
	}

	for _, strategy := range rs.StrategyOrder {
		switch strategy {
		case PathAbbreviate:
			for i, seg := range segments {
				segments[i] = abbreviate(seg)
			}
		case PathCollapse:
			if len(segments) > collapseKeep {
				segments = []string{segments[0], ellipsisSegment, segments[len(segments)-1]}
			}
		case PathTruncate:
			for i, seg := range segments {
				segments[i] = clip(seg, segmentCap, segmentKeep, "..")
			}
			stem = clip(stem, stemCap, stemKeep, "...")
		case PathFallback:
			return rs.fallbackPath(targetRoot, stem, ext)
		}
		if full := joinPath(targetRoot, segments, stem+ext); pathLen(full) <= rs.MaxPathLength {
			return full, nil
		}
	}
	return "", fmt.Errorf("path %q cannot fit within %d characters", relPath, rs.MaxPathLength)
}

// fallbackPath drops the directory structure entirely and files the entry
// under the flat ShortFolderName folder, trimming the stem to whatever
// budget remains.
func (rs *Ruleset) fallbackPath(targetRoot, stem, ext string) (string, error) {
	stem = clip(stem, stemCap, stemKeep, "...")
	base := filepath.Join(targetRoot, ShortFolderName)
	if full := filepath.Join(base, stem+ext); pathLen(full) <= rs.MaxPathLength {
		return full, nil
	}

	budget := rs.MaxPathLength - pathLen(base) - 1 - utf8.RuneCountInString(ext)
	if budget < 1 {
		return "", fmt.Errorf("target root %q leaves no room for a name within %d characters", targetRoot, rs.MaxPathLength)
	}
	if utf8.RuneCountInString(stem) > budget {
		stem = string([]rune(stem)[:budget])
	}
	return filepath.Join(base, stem+ext), nil
}

// abbreviate shortens a long directory segment to first3 + "~" + last3,
// e.g. "Development" becomes "Dev~ent".
func abbreviate(seg string) string {
	r := []rune(seg)
	if len(r) <= abbrevThreshold {
		return seg
	}
	return string(r[:3]) + "~" + string(r[len(r)-3:])
}

// clip hard-truncates s to keep runes plus a marker once it exceeds max.
func clip(s string, max, keep int, marker string) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:keep]) + marker
}

func splitSegments(dir string) []string {
	dir = strings.Trim(filepath.ToSlash(dir), "/")
	if dir == "" {
		return nil
	}
	return strings.Split(dir, "/")
}

func joinPath(root string, segments []string, file string) string {
	parts := make([]string, 0, len(segments)+2)
	parts = append(parts, root)
	parts = append(parts, segments...)
	parts = append(parts, file)
	return filepath.Join(parts...)
}

func pathLen(p string) int {
	return utf8.RuneCountInString(p)
}
