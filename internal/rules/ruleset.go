// Package rules holds the destination naming and path-length rules in one
// place. Both the detectors and the planner call into this package, so a
// rule can never drift between "what we flag" and "what we fix".
package rules

import (
	"fmt"
	"strings"
)

// Default SharePoint-class constraints.
const (
	DefaultMaxPathLength = 256
	DefaultMaxNameLength = 128

	// DefaultIllegalChars are the characters the destination rejects in
	// file and folder names.
	DefaultIllegalChars = `\/:*?"<>|#%&{}+~=`

	// PlaceholderStem is the default replacement for a name whose stem is
	// empty after fixing.
	PlaceholderStem = "unnamed"

	// ShortFolderName is the single folder the terminal path-shortening
	// strategy places files under.
	ShortFolderName = "ShortPath"

	// reservedSuffix is appended to a stem that collides with a reserved
	// name or ends in an illegal suffix.
	reservedSuffix = "_SP"

	// prefixReplacement is prepended to a stem that started with an
	// illegal prefix, after the prefix is stripped.
	prefixReplacement = "SP_"
)

// DefaultReservedNames returns the names the destination refuses regardless
// of extension. Matching is case-insensitive on the stem.
func DefaultReservedNames() []string {
	return []string{
		"CON", "PRN", "AUX", "NUL",
		"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
		"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9",
	}
}

// DefaultIllegalPrefixes returns the name prefixes the destination rejects.
func DefaultIllegalPrefixes() []string {
	return []string{".~", "_vti_"}
}

// DefaultIllegalSuffixes returns the name suffixes the destination rejects.
func DefaultIllegalSuffixes() []string {
	return []string{".files", "_files", "-Dateien", ".data"}
}

// NameStrategy selects how illegal characters are rewritten.
type NameStrategy string

// Name strategies.
const (
	NameUnderscore NameStrategy = "underscore" // Replace each illegal character with '_'
	NameRemove     NameStrategy = "remove"     // Drop illegal characters
	NameASCII      NameStrategy = "ascii"      // Transliterate accented letters, then underscore the rest
)

// ParseNameStrategy converts a string to a NameStrategy.
func ParseNameStrategy(s string) (NameStrategy, error) {
	switch NameStrategy(s) {
	case NameUnderscore, NameRemove, NameASCII:
		return NameStrategy(s), nil
	}
	return "", fmt.Errorf("unknown name strategy %q", s)
}

// PathStrategy identifies one link of the path-shortening chain.
type PathStrategy string

// Path-shortening strategies, in default order. Fallback is terminal: it is
// always tried last and succeeds for any sane limit.
const (
	PathAbbreviate PathStrategy = "abbreviate"
	PathCollapse   PathStrategy = "collapse"
	PathTruncate   PathStrategy = "truncate"
	PathFallback   PathStrategy = "fallback"
)

// ParsePathStrategy converts a string to a PathStrategy.
func ParsePathStrategy(s string) (PathStrategy, error) {
	switch PathStrategy(s) {
	case PathAbbreviate, PathCollapse, PathTruncate, PathFallback:
		return PathStrategy(s), nil
	}
	return "", fmt.Errorf("unknown path strategy %q", s)
}

// DefaultPathStrategyOrder returns the built-in strategy chain order.
func DefaultPathStrategyOrder() []PathStrategy {
	return []PathStrategy{PathAbbreviate, PathCollapse, PathTruncate, PathFallback}
}

// Ruleset is an immutable, validated set of destination rules. Build one
// with New (or Default) and share it between the detectors and the planner.
type Ruleset struct {
	MaxNameLength   int
	MaxPathLength   int
	IllegalChars    map[rune]bool
	ReservedNames   map[string]bool // Upper-cased stems
	IllegalPrefixes []string
	IllegalSuffixes []string
	NameStrategy    NameStrategy
	StrategyOrder   []PathStrategy
	Placeholder     string
}

// Params carries the raw configuration values a Ruleset is built from.
type Params struct {
	MaxNameLength   int
	MaxPathLength   int
	IllegalChars    string
	ReservedNames   []string
	IllegalPrefixes []string
	IllegalSuffixes []string
	NameStrategy    string
	StrategyOrder   []string
	Placeholder     string
}

// New validates params and builds a Ruleset. An empty illegal-character set
// is rejected: names would still be checked against nothing, which hides
// misconfiguration rather than surfacing it.
func New(p Params) (*Ruleset, error) {
	if p.MaxNameLength <= 0 {
		return nil, fmt.Errorf("max name length must be positive, got %d", p.MaxNameLength)
	}
	if p.MaxPathLength <= 0 {
		return nil, fmt.Errorf("max path length must be positive, got %d", p.MaxPathLength)
	}
	if p.IllegalChars == "" {
		return nil, fmt.Errorf("illegal character set must not be empty")
	}

	strategy := NameUnderscore
	if p.NameStrategy != "" {
		parsed, err := ParseNameStrategy(p.NameStrategy)
		if err != nil {
			return nil, err
		}
		strategy = parsed
	}

	order := DefaultPathStrategyOrder()
	if len(p.StrategyOrder) > 0 {
		order = make([]PathStrategy, 0, len(p.StrategyOrder)+1)
		for _, s := range p.StrategyOrder {
			parsed, err := ParsePathStrategy(s)
			if err != nil {
				return nil, err
			}
			if parsed == PathFallback {
				continue // re-appended below so it stays terminal
			}
			order = append(order, parsed)
		}
	} else {
		order = order[:len(order)-1]
	}
	order = append(order, PathFallback)

	chars := make(map[rune]bool, len(p.IllegalChars))
	for _, c := range p.IllegalChars {
		chars[c] = true
	}

	reserved := p.ReservedNames
	if reserved == nil {
		reserved = DefaultReservedNames()
	}
	reservedSet := make(map[string]bool, len(reserved))
	for _, name := range reserved {
		reservedSet[strings.ToUpper(name)] = true
	}

	prefixes := p.IllegalPrefixes
	if prefixes == nil {
		prefixes = DefaultIllegalPrefixes()
	}
	suffixes := p.IllegalSuffixes
	if suffixes == nil {
		suffixes = DefaultIllegalSuffixes()
	}

	placeholder := p.Placeholder
	if placeholder == "" {
		placeholder = PlaceholderStem
	}

	rs := &Ruleset{
		MaxNameLength:   p.MaxNameLength,
		MaxPathLength:   p.MaxPathLength,
		IllegalChars:    chars,
		ReservedNames:   reservedSet,
		IllegalPrefixes: prefixes,
		IllegalSuffixes: suffixes,
		NameStrategy:    strategy,
		StrategyOrder:   order,
		Placeholder:     placeholder,
	}

	// The placeholder must itself be a legal, stable stem: if fixing it
	// changed it, names falling back to it would fail re-checks.
	if vs := rs.CheckName(placeholder); len(vs) > 0 {
		return nil, fmt.Errorf("placeholder %q: %s", placeholder, vs[0].Message)
	}
	if fixed := rs.SuggestFolderName(placeholder); fixed != placeholder {
		return nil, fmt.Errorf("placeholder %q is not stable, fixing would yield %q", placeholder, fixed)
	}
	return rs, nil
}

// Default builds a Ruleset with all default constraints.
func Default() *Ruleset {
	rs, err := New(Params{
		MaxNameLength: DefaultMaxNameLength,
		MaxPathLength: DefaultMaxPathLength,
		IllegalChars:  DefaultIllegalChars,
	})
	if err != nil {
		panic(fmt.Sprintf("default ruleset is invalid: %v", err))
	}
	return rs
}

// SplitName separates a file name into stem and extension. Unlike
// filepath.Ext this treats a lone leading dot as part of the stem, so
// ".gitignore" has no extension.
func SplitName(name string) (stem, ext string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i:]
}
