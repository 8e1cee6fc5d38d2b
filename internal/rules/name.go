package rules

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/harrison/shipshape/internal/models"
)

// Violation is a single rule breach found in a name. The detector layer
// turns violations into issues once it knows which file they belong to.
type Violation struct {
	Kind    models.IssueKind
	Message string
	Detail  map[string]string
}

// CheckName reports every rule the file name breaks. Lengths are counted in
// runes, matching how the destination counts characters. The returned order
// is fixed: length, reserved stem, illegal characters in order of first
// appearance, then prefix and suffix.
func (rs *Ruleset) CheckName(name string) []Violation {
	var violations []Violation

	if strings.TrimSpace(name) == "" {
		return []Violation{{
			Kind:    models.KindNameTooLong,
			Message: "name is empty",
			Detail:  map[string]string{models.DetailLength: "0"},
		}}
	}

	if n := utf8.RuneCountInString(name); n > rs.MaxNameLength {
		violations = append(violations, Violation{
			Kind:    models.KindNameTooLong,
			Message: fmt.Sprintf("name is %d characters, limit is %d", n, rs.MaxNameLength),
			Detail: map[string]string{
				models.DetailLength: strconv.Itoa(n),
				models.DetailLimit:  strconv.Itoa(rs.MaxNameLength),
			},
		})
	}

	stem, _ := SplitName(name)
	if rs.ReservedNames[strings.ToUpper(stem)] {
		violations = append(violations, Violation{
			Kind:    models.KindReservedName,
			Message: fmt.Sprintf("%q is a reserved name", stem),
		})
	}

	seen := make(map[rune]bool)
	for _, c := range stem {
		if rs.IllegalChars[c] && !seen[c] {
			seen[c] = true
			violations = append(violations, Violation{
				Kind:    models.KindIllegalCharacter,
				Message: fmt.Sprintf("name contains illegal character %q", c),
				Detail:  map[string]string{models.DetailCharacter: string(c)},
			})
		}
	}

	if v, ok := rs.checkPrefix(name); ok {
		violations = append(violations, v)
	}
	if v, ok := rs.checkSuffix(name); ok {
		violations = append(violations, v)
	}
	return violations
}

// checkPrefix reports at most one prefix violation. Configured prefixes win
// over the generic leading whitespace and dot checks so ".~lock" is
// reported once, not twice.
func (rs *Ruleset) checkPrefix(name string) (Violation, bool) {
	for _, p := range rs.IllegalPrefixes {
		if strings.HasPrefix(name, p) {
			return Violation{
				Kind:    models.KindIllegalPrefix,
				Message: fmt.Sprintf("name begins with illegal prefix %q", p),
				Detail:  map[string]string{models.DetailPrefix: p},
			}, true
		}
	}
	switch {
	case strings.HasPrefix(name, " "), strings.HasPrefix(name, "\t"):
		return Violation{
			Kind:    models.KindIllegalPrefix,
			Message: "name begins with whitespace",
			Detail:  map[string]string{models.DetailPrefix: " "},
		}, true
	case strings.HasPrefix(name, "."):
		return Violation{
			Kind:    models.KindIllegalPrefix,
			Message: "name begins with a dot",
			Detail:  map[string]string{models.DetailPrefix: "."},
		}, true
	}
	return Violation{}, false
}

// checkSuffix inspects the stem, not the full name, so "backup.files" is
// read as a ".files" extension rather than an illegal suffix. This mirrors
// what SuggestName fixes; flagging the full name would report problems the
// suggestion leaves in place.
func (rs *Ruleset) checkSuffix(name string) (Violation, bool) {
	stem, _ := SplitName(name)
	for _, s := range rs.IllegalSuffixes {
		if strings.HasSuffix(stem, s) {
			return Violation{
				Kind:    models.KindIllegalSuffix,
				Message: fmt.Sprintf("name ends with illegal suffix %q", s),
				Detail:  map[string]string{models.DetailSuffix: s},
			}, true
		}
	}
	switch {
	case strings.HasSuffix(name, " "), strings.HasSuffix(name, "\t"):
		return Violation{
			Kind:    models.KindIllegalSuffix,
			Message: "name ends with whitespace",
			Detail:  map[string]string{models.DetailSuffix: " "},
		}, true
	case strings.HasSuffix(name, "."):
		return Violation{
			Kind:    models.KindIllegalSuffix,
			Message: "name ends with a dot",
			Detail:  map[string]string{models.DetailSuffix: "."},
		}, true
	}
	return Violation{}, false
}

// SuggestName returns a destination-legal file name. The extension is
// preserved; all fixing happens on the stem. The function is idempotent:
// feeding a suggestion back in returns it unchanged.
func (rs *Ruleset) SuggestName(name string) string {
	// Trailing dots and spaces would otherwise be captured into the
	// extension ("report." splits as ext ".") and survive untouched.
	name = strings.TrimRight(name, " \t.")
	stem, ext := SplitName(name)
	stem = rs.fixStem(stem)
	stem = rs.truncateStem(stem, rs.MaxNameLength-utf8.RuneCountInString(ext))
	return stem + ext
}

// SuggestFolderName returns a destination-legal folder name. Folders have
// no extension, so the whole segment is treated as the stem. This also lets
// folder-level suffixes such as ".files" match, which SplitName would
// otherwise mistake for an extension.
func (rs *Ruleset) SuggestFolderName(name string) string {
	stem := rs.fixStem(name)
	return rs.truncateStem(stem, rs.MaxNameLength)
}

// fixStem runs the character, whitespace, prefix, suffix and reserved-name
// fixes, in that order. Later fixes see the output of earlier ones, so a
// stripped prefix cannot reintroduce leading whitespace.
func (rs *Ruleset) fixStem(stem string) string {
	stem = rs.applyCharStrategy(stem)
	stem = strings.Trim(strings.TrimSpace(stem), " .")

	for _, p := range rs.IllegalPrefixes {
		if strings.HasPrefix(stem, p) {
			stem = prefixReplacement + stem[len(p):]
			break
		}
	}
	for _, s := range rs.IllegalSuffixes {
		if strings.HasSuffix(stem, s) {
			stem = stem[:len(stem)-len(s)] + reservedSuffix
			break
		}
	}
	if rs.ReservedNames[strings.ToUpper(stem)] {
		stem += reservedSuffix
	}
	if stem == "" {
		stem = rs.Placeholder
	}
	return stem
}

// truncateStem cuts the stem to budget runes, then re-trims trailing
// whitespace and dots a cut may have exposed. The budget never drops below
// one rune so the stem cannot vanish.
func (rs *Ruleset) truncateStem(stem string, budget int) string {
	if budget < 1 {
		budget = 1
	}
	if utf8.RuneCountInString(stem) > budget {
		stem = string([]rune(stem)[:budget])
		stem = strings.Trim(strings.TrimSpace(stem), " .")
		// A cut can land exactly on a reserved name ("CONFERENCE" ->
		// "CON"). Drop one more rune so the result stays stable when
		// fed back through.
		if rs.ReservedNames[strings.ToUpper(stem)] && utf8.RuneCountInString(stem) > 1 {
			r := []rune(stem)
			stem = string(r[:len(r)-1])
		}
	}
	if stem == "" {
		stem = rs.Placeholder
		if utf8.RuneCountInString(stem) > budget {
			stem = string([]rune(stem)[:budget])
		}
	}
	return stem
}

func (rs *Ruleset) applyCharStrategy(stem string) string {
	switch rs.NameStrategy {
	case NameRemove:
		return rs.replaceIllegal(stem, "")
	case NameASCII:
		return rs.replaceIllegal(transliterate(stem), "_")
	default:
		return rs.replaceIllegal(stem, "_")
	}
}

func (rs *Ruleset) replaceIllegal(s, with string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if rs.IllegalChars[c] {
			b.WriteString(with)
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// asciiTable maps common accented letters to ASCII equivalents.
var asciiTable = map[rune]string{
	'á': "a", 'à': "a", 'â': "a", 'ä': "a", 'ã': "a", 'å': "a",
	'é': "e", 'è': "e", 'ê': "e", 'ë': "e",
	'í': "i", 'ì': "i", 'î': "i", 'ï': "i",
	'ó': "o", 'ò': "o", 'ô': "o", 'ö': "o", 'õ': "o", 'ø': "o",
	'ú': "u", 'ù': "u", 'û': "u", 'ü': "u",
	'ý': "y", 'ÿ': "y", 'ñ': "n", 'ç': "c",
	'Á': "A", 'À': "A", 'Â': "A", 'Ä': "A", 'Ã': "A", 'Å': "A",
	'É': "E", 'È': "E", 'Ê': "E", 'Ë': "E",
	'Í': "I", 'Ì': "I", 'Î': "I", 'Ï': "I",
	'Ó': "O", 'Ò': "O", 'Ô': "O", 'Ö': "O", 'Õ': "O", 'Ø': "O",
	'Ú': "U", 'Ù': "U", 'Û': "U", 'Ü': "U",
	'Ý': "Y", 'Ñ': "N", 'Ç': "C",
	'æ': "ae", 'Æ': "AE", 'œ': "oe", 'Œ': "OE", 'ß': "ss",
}

func transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if repl, ok := asciiTable[c]; ok {
			b.WriteString(repl)
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}
