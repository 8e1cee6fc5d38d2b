package rules

import (
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func rulesetWithLimit(t *testing.T, limit int) *Ruleset {
	t.Helper()
	rs, err := New(Params{
		MaxNameLength: DefaultMaxNameLength,
		MaxPathLength: limit,
		IllegalChars:  DefaultIllegalChars,
	})
	if err != nil {
		t.Fatal(err)
	}
	return rs
}

func TestAbbreviate(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Development", "Dev~ent"},
		{"ninechars", "nin~ars"},
		{"exactly8", "exactly8"},
		{"short", "short"},
	}
	for _, tc := range cases {
		if got := abbreviate(tc.in); got != tc.want {
			t.Errorf("abbreviate(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestShortenPathAlreadyShort(t *testing.T) {
	rs := Default()

	got, err := rs.ShortenPath("/dst", "docs/readme.txt")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/dst", "docs", "readme.txt"); got != want {
		t.Errorf("short path rewritten: got %q, want %q", got, want)
	}
}

func TestShortenPathAbbreviatesSegments(t *testing.T) {
	rs := rulesetWithLimit(t, 30)

	got, err := rs.ShortenPath("/dst", filepath.Join("Development", "Engineering", "file.txt"))
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("/dst", "Dev~ent", "Eng~ing", "file.txt")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestShortenPathCollapsesDeepTrees(t *testing.T) {
	rs := rulesetWithLimit(t, 25)

	rel := filepath.Join("aaa", "bbb", "ccc", "ddd", "eee", "file.txt")
	got, err := rs.ShortenPath("/dst", rel)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("/dst", "aaa", "...", "eee", "file.txt")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestShortenPathTruncatesSegmentsAndStem(t *testing.T) {
	rs := rulesetWithLimit(t, 80)

	root := "/very/long/destination/root"
	rel := filepath.Join("Documentation", "Specifications", "especially-long-filename-for-testing.txt")
	got, err := rs.ShortenPath(root, rel)
	if err != nil {
		t.Fatal(err)
	}
	if n := utf8.RuneCountInString(got); n > 80 {
		t.Fatalf("still %d characters: %q", n, got)
	}
	if !strings.HasSuffix(got, ".txt") {
		t.Errorf("extension lost: %q", got)
	}
	if !strings.Contains(got, "...") {
		t.Errorf("expected a truncated stem in %q", got)
	}
	if strings.Contains(got, ShortFolderName) {
		t.Errorf("fallback should not trigger at this limit: %q", got)
	}
}

func TestShortenPathFallback(t *testing.T) {
	rs := rulesetWithLimit(t, 40)

	rel := filepath.Join(
		strings.Repeat("deep", 10), strings.Repeat("tree", 10), strings.Repeat("dirs", 10),
		strings.Repeat("x", 60)+".txt",
	)
	got, err := rs.ShortenPath("/dst", rel)
	if err != nil {
		t.Fatal(err)
	}
	if n := utf8.RuneCountInString(got); n > 40 {
		t.Fatalf("still %d characters: %q", n, got)
	}
	want := filepath.Join("/dst", ShortFolderName) + string(filepath.Separator)
	if !strings.HasPrefix(got, want) {
		t.Errorf("expected the %s folder, got %q", ShortFolderName, got)
	}
	if !strings.HasSuffix(got, ".txt") {
		t.Errorf("extension lost: %q", got)
	}
}

func TestShortenPathLongPathsFitDefaultLimit(t *testing.T) {
	rs := Default()

	seg := strings.Repeat("s", 45)
	rel := filepath.Join(seg, seg, seg, seg, seg, strings.Repeat("f", 55)+".docx")
	if n := utf8.RuneCountInString(filepath.Join("/migrated", rel)); n <= DefaultMaxPathLength {
		t.Fatalf("test path too short to exercise shortening: %d", n)
	}

	got, err := rs.ShortenPath("/migrated", rel)
	if err != nil {
		t.Fatal(err)
	}
	if n := utf8.RuneCountInString(got); n > DefaultMaxPathLength {
		t.Errorf("result exceeds limit: %d characters", n)
	}
	if !strings.HasSuffix(got, ".docx") {
		t.Errorf("extension lost: %q", got)
	}

	again, err := rs.ShortenPath("/migrated", rel)
	if err != nil {
		t.Fatal(err)
	}
	if got != again {
		t.Errorf("not deterministic: %q then %q", got, again)
	}
}

func TestShortenPathRootLeavesNoRoom(t *testing.T) {
	rs := rulesetWithLimit(t, 50)

	root := "/" + strings.Repeat("r", 60)
	if _, err := rs.ShortenPath(root, "docs/file.txt"); err == nil {
		t.Fatal("expected an error when the target root exceeds the limit")
	}
}

func TestShortenPathCustomStrategyOrder(t *testing.T) {
	rs, err := New(Params{
		MaxNameLength: DefaultMaxNameLength,
		MaxPathLength: 36,
		IllegalChars:  DefaultIllegalChars,
		StrategyOrder: []string{"truncate"},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := rs.ShortenPath("/dst", filepath.Join("Development", "Subdirectory", "file.txt"))
	if err != nil {
		t.Fatal(err)
	}
	// Truncation, not abbreviation, is the first strategy here.
	want := filepath.Join("/dst", "Developm..", "Subdirec..", "file.txt")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
