package searcher

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/lexmatch/lexmatch/internal/types"
)

func TestMatchOverlapping(t *testing.T) {
	s := buildClassic(nil)

	want := []types.Match{
		{Name: "a", Start: 0, End: 1},
		{Name: "ab", Start: 0, End: 2},
		{Name: "bc", Start: 1, End: 3},
		{Name: "c", Start: 2, End: 3},
		{Name: "c", Start: 3, End: 4},
		{Name: "a", Start: 4, End: 5},
		{Name: "ab", Start: 4, End: 6},
	}
	if got := s.Match("abccab"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Match(abccab) = %v, want %v", got, want)
	}
}

func TestMatchUnicodeOffsets(t *testing.T) {
	b := NewBuilder()
	for _, kw := range []string{"北京", "欢迎", "你"} {
		b.Insert(kw, "")
	}
	s := b.Finalize()

	want := []types.Match{
		{Name: "北京", Start: 0, End: 2},
		{Name: "欢迎", Start: 2, End: 4},
		{Name: "你", Start: 4, End: 5},
	}
	if got := s.Match("北京欢迎你"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Match = %v, want %v (character offsets, not bytes)", got, want)
	}
}

func TestMatchAliases(t *testing.T) {
	b := NewBuilder()
	for _, kw := range []string{"bcdef", "defghi", "hijk"} {
		b.Insert(kw, "x"+kw+"y")
	}
	s := b.Finalize()

	want := []types.Match{
		{Name: "xbcdefy", Start: 1, End: 6},
		{Name: "xdefghiy", Start: 3, End: 9},
		{Name: "xhijky", Start: 7, End: 11},
	}
	if got := s.Match("abcdefghijklmn"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Match = %v, want %v", got, want)
	}
}

func TestMatchSingleKeywordBaseline(t *testing.T) {
	// A one-keyword automaton must report every occurrence at its exact
	// character offset.
	cases := []struct {
		keyword string
		text    string
		starts  []int
	}{
		{"ab", "ababab", []int{0, 2, 4}},
		{"aa", "aaaa", []int{0, 1, 2}},
		{"x", "axbxc", []int{1, 3}},
		{"abc", "zzz", nil},
	}
	for _, tc := range cases {
		b := NewBuilder()
		b.Insert(tc.keyword, "")
		s := b.Finalize()

		var want []types.Match
		for _, st := range tc.starts {
			want = append(want, types.Match{Name: tc.keyword, Start: st, End: st + len(tc.keyword)})
		}
		if got := s.Match(tc.text); !reflect.DeepEqual(got, want) {
			t.Fatalf("Match(%q in %q) = %v, want %v", tc.keyword, tc.text, got, want)
		}
	}
}

func TestMatchLines(t *testing.T) {
	b := NewBuilder()
	for _, kw := range []string{"abc", "def"} {
		b.Insert(kw, "")
	}
	s := b.Finalize()

	want := []types.Match{
		{Name: ".abc.", Start: 1, End: 4},
		{Name: "---def---", Start: 3, End: 6},
		{Name: "abc", Start: 0, End: 3},
	}
	got := s.MatchLines("...\n.abc.\n\n---def---\n...\nabc")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MatchLines = %v, want %v", got, want)
	}
}

func TestMatchLinesKeepsLastMatchOnly(t *testing.T) {
	b := NewBuilder()
	b.Insert("ab", "")
	s := b.Finalize()

	// Two hits on one line: only the later one survives.
	got := s.MatchLines("ab..ab\r\nnothing")
	want := []types.Match{{Name: "ab..ab", Start: 4, End: 6}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MatchLines = %v, want %v", got, want)
	}
}

func TestSubstOverlapResolution(t *testing.T) {
	s := buildClassic(func(kw string) string { return "x" + kw + "y" })

	if got := s.Subst("abccab"); got != "xabyxcyxcyxaby" {
		t.Fatalf("Subst(abccab) = %q, want %q", got, "xabyxcyxcyxaby")
	}
}

func TestSubstPreservesUnmatchedText(t *testing.T) {
	b := NewBuilder()
	for _, kw := range []string{"bcdef", "defghi", "hijk"} {
		b.Insert(kw, "x"+kw+"y")
	}
	s := b.Finalize()

	if got := s.Subst("abcdefghijklmn"); got != "axbcdefygxhijkylmn" {
		t.Fatalf("Subst = %q, want %q", got, "axbcdefygxhijkylmn")
	}
}

func TestSubstNestedKeywords(t *testing.T) {
	b := NewBuilder()
	for _, kw := range []string{"bdpk", "dpk"} {
		b.Insert(kw, "_keyword_")
	}
	s := b.Finalize()

	if got := s.Subst("abdpkz"); got != "a_keyword_z" {
		t.Fatalf("Subst = %q, want %q", got, "a_keyword_z")
	}
}

func TestSubstNoMatches(t *testing.T) {
	b := NewBuilder()
	b.Insert("needle", "FOUND")
	s := b.Finalize()

	const text = "plain text, nothing here"
	if got := s.Subst(text); got != text {
		t.Fatalf("Subst without matches = %q, want input unchanged", got)
	}
	if got := s.Subst(""); got != "" {
		t.Fatalf("Subst(\"\") = %q, want empty", got)
	}
}

func TestRunModeDispatch(t *testing.T) {
	b := NewBuilder()
	b.Insert("abc", "")
	s := b.Finalize()

	if got := s.Run("xabcx", types.ModeAll); len(got) != 1 || got[0].Name != "abc" {
		t.Fatalf("Run all = %v", got)
	}
	if got := s.Run("xabcx", types.ModeLine); len(got) != 1 || got[0].Name != "xabcx" {
		t.Fatalf("Run line = %v", got)
	}
	// Unknown modes run the whole-text scan.
	if got := s.Run("xabcx", types.Mode("")); len(got) != 1 || got[0].Name != "abc" {
		t.Fatalf("Run with empty mode = %v", got)
	}
}

func TestConcurrentQueries(t *testing.T) {
	s := buildClassic(nil)

	done := make(chan []types.Match, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- s.Match("abccab") }()
	}
	first := <-done
	for i := 1; i < 8; i++ {
		if got := <-done; !reflect.DeepEqual(got, first) {
			t.Fatalf("concurrent Match results diverged: %v vs %v", got, first)
		}
	}
}

func BenchmarkMatch(b *testing.B) {
	s := buildClassic(nil)
	text := strings.Repeat("abccab.", 1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Match(text)
	}
}

func BenchmarkSubst(b *testing.B) {
	s := buildClassic(func(kw string) string { return "<" + kw + ">" })
	text := strings.Repeat("abccab.", 1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Subst(text)
	}
}

func BenchmarkFinalize(b *testing.B) {
	var keywords []string
	for i := 0; i < 200; i++ {
		keywords = append(keywords, fmt.Sprintf("keyword-%d", i))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bl := NewBuilder()
		for _, kw := range keywords {
			bl.Insert(kw, "")
		}
		bl.Finalize()
	}
}
