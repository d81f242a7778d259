package report

import (
	"strings"
	"testing"

	"github.com/lexmatch/lexmatch/internal/types"
)

func TestPrintFindingsSortsAndSummarizes(t *testing.T) {
	findings := []types.Finding{
		{Path: "b.txt", Name: "kw", Start: 3, End: 5},
		{Path: "a.txt", Name: "kw", Start: 0, End: 2},
	}
	var sb strings.Builder
	PrintFindings(&sb, findings, PrintOptions{NoColor: true, FilesScanned: 2})
	out := sb.String()

	ai := strings.Index(out, "a.txt")
	bi := strings.Index(out, "b.txt")
	if ai < 0 || bi < 0 || ai > bi {
		t.Fatalf("findings not sorted by path:\n%s", out)
	}
	if !strings.Contains(out, "Matches: 2") || !strings.Contains(out, "Files scanned: 2") {
		t.Fatalf("summary footer missing:\n%s", out)
	}
}

func TestPrintFindingsEmpty(t *testing.T) {
	var sb strings.Builder
	PrintFindings(&sb, nil, PrintOptions{NoColor: true})
	if !strings.Contains(sb.String(), "No matches found") {
		t.Fatalf("output = %q", sb.String())
	}
}

func TestPrintMatches(t *testing.T) {
	var sb strings.Builder
	PrintMatches(&sb, []types.Match{{Name: "kw", Start: 1, End: 3}}, PrintOptions{NoColor: true})
	if !strings.Contains(sb.String(), "kw [1:3]") {
		t.Fatalf("output = %q", sb.String())
	}
}
