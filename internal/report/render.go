package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/lexmatch/lexmatch/internal/types"
)

// PrintOptions controls rendering of scan results.
type PrintOptions struct {
	NoColor      bool
	Duration     time.Duration
	FilesScanned int
}

// PrintFindings renders tree-scan findings in a columnar layout with an
// optional summary footer.
func PrintFindings(w io.Writer, findings []types.Finding, opts PrintOptions) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Path == findings[j].Path {
			return findings[i].Start < findings[j].Start
		}
		return findings[i].Path < findings[j].Path
	})
	if len(findings) == 0 {
		fmt.Fprintln(w, "No matches found")
	} else {
		maxName := 8
		for _, f := range findings {
			if l := len(f.Name); l > maxName {
				maxName = l
			}
		}
		for _, f := range findings {
			name := f.Name
			if !opts.NoColor {
				name = "\x1b[36m" + name + "\x1b[0m"
				fmt.Fprintf(w, "%s  %s [%d:%d]\n", name, f.Path, f.Start, f.End)
				continue
			}
			fmt.Fprintf(w, "%-*s  %s [%d:%d]\n", maxName, name, f.Path, f.Start, f.End)
		}
	}
	if opts.Duration > 0 || opts.FilesScanned > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Matches: %d\n", len(findings))
		if opts.FilesScanned > 0 {
			fmt.Fprintf(w, "Files scanned: %d\n", opts.FilesScanned)
		}
		if opts.Duration > 0 {
			fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
		}
	}
}

// PrintMatches renders matches from a single text (stdin mode).
func PrintMatches(w io.Writer, matches []types.Match, opts PrintOptions) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matches found")
		return
	}
	for _, m := range matches {
		name := m.Name
		if !opts.NoColor {
			name = "\x1b[36m" + name + "\x1b[0m"
		}
		fmt.Fprintf(w, "%s [%d:%d]\n", name, m.Start, m.End)
	}
}
