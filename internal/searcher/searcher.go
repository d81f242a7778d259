package searcher

import (
	"strings"

	"github.com/lexmatch/lexmatch/internal/types"
)

// Searcher is a frozen keyword automaton. It is produced by
// Builder.Finalize and never mutates afterwards, so any number of
// goroutines may query it concurrently.
type Searcher struct {
	nodes  []node
	blacks map[edge]int
	blues  map[int]int
}

// advance moves one step from the given node on the given rune.
//
// A black edge consumes the rune. Failing that, the blue link is followed
// without consuming, so the caller retries the same rune from the new node.
// With neither available the automaton falls back to the root; the rune is
// consumed only if it was already there.
func (s *Searcher) advance(id int, letter rune) (int, bool) {
	if next, ok := s.blacks[edge{id, letter}]; ok {
		return next, true
	}
	if next, ok := s.blues[id]; ok {
		return next, false
	}
	return rootID, id == rootID
}

// Match scans the whole text and reports every terminal node visited,
// overlapping matches included. A single input character can produce
// several matches, one per blue-chain step that lands on a terminal node.
func (s *Searcher) Match(text string) []types.Match {
	var matches []types.Match
	id := rootID
	pos := 0

	for _, letter := range text {
		pos++
		for {
			next, consumed := s.advance(id, letter)
			id = next
			n := &s.nodes[id-1]
			if n.terminal {
				if consumed {
					matches = append(matches, types.Match{Name: n.name, Start: pos - n.length, End: pos})
				} else {
					matches = append(matches, types.Match{Name: n.name, Start: pos - n.length - 1, End: pos - 1})
				}
			}
			if consumed {
				break
			}
		}
	}

	return matches
}

// MatchLines scans line by line. State resets at every CR or LF, the
// boundary character itself belonging to neither line. Only the last match
// before each boundary (or end of input) is reported, and the reported name
// is the accumulated line text rather than the keyword, so callers see
// which line matched.
func (s *Searcher) MatchLines(text string) []types.Match {
	var matches []types.Match
	var line strings.Builder
	var found types.Match
	ok := false
	id := rootID
	pos := 0

	for _, letter := range text {
		if letter == '\r' || letter == '\n' {
			if ok {
				found.Name = line.String()
				matches = append(matches, found)
			}
			line.Reset()
			found = types.Match{}
			ok = false
			id = rootID
			pos = 0
			continue
		}
		line.WriteRune(letter)
		pos++
		for {
			next, consumed := s.advance(id, letter)
			id = next
			n := &s.nodes[id-1]
			if n.terminal {
				ok = true
				if consumed {
					found.Start, found.End = pos-n.length, pos
				} else {
					found.Start, found.End = pos-n.length-1, pos-1
				}
			}
			if consumed {
				break
			}
		}
	}

	if ok {
		found.Name = line.String()
		matches = append(matches, found)
	}

	return matches
}

// Subst replaces matched spans with their node names and copies unmatched
// text verbatim. Overlaps resolve first-match-wins: a candidate starting
// before the committed cursor is dropped in favor of the earlier match.
func (s *Searcher) Subst(text string) string {
	letters := []rune(text)

	var result strings.Builder
	cursor := 0
	var last types.Match
	id := rootID
	pos := 0

	commit := func() {
		if last.Start >= cursor {
			for _, r := range letters[cursor:last.Start] {
				result.WriteRune(r)
			}
			result.WriteString(last.Name)
			cursor = last.End
		}
		// Overlap with already-committed text: the earlier match won.
	}

	for _, letter := range letters {
		pos++
		for {
			next, consumed := s.advance(id, letter)
			id = next
			n := &s.nodes[id-1]
			if n.terminal {
				var found types.Match
				if consumed {
					found = types.Match{Name: n.name, Start: pos - n.length, End: pos}
				} else {
					found = types.Match{Name: n.name, Start: pos - n.length - 1, End: pos - 1}
				}
				if found.Start != last.Start {
					commit()
				}
				last = found
			}
			if consumed {
				break
			}
		}
	}

	if last.End >= last.Start {
		commit()
	}

	for _, r := range letters[cursor:] {
		result.WriteRune(r)
	}

	return result.String()
}

// Run dispatches to the query mode named by mode. Anything other than
// ModeLine runs the whole-text scan, matching the behavior of the original
// option string.
func (s *Searcher) Run(text string, mode types.Mode) []types.Match {
	if mode == types.ModeLine {
		return s.MatchLines(text)
	}
	return s.Match(text)
}

// Nodes returns the node count, the root included.
func (s *Searcher) Nodes() int { return len(s.nodes) }

// Edges returns the black and blue transition counts.
func (s *Searcher) Edges() (blacks, blues int) {
	return len(s.blacks), len(s.blues)
}

// Keywords returns the reported names of all terminal nodes in node-id
// order.
func (s *Searcher) Keywords() []string {
	var names []string
	for i := range s.nodes {
		if s.nodes[i].terminal {
			names = append(names, s.nodes[i].name)
		}
	}
	return names
}
