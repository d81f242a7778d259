package core

import (
	"log/slog"

	"github.com/lexmatch/lexmatch/internal/registry"
	"github.com/lexmatch/lexmatch/internal/searcher"
	"github.com/lexmatch/lexmatch/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type Keyword = types.Keyword
type Match = types.Match
type Mode = types.Mode
type Searcher = searcher.Searcher
type Store = registry.Store

const (
	ModeAll  = types.ModeAll
	ModeLine = types.ModeLine
)

// ErrInvalidHandle is returned by Store operations on unknown, freed, or
// busy handles.
var ErrInvalidHandle = registry.ErrInvalidHandle

// Compile builds and freezes a searcher from the given keywords.
func Compile(keys []Keyword) *Searcher {
	b := searcher.NewBuilder()
	for _, k := range keys {
		b.Insert(k.Pattern, k.Alias)
	}
	return b.Finalize()
}

// MatchOnce builds a throwaway searcher for patterns and runs a whole-text
// match. Callers that query repeatedly should Compile once or use a Store.
func MatchOnce(patterns []string, text string) []Match {
	b := searcher.NewBuilder()
	for _, p := range patterns {
		b.Insert(p, "")
	}
	return b.Finalize().Match(text)
}

// SubstOnce builds a throwaway searcher for the pattern/alias pairs and
// substitutes them in text.
func SubstOnce(pairs []Keyword, text string) string {
	return Compile(pairs).Subst(text)
}

// NewStore creates a handle registry for callers that reuse searchers
// across independent calls.
func NewStore(logger *slog.Logger) *Store {
	return registry.NewStore(logger)
}

// Encode serializes a frozen searcher as a portable JSON record.
func Encode(s *Searcher) ([]byte, error) { return searcher.Encode(s) }

// Decode rehydrates a searcher from a record produced by Encode.
func Decode(data []byte) (*Searcher, error) { return searcher.Decode(data) }
