// Package searcher implements multi-keyword text matching and substitution
// on an Aho-Corasick style automaton.
//
// Construction is two-phase: a Builder accepts keyword insertions, and
// Finalize computes the failure links and returns an immutable Searcher.
// A frozen Searcher never mutates and is safe for unlimited concurrent
// readers without locking.
//
// All offsets in query results count Unicode characters, not bytes.
package searcher
