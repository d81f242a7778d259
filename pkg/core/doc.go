// Package core is the stable public API surface of lexmatch for embedding
// in other programs. It re-exports the internal types and wraps the
// build/query pipeline so external consumers do not import internals
// directly.
package core
