// Package engine runs a frozen searcher over files on disk: tree walking,
// glob filtering, and per-file match or substitute passes.
package engine

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"

	"github.com/lexmatch/lexmatch/internal/searcher"
	"github.com/lexmatch/lexmatch/internal/types"
)

// Config controls which files a tree scan visits.
type Config struct {
	Root         string
	IncludeGlobs string // comma-separated; empty means everything
	ExcludeGlobs string // comma-separated; subtracted last
	MaxBytes     int64
	Mode         types.Mode
}

// Walk traverses the tree under cfg.Root and invokes handle for each
// eligible text file. Oversized and binary files are skipped.
func Walk(cfg Config, handle func(path string, data []byte)) error {
	return filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(cfg.Root, p)
		if !allowedByGlobs(rel, cfg) {
			return nil
		}
		if info, _ := d.Info(); info != nil && cfg.MaxBytes > 0 && info.Size() > cfg.MaxBytes {
			return nil
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return nil
		}
		if looksBinary(b) {
			return nil
		}
		handle(rel, b)
		return nil
	})
}

// MatchTree runs the configured query mode over every eligible file and
// returns the findings in walk order.
func MatchTree(cfg Config, s *searcher.Searcher) ([]types.Finding, error) {
	var findings []types.Finding
	err := Walk(cfg, func(path string, data []byte) {
		for _, m := range s.Run(string(data), cfg.Mode) {
			findings = append(findings, types.Finding{Path: path, Name: m.Name, Start: m.Start, End: m.End})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", cfg.Root, err)
	}
	return findings, nil
}

// Rewrite is the outcome of substituting one file.
type Rewrite struct {
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
}

// SubstTree substitutes keywords in every eligible file. With write set,
// changed files are rewritten in place; otherwise results go through emit
// (path, replaced content) and the tree is untouched.
func SubstTree(cfg Config, s *searcher.Searcher, write bool, emit func(path, result string)) ([]Rewrite, error) {
	var rewrites []Rewrite
	var writeErr error
	err := Walk(cfg, func(path string, data []byte) {
		if writeErr != nil {
			return
		}
		result := s.Subst(string(data))
		changed := result != string(data)
		rewrites = append(rewrites, Rewrite{Path: path, Changed: changed})
		if write {
			if changed {
				full := filepath.Join(cfg.Root, path)
				if err := os.WriteFile(full, []byte(result), 0o644); err != nil {
					writeErr = fmt.Errorf("rewrite %s: %w", path, err)
				}
			}
			return
		}
		if emit != nil {
			emit(path, result)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", cfg.Root, err)
	}
	if writeErr != nil {
		return nil, writeErr
	}
	return rewrites, nil
}

// allowedByGlobs returns true if the path passes the include/exclude glob
// configuration. Globs are comma-separated and match with forward-slash
// semantics; base names are tried as well so "*.txt" works at any depth.
func allowedByGlobs(relPath string, cfg Config) bool {
	rp := strings.ReplaceAll(relPath, "\\", "/")
	includes := parseGlobsList(cfg.IncludeGlobs)
	excludes := parseGlobsList(cfg.ExcludeGlobs)
	if len(includes) > 0 && !matchAnyGlob(rp, includes) {
		return false
	}
	if len(excludes) > 0 && matchAnyGlob(rp, excludes) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, filepath.Base(pathToMatch)); ok {
			return true
		}
	}
	return false
}

func looksBinary(b []byte) bool {
	const sniff = 800
	n := len(b)
	if n > sniff {
		n = sniff
	}
	for i := 0; i < n; i++ {
		if b[i] == 0 {
			return true
		}
	}
	return false
}
