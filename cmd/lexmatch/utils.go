package lexmatch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lexmatch/lexmatch/internal/cache"
	"github.com/lexmatch/lexmatch/internal/config"
	"github.com/lexmatch/lexmatch/internal/searcher"
)

// pickString resolves a string setting: CLI flag wins, then config file,
// then the built-in default.
func pickString(flagVal string, cfgVal *string, def string) string {
	if flagVal != "" {
		return flagVal
	}
	if cfgVal != nil && *cfgVal != "" {
		return *cfgVal
	}
	return def
}

func pickBool(flagVal bool, cfgVal *bool) bool {
	if flagVal {
		return true
	}
	return cfgVal != nil && *cfgVal
}

func pickInt64(flagVal int64, cfgVal *int64, def int64) int64 {
	if flagVal != 0 {
		return flagVal
	}
	if cfgVal != nil && *cfgVal != 0 {
		return *cfgVal
	}
	return def
}

// loadFileConfig reads the config file named by --config, or a local
// .lexmatch.yml next to the working directory. Absence is not an error.
func loadFileConfig() config.FileConfig {
	if flagConfig != "" {
		cfg, err := config.LoadFile(flagConfig)
		if err != nil {
			fmt.Fprintln(os.Stderr, "warning: cannot read config:", err)
		}
		return cfg
	}
	cfg, _ := config.LoadLocal(".")
	return cfg
}

// loadSearcher compiles the keyword file at path, consulting the record
// cache next to it unless noCache is set. Cache entries are keyed by the
// content hash of the keyword file, so edits invalidate naturally.
func loadSearcher(path string, noCache bool) (*searcher.Searcher, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords: %w", err)
	}
	dir := filepath.Dir(path)
	key := cache.Key(raw)

	if !noCache {
		if db, err := cache.Load(dir); err == nil {
			if rec, ok := db.Entries[key]; ok {
				if s, err := searcher.Decode([]byte(rec)); err == nil {
					return s, nil
				}
			}
		}
	}

	keys, err := config.ParseKeywords(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	b := searcher.NewBuilder()
	for _, k := range keys {
		b.Insert(k.Pattern, k.Alias)
	}
	s := b.Finalize()

	if !noCache {
		db, _ := cache.Load(dir)
		if rec, err := searcher.Encode(s); err == nil {
			db.Entries[key] = string(rec)
			if err := cache.Save(dir, db); err != nil {
				fmt.Fprintln(os.Stderr, "warning: cannot write cache:", err)
			}
		}
	}
	return s, nil
}

// readText returns the text to scan: the first positional argument if
// present, otherwise all of stdin.
func readText(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}
