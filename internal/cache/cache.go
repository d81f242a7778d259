// Package cache stores compiled keyword sets keyed by the content hash of
// their source file, so repeated invocations skip trie construction for
// large unchanged sets.
package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	xxhash "github.com/cespare/xxhash/v2"
)

// DB maps a keyword file content hash to the encoded searcher record.
type DB struct {
	Entries map[string]string `json:"entries"`
}

func defaultPath(dir string) string {
	return filepath.Join(dir, ".lexmatchcache.json")
}

// Key hashes keyword file content into a cache key.
func Key(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	sum := xxhash.Sum64(b)
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}

// Load reads the cache DB stored alongside the keyword files in dir. A
// missing or unreadable cache yields an empty DB and the error.
func Load(dir string) (DB, error) {
	var db DB
	b, err := os.ReadFile(defaultPath(dir))
	if err != nil {
		return DB{Entries: map[string]string{}}, err
	}
	if err := json.Unmarshal(b, &db); err != nil {
		return DB{Entries: map[string]string{}}, err
	}
	if db.Entries == nil {
		db.Entries = map[string]string{}
	}
	return db, nil
}

// Save writes the cache DB back to dir.
func Save(dir string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	b, _ := json.MarshalIndent(db, "", "  ")
	return os.WriteFile(defaultPath(dir), b, 0o644)
}
