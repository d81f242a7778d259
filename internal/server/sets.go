package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lexmatch/lexmatch/internal/config"
	"github.com/lexmatch/lexmatch/internal/registry"
)

// SetIndex maps keyword set names (file base names) to registry handles.
// Serve mode preloads a directory of YAML keyword sets through it and can
// keep them fresh with a file watcher.
type SetIndex struct {
	store  *registry.Store
	logger *slog.Logger

	mu     sync.RWMutex
	byName map[string]int64
}

// NewSetIndex returns an empty index over the given store.
func NewSetIndex(store *registry.Store, logger *slog.Logger) *SetIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &SetIndex{
		store:  store,
		logger: logger.With("component", "sets"),
		byName: make(map[string]int64),
	}
}

// LoadDir loads every *.yml/*.yaml keyword set in dir. Files that fail to
// parse are skipped with a logged error; the rest still load.
func (si *SetIndex) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read sets dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !isSetFile(e.Name()) {
			continue
		}
		if err := si.loadFile(filepath.Join(dir, e.Name())); err != nil {
			si.logger.Error("failed to load keyword set", "file", e.Name(), "error", err)
		}
	}
	return nil
}

func (si *SetIndex) loadFile(path string) error {
	keys, err := config.LoadKeywords(path)
	if err != nil {
		return err
	}
	name := setName(path)
	handle := si.store.Create(keys)

	si.mu.Lock()
	old, had := si.byName[name]
	si.byName[name] = handle
	si.mu.Unlock()

	if had {
		// Best effort: the old handle may be mid-scan, in which case the
		// in-flight call still returns it to the store and Free of a
		// checked-out handle reports invalid.
		_ = si.store.Free(old)
	}
	si.logger.Info("keyword set loaded", "set", name, "handle", handle, "keywords", len(keys))
	return nil
}

func (si *SetIndex) remove(path string) {
	name := setName(path)
	si.mu.Lock()
	handle, had := si.byName[name]
	delete(si.byName, name)
	si.mu.Unlock()
	if had {
		_ = si.store.Free(handle)
		si.logger.Info("keyword set removed", "set", name, "handle", handle)
	}
}

// Lookup resolves a set name to its current handle.
func (si *SetIndex) Lookup(name string) (int64, bool) {
	si.mu.RLock()
	defer si.mu.RUnlock()
	h, ok := si.byName[name]
	return h, ok
}

// Snapshot returns a copy of the current name -> handle mapping.
func (si *SetIndex) Snapshot() map[string]int64 {
	si.mu.RLock()
	defer si.mu.RUnlock()
	out := make(map[string]int64, len(si.byName))
	for k, v := range si.byName {
		out[k] = v
	}
	return out
}

// Watch reloads keyword sets as their files change, debounced so editor
// write bursts trigger one rebuild. Blocks until ctx is done.
func (si *SetIndex) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	si.logger.Info("watching keyword sets", "dir", dir)

	const debounce = 200 * time.Millisecond
	pending := make(map[string]fsnotify.Op)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		for path, op := range pending {
			delete(pending, path)
			if op&fsnotify.Remove != 0 || op&fsnotify.Rename != 0 {
				si.remove(path)
				continue
			}
			if err := si.loadFile(path); err != nil {
				si.logger.Error("failed to reload keyword set", "file", path, "error", err)
			}
		}
		timerC = nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSetFile(filepath.Base(ev.Name)) {
				continue
			}
			pending[ev.Name] |= ev.Op
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C
		case <-timerC:
			flush()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			si.logger.Error("watcher error", "error", err)
		}
	}
}

func isSetFile(name string) bool {
	return strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml")
}

func setName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(strings.TrimSuffix(base, ".yaml"), ".yml")
}
