// Package registry holds frozen searchers behind integer handles so callers
// can reuse a built automaton across independent calls without carrying the
// automaton itself.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/lexmatch/lexmatch/internal/searcher"
	"github.com/lexmatch/lexmatch/internal/types"
)

// ErrInvalidHandle reports an operation on a handle that is unknown,
// already freed, or currently checked out by another in-flight call.
var ErrInvalidHandle = errors.New("invalid searcher handle")

// Store maps handles to frozen searchers. The mutex guards only map
// membership; a scan runs with its searcher checked out of the map and the
// lock released, so calls on different handles never block each other
// beyond the brief map access. Two calls on the same handle race for the
// entry: the loser fails with ErrInvalidHandle rather than queuing.
type Store struct {
	logger *slog.Logger

	mu        sync.Mutex
	next      int64
	searchers map[int64]*searcher.Searcher
}

// NewStore returns an empty Store. A nil logger falls back to the default.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger:    logger.With("component", "registry"),
		searchers: make(map[int64]*searcher.Searcher),
	}
}

// Create builds and freezes a new searcher from the given keywords and
// stores it under a freshly allocated handle. Handles increase
// monotonically and are never reissued.
func (st *Store) Create(keys []types.Keyword) int64 {
	b := searcher.NewBuilder()
	for _, k := range keys {
		b.Insert(k.Pattern, k.Alias)
	}
	h := st.put(b.Finalize())
	st.logger.Debug("searcher created", "handle", h, "keywords", len(keys))
	return h
}

// Put stores an already-frozen searcher and returns its handle. Load and
// the named-set server surface use this directly.
func (st *Store) Put(s *searcher.Searcher) int64 {
	return st.put(s)
}

func (st *Store) put(s *searcher.Searcher) int64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.next++
	st.searchers[st.next] = s
	return st.next
}

// checkout removes the entry so the scan can run without holding the lock.
// The caller must checkin afterwards.
func (st *Store) checkout(h int64) (*searcher.Searcher, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.searchers[h]
	if !ok {
		return nil, fmt.Errorf("searcher %d is unknown, freed, or busy: %w", h, ErrInvalidHandle)
	}
	delete(st.searchers, h)
	return s, nil
}

func (st *Store) checkin(h int64, s *searcher.Searcher) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.searchers[h] = s
}

// Match runs the query mode named by mode against the searcher held under
// h. Any mode other than ModeLine runs the whole-text scan.
func (st *Store) Match(h int64, text string, mode types.Mode) ([]types.Match, error) {
	s, err := st.checkout(h)
	if err != nil {
		return nil, err
	}
	defer st.checkin(h, s)
	return s.Run(text, mode), nil
}

// Subst replaces matched spans in text using the searcher held under h.
func (st *Store) Subst(h int64, text string) (string, error) {
	s, err := st.checkout(h)
	if err != nil {
		return "", err
	}
	defer st.checkin(h, s)
	return s.Subst(text), nil
}

// Save serializes the searcher held under h as a portable JSON record.
func (st *Store) Save(h int64) (string, error) {
	s, err := st.checkout(h)
	if err != nil {
		return "", err
	}
	defer st.checkin(h, s)
	data, err := searcher.Encode(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Load rehydrates a searcher from a record produced by Save and stores it
// under a new handle.
func (st *Store) Load(record string) (int64, error) {
	s, err := searcher.Decode([]byte(record))
	if err != nil {
		return 0, err
	}
	h := st.put(s)
	st.logger.Debug("searcher loaded", "handle", h)
	return h, nil
}

// Free removes and discards the entry. Subsequent operations on the handle
// fail with ErrInvalidHandle.
func (st *Store) Free(h int64) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.searchers[h]; !ok {
		return fmt.Errorf("searcher %d is unknown, freed, or busy: %w", h, ErrInvalidHandle)
	}
	delete(st.searchers, h)
	st.logger.Debug("searcher freed", "handle", h)
	return nil
}

// Len returns the number of searchers currently held (checked-out entries
// excluded).
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.searchers)
}

// Handles returns the held handles in ascending order.
func (st *Store) Handles() []int64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]int64, 0, len(st.searchers))
	for h := range st.searchers {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
