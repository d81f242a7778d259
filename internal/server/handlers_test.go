package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexmatch/lexmatch/internal/registry"
	"github.com/lexmatch/lexmatch/internal/types"
)

func newTestServer(t *testing.T) (*httptest.Server, *registry.Store) {
	t.Helper()
	store := registry.NewStore(nil)
	metrics := NewMetrics(func() float64 { return float64(store.Len()) })
	h := NewHandler(store, nil, metrics, nil)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func createSearcher(t *testing.T, srv *httptest.Server, keys []types.Keyword) int64 {
	t.Helper()
	resp := postJSON(t, srv.URL+"/searchers", map[string]any{"keywords": keys})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out struct {
		Handle int64 `json:"handle"`
	}
	decodeBody(t, resp, &out)
	return out.Handle
}

func TestCreateMatchSubstLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	var keys []types.Keyword
	for _, kw := range []string{"a", "ab", "bab", "bc", "bca", "c", "caa"} {
		keys = append(keys, types.Keyword{Pattern: kw, Alias: "x" + kw + "y"})
	}
	handle := createSearcher(t, srv, keys)

	resp := postJSON(t, fmt.Sprintf("%s/searchers/%d/match", srv.URL, handle), map[string]any{"text": "abccab", "mode": "all"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var matchOut struct {
		Matches []types.Match `json:"matches"`
	}
	decodeBody(t, resp, &matchOut)
	assert.Len(t, matchOut.Matches, 7)

	resp = postJSON(t, fmt.Sprintf("%s/searchers/%d/subst", srv.URL, handle), map[string]any{"text": "abccab"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var substOut struct {
		Result string `json:"result"`
	}
	decodeBody(t, resp, &substOut)
	assert.Equal(t, "xabyxcyxcyxaby", substOut.Result)
}

func TestLineModeOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	handle := createSearcher(t, srv, []types.Keyword{{Pattern: "abc"}, {Pattern: "def"}})

	resp := postJSON(t, fmt.Sprintf("%s/searchers/%d/match", srv.URL, handle), map[string]any{"text": "...\n.abc.\n\n---def---\n...\nabc", "mode": "line"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Matches []types.Match `json:"matches"`
	}
	decodeBody(t, resp, &out)
	require.Len(t, out.Matches, 3)
	assert.Equal(t, types.Match{Name: ".abc.", Start: 1, End: 4}, out.Matches[0])
}

func TestSaveLoadOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	handle := createSearcher(t, srv, []types.Keyword{{Pattern: "needle", Alias: "<x>"}})

	resp, err := http.Get(fmt.Sprintf("%s/searchers/%d/record", srv.URL, handle))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var saveOut struct {
		Record string `json:"record"`
	}
	decodeBody(t, resp, &saveOut)
	require.NotEmpty(t, saveOut.Record)

	resp = postJSON(t, srv.URL+"/searchers/load", map[string]string{"record": saveOut.Record})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var loadOut struct {
		Handle int64 `json:"handle"`
	}
	decodeBody(t, resp, &loadOut)
	assert.NotEqual(t, handle, loadOut.Handle)

	resp = postJSON(t, fmt.Sprintf("%s/searchers/%d/subst", srv.URL, loadOut.Handle), map[string]any{"text": "a needle b"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var substOut struct {
		Result string `json:"result"`
	}
	decodeBody(t, resp, &substOut)
	assert.Equal(t, "a <x> b", substOut.Result)
}

func TestFreeThenInvalidHandle(t *testing.T) {
	srv, _ := newTestServer(t)
	handle := createSearcher(t, srv, []types.Keyword{{Pattern: "abc"}})

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/searchers/%d", srv.URL, handle), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Every operation on the freed handle is a 404 naming the handle.
	resp = postJSON(t, fmt.Sprintf("%s/searchers/%d/match", srv.URL, handle), map[string]any{"text": "abc"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var errOut struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &errOut)
	assert.Contains(t, errOut.Error, fmt.Sprint(handle))

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBadRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/searchers", map[string]any{"keywords": []types.Keyword{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/searchers", map[string]any{"keywords": []types.Keyword{{Alias: "no-pattern"}}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/searchers/load", map[string]string{"record": "{broken"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/searchers/notanumber/match", map[string]any{"text": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	createSearcher(t, srv, []types.Keyword{{Pattern: "abc"}})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	var health struct {
		Status    string `json:"status"`
		Searchers int    `json:"searchers"`
	}
	decodeBody(t, resp, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 1, health.Searchers)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSetIndexLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pets.yml"),
		[]byte("keywords:\n  - pattern: cat\n  - pattern: dog\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"),
		[]byte(": not yaml"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"),
		[]byte("ignored"), 0o644))

	store := registry.NewStore(nil)
	si := NewSetIndex(store, nil)
	require.NoError(t, si.LoadDir(dir))

	snap := si.Snapshot()
	require.Len(t, snap, 1)
	handle, ok := si.Lookup("pets")
	require.True(t, ok)

	matches, err := store.Match(handle, "a cat and a dog", types.ModeAll)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestSetIndexReloadRemapsHandle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pets.yml")
	require.NoError(t, os.WriteFile(path, []byte("keywords:\n  - pattern: cat\n"), 0o644))

	store := registry.NewStore(nil)
	si := NewSetIndex(store, nil)
	require.NoError(t, si.LoadDir(dir))
	first, _ := si.Lookup("pets")

	require.NoError(t, os.WriteFile(path, []byte("keywords:\n  - pattern: dog\n"), 0o644))
	require.NoError(t, si.loadFile(path))

	second, ok := si.Lookup("pets")
	require.True(t, ok)
	assert.NotEqual(t, first, second)

	// The old handle was freed.
	_, err := store.Match(first, "cat", types.ModeAll)
	assert.ErrorIs(t, err, registry.ErrInvalidHandle)

	matches, err := store.Match(second, "dog", types.ModeAll)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
