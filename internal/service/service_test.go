package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcdickinson/rsdocmd/internal/cas"
	"github.com/jcdickinson/rsdocmd/internal/config"
	"github.com/jcdickinson/rsdocmd/internal/db"
	"github.com/jcdickinson/rsdocmd/internal/docs"
)

const demoDoc = `{"root":"0:0","crate_version":"1.0.0","includes_private":false,"format_version":39,"index":{
	"0:0":{"name":"demo","visibility":"public","inner":{"module":{"items":["0:1"]}}},
	"0:1":{"name":"encode","visibility":"public","docs":"Encodes.","inner":{"function":{"sig":{"inputs":[],"output":{"primitive":"String"}},"generics":{"params":[],"where_predicates":[]},"header":{}}}}
}}`

func testConfig() *config.Config {
	return &config.Config{
		Render: config.RenderConfig{Format: config.FormatMarkdown},
		Fetch:  config.FetchConfig{TimeoutSeconds: 5, UserAgent: "rsdocmd-test"},
		Cache:  config.CacheConfig{LRUSize: 4},
	}
}

func docsRS(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	body := enc.EncodeAll([]byte(demoDoc), nil)
	enc.Close()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !strings.HasPrefix(r.URL.Path, "/crate/demo/") {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestService(t *testing.T, cfg *config.Config, withDB bool) (*Service, *atomic.Int32) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	srv, hits := docsRS(t)
	cfg.Fetch.BaseURL = srv.URL

	var database *db.DB
	if withDB {
		var err error
		database, err = db.New(filepath.Join(t.TempDir(), "catalog.db"))
		require.NoError(t, err)
		t.Cleanup(func() { database.Close() })
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(cfg, docs.NewFetcher(cfg.Fetch), cas.New(t.TempDir()), database, logger)
	require.NoError(t, err)
	return s, hits
}

func TestRenderCachesThroughCatalog(t *testing.T) {
	ctx := context.Background()
	s, hits := newTestService(t, testConfig(), true)

	first, err := s.Render(ctx, Request{Name: "demo"})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", first.Version)
	assert.False(t, first.Cached)
	assert.Equal(t, 2, first.Items, "encode plus the root module")
	assert.Contains(t, first.Document, "# demo 1.0.0\n")
	assert.Contains(t, first.Document, "pub fn encode() -> String")
	assert.Equal(t, cas.Hash(first.Document), first.Hash)
	assert.EqualValues(t, 1, hits.Load())

	second, err := s.Render(ctx, Request{Name: "demo", Version: "1.0.0"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Document, second.Document)
	assert.Equal(t, first.Sections, second.Sections)

	latest, err := s.Render(ctx, Request{Name: "demo", Version: "latest"})
	require.NoError(t, err)
	assert.True(t, latest.Cached, "latest resolves through the version cache")
	assert.EqualValues(t, 1, hits.Load())

	_, err = s.Render(ctx, Request{Name: "demo", Version: "1.0.0", Refresh: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, hits.Load())
}

func TestRenderWithoutCatalogUsesJSONCache(t *testing.T) {
	ctx := context.Background()
	s, hits := newTestService(t, testConfig(), false)

	_, err := s.Render(ctx, Request{Name: "demo", Version: "1.0.0"})
	require.NoError(t, err)
	require.True(t, docs.HasCrateCache("demo", "1.0.0"))

	s.ClearMemory()
	again, err := s.Render(ctx, Request{Name: "demo", Version: "1.0.0"})
	require.NoError(t, err)
	assert.False(t, again.Cached)
	assert.EqualValues(t, 1, hits.Load(), "second render reads the JSON cache")
}

func TestRenderHTMLWithFilters(t *testing.T) {
	cfg := testConfig()
	cfg.Render.Format = config.FormatHTML
	cfg.Render.DocumentedOnly = true
	s, _ := newTestService(t, cfg, false)

	r, err := s.Render(context.Background(), Request{Name: "demo", Version: "1.0.0"})
	require.NoError(t, err)
	assert.Equal(t, config.FormatHTML, r.Format)
	assert.Contains(t, r.Document, "<h3")
	assert.Equal(t, 1, r.Items, "undocumented root module is filtered")
}

func TestRenderAll(t *testing.T) {
	s, _ := newTestService(t, testConfig(), false)

	results := s.RenderAll(context.Background(), []Request{
		{Name: "demo", Version: "1.0.0"},
		{Name: "nope", Version: "0.1.0"},
	}, 2)

	require.Len(t, results, 2)
	assert.Empty(t, results[0].Error)
	assert.Equal(t, "demo", results[0].Name)
	assert.Contains(t, results[1].Error, "404")
}

func TestProduceFrontMatter(t *testing.T) {
	t.Parallel()
	_, out, err := ParseAndProduce([]byte(demoDoc), config.RenderConfig{FrontMatter: true}, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.Document, "---\ncrate: demo\nversion: 1.0.0\nformat_version: 39\n"), out.Document)
	assert.Equal(t, map[string]int{"Functions": 1, "Other": 1}, out.Sections)
}

func TestProduceBadFormat(t *testing.T) {
	t.Parallel()
	_, _, err := ParseAndProduce([]byte(demoDoc), config.RenderConfig{Format: "pdf"}, nil)
	assert.Error(t, err)
}
