// Package service downloads rustdoc JSON from docs.rs, renders it and keeps
// the results in the local cache: downloaded JSON in the JSON cache, rendered
// documents in the CAS and their metadata in the DuckDB catalog.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jcdickinson/rsdocmd/internal/cas"
	"github.com/jcdickinson/rsdocmd/internal/config"
	"github.com/jcdickinson/rsdocmd/internal/db"
	"github.com/jcdickinson/rsdocmd/internal/docs"
	"github.com/jcdickinson/rsdocmd/internal/rustdoc"
)

// Request names a document to render.
type Request struct {
	Name    string
	Version string // "" or "latest" resolves through docs.rs
	Refresh bool   // ignore the catalog and the JSON cache
}

// Result describes a rendered document.
type Result struct {
	Name     string         `json:"name"`
	Version  string         `json:"version"`
	Format   config.Format  `json:"format"`
	Hash     string         `json:"hash"`
	Items    int            `json:"items"`
	Sections map[string]int `json:"sections,omitempty"`
	Cached   bool           `json:"cached"`
	Document string         `json:"-"`
	Error    string         `json:"error,omitempty"`
}

type versionCacheEntry struct {
	version string
	expiry  time.Time
}

const versionCacheTTL = 10 * time.Minute

// Service renders crates. It is safe for concurrent use.
type Service struct {
	cfg     *config.Config
	fetcher *docs.Fetcher
	store   *cas.Store
	db      *db.DB // optional
	log     *slog.Logger

	crates *lru.Cache[string, *rustdoc.Crate]
	group  singleflight.Group

	versionCache   map[string]versionCacheEntry
	versionCacheMu sync.RWMutex
}

// New builds a Service. database may be nil, in which case renders are not
// catalogued and every request renders afresh.
func New(cfg *config.Config, fetcher *docs.Fetcher, store *cas.Store, database *db.DB, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	crates, err := lru.New[string, *rustdoc.Crate](cfg.Cache.LRUSize)
	if err != nil {
		return nil, fmt.Errorf("creating crate cache: %w", err)
	}
	return &Service{
		cfg:          cfg,
		fetcher:      fetcher,
		store:        store,
		db:           database,
		log:          logger,
		crates:       crates,
		versionCache: make(map[string]versionCacheEntry),
	}, nil
}

func (s *Service) format() config.Format {
	f, err := config.ParseFormat(string(s.cfg.Render.Format))
	if err != nil {
		return config.FormatMarkdown
	}
	return f
}

func casKind(f config.Format) cas.Kind {
	if f == config.FormatHTML {
		return cas.HTML
	}
	return cas.Markdown
}

func (s *Service) getCachedVersion(name string) (string, bool) {
	s.versionCacheMu.RLock()
	defer s.versionCacheMu.RUnlock()
	entry, ok := s.versionCache[name]
	if !ok || time.Now().After(entry.expiry) {
		return "", false
	}
	return entry.version, true
}

func (s *Service) setCachedVersion(name, version string) {
	s.versionCacheMu.Lock()
	defer s.versionCacheMu.Unlock()
	s.versionCache[name] = versionCacheEntry{version: version, expiry: time.Now().Add(versionCacheTTL)}
}

// ClearMemory drops the in-memory crate and version caches.
func (s *Service) ClearMemory() {
	s.crates.Purge()
	s.versionCacheMu.Lock()
	s.versionCache = make(map[string]versionCacheEntry)
	s.versionCacheMu.Unlock()
}

// Render returns the rendered document for req, from the catalog when it
// is already there.
func (s *Service) Render(ctx context.Context, req Request) (*Result, error) {
	version := req.Version
	if version == "" {
		version = "latest"
	}
	if version == "latest" && !req.Refresh {
		if v, ok := s.getCachedVersion(req.Name); ok {
			version = v
		}
	}

	format := s.format()
	if !req.Refresh && version != "latest" {
		if r, err := s.lookup(ctx, req.Name, version, format); err != nil {
			s.log.Warn("catalog lookup failed", "crate", req.Name, "version", version, "error", err)
		} else if r != nil {
			return r, nil
		}
	}

	key := req.Name + "@" + version + "@" + string(format)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.render(ctx, req.Name, version, format, req.Refresh)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (s *Service) lookup(ctx context.Context, name, version string, format config.Format) (*Result, error) {
	if s.db == nil {
		return nil, nil
	}
	rec, err := s.db.GetRender(ctx, name, version, string(format))
	if err != nil || rec == nil {
		return nil, err
	}
	doc, err := s.store.Read(rec.ContentHash, casKind(format))
	if err != nil {
		// Catalogued but missing from the CAS: render again.
		s.log.Debug("catalogued render missing from CAS", "crate", name, "version", version, "error", err)
		return nil, nil
	}
	return &Result{
		Name:     rec.Name,
		Version:  rec.Version,
		Format:   format,
		Hash:     rec.ContentHash,
		Items:    rec.ItemCount,
		Sections: rec.Sections,
		Cached:   true,
		Document: doc,
	}, nil
}

func (s *Service) render(ctx context.Context, name, version string, format config.Format, refresh bool) (*Result, error) {
	c, err := s.loadCrate(ctx, name, version, refresh)
	if err != nil {
		return nil, err
	}
	realVersion := c.CrateVersion
	if realVersion == "" {
		realVersion = version
	}
	if version == "latest" {
		s.setCachedVersion(name, realVersion)
	}

	rc := s.cfg.Render
	rc.Format = format
	out, err := Produce(c, rc, s.log.With("crate", name, "version", realVersion))
	if err != nil {
		return nil, fmt.Errorf("rendering %s@%s: %w", name, realVersion, err)
	}

	hash, err := s.store.Write(out.Document, casKind(format))
	if err != nil {
		return nil, err
	}

	if s.db != nil {
		if err := s.db.RecordRender(ctx, &db.Render{
			Name:          name,
			Version:       realVersion,
			Format:        string(format),
			ContentHash:   hash,
			FormatVersion: c.FormatVersion,
			ItemCount:     out.Items,
			Sections:      out.Sections,
		}); err != nil {
			s.log.Warn("failed to catalog render", "crate", name, "version", realVersion, "error", err)
		}
	}

	s.log.Info("rendered crate", "crate", name, "version", realVersion, "format", format, "items", out.Items)
	return &Result{
		Name:     name,
		Version:  realVersion,
		Format:   format,
		Hash:     hash,
		Items:    out.Items,
		Sections: out.Sections,
		Document: out.Document,
	}, nil
}

// loadCrate returns the parsed crate from memory, the JSON cache or docs.rs,
// in that order.
func (s *Service) loadCrate(ctx context.Context, name, version string, refresh bool) (*rustdoc.Crate, error) {
	key := name + "@" + version
	if !refresh && version != "latest" {
		if c, ok := s.crates.Get(key); ok {
			return c, nil
		}
		if docs.HasCrateCache(name, version) {
			data, err := docs.LoadCrateCache(name, version)
			if err == nil {
				c, err := rustdoc.Parse(data)
				if err != nil {
					return nil, fmt.Errorf("parsing cached %s@%s: %w", name, version, err)
				}
				s.crates.Add(key, c)
				return c, nil
			}
			s.log.Warn("failed to read JSON cache", "crate", name, "version", version, "error", err)
		}
	}

	s.log.Info("fetching rustdoc JSON", "crate", name, "version", version)
	data, err := s.fetcher.FetchRustdocJSON(ctx, name, version)
	if err != nil {
		return nil, fmt.Errorf("fetching docs: %w", err)
	}
	c, err := rustdoc.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s@%s: %w", name, version, err)
	}

	realVersion := c.CrateVersion
	if realVersion == "" {
		realVersion = version
	}
	if err := docs.SaveCrateCache(data, name, realVersion); err != nil {
		s.log.Warn("failed to cache rustdoc JSON", "crate", name, "version", realVersion, "error", err)
	}
	s.crates.Add(name+"@"+realVersion, c)
	return c, nil
}

// RenderAll renders several crates with at most limit in flight. Failures
// are reported per crate in Result.Error; results keep the order of reqs.
func (s *Service) RenderAll(ctx context.Context, reqs []Request, limit int) []*Result {
	results := make([]*Result, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		g.Go(func() error {
			r, err := s.Render(ctx, req)
			if err != nil {
				r = &Result{Name: req.Name, Version: req.Version, Format: s.format(), Error: err.Error()}
			}
			results[i] = r
			return nil
		})
	}
	g.Wait()
	return results
}
