package docs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/jcdickinson/rsdocmd/internal/config"
)

// Fetcher downloads rustdoc JSON from docs.rs.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewFetcher builds a Fetcher from the fetch section of the configuration.
func NewFetcher(cfg config.FetchConfig) *Fetcher {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://docs.rs"
	}
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout()},
		baseURL:   base,
		userAgent: cfg.UserAgent,
	}
}

// FetchRustdocJSON downloads and decompresses rustdoc JSON from docs.rs.
// The version "latest" is resolved by docs.rs via redirect.
func (f *Fetcher) FetchRustdocJSON(ctx context.Context, name, version string) ([]byte, error) {
	if version == "" {
		version = "latest"
	}

	u := fmt.Sprintf("%s/crate/%s/%s/json", f.baseURL, url.PathEscape(name), url.PathEscape(version))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("docs.rs returned %d for %s/%s: %s", resp.StatusCode, name, version, string(body))
	}

	// docs.rs returns zstd-compressed JSON
	decoder, err := zstd.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer decoder.Close()

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decompressing rustdoc JSON: %w", err)
	}

	return data, nil
}
