package docs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/jcdickinson/rsdocmd/internal/config"
)

const cacheSuffix = ".json.zst"

func crateCachePath(name, version string) string {
	return filepath.Join(config.JSONCacheDir(), name+"_"+version+cacheSuffix)
}

// SaveCrateCache compresses and saves rustdoc JSON bytes to disk.
func SaveCrateCache(data []byte, name, version string) error {
	dir := config.JSONCacheDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating json cache dir: %w", err)
	}

	f, err := os.Create(crateCachePath(name, version))
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer f.Close()

	w, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("writing compressed data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing zstd writer: %w", err)
	}
	return nil
}

// LoadCrateCache loads and decompresses cached rustdoc JSON from disk.
func LoadCrateCache(name, version string) ([]byte, error) {
	f, err := os.Open(crateCachePath(name, version))
	if err != nil {
		return nil, fmt.Errorf("opening cache file: %w", err)
	}
	defer f.Close()

	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing cached rustdoc JSON: %w", err)
	}
	return data, nil
}

// HasCrateCache checks whether a cached rustdoc JSON file exists on disk.
func HasCrateCache(name, version string) bool {
	_, err := os.Stat(crateCachePath(name, version))
	return err == nil
}

// CachedCrate is one downloaded rustdoc JSON document.
type CachedCrate struct {
	Name    string
	Version string
	Size    int64
}

// ListCrateCache returns the cached documents sorted by name and version.
func ListCrateCache() ([]CachedCrate, error) {
	entries, err := os.ReadDir(config.JSONCacheDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading json cache dir: %w", err)
	}

	var out []CachedCrate
	for _, e := range entries {
		base, ok := strings.CutSuffix(e.Name(), cacheSuffix)
		if !ok || e.IsDir() {
			continue
		}
		i := strings.LastIndex(base, "_")
		if i <= 0 {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, CachedCrate{Name: base[:i], Version: base[i+1:], Size: info.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Version < out[j].Version
	})
	return out, nil
}

// ClearCrateCache removes every cached document.
func ClearCrateCache() error {
	if err := os.RemoveAll(config.JSONCacheDir()); err != nil {
		return fmt.Errorf("removing json cache dir: %w", err)
	}
	return nil
}
