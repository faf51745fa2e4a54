// Package cas stores rendered documents by the SHA-256 of their content.
// Blobs are zstd-compressed and sharded by the first two hex digits of the
// hash: <dir>/ab/cdef....md.zst.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/jcdickinson/rsdocmd/internal/config"
)

// ErrBadHash is returned for keys that are not a hex SHA-256 digest.
var ErrBadHash = errors.New("cas: invalid hash")

// Kind is the blob's file extension.
type Kind string

const (
	Markdown Kind = "md"
	HTML     Kind = "html"
)

// Store is a content-addressable directory of compressed documents.
type Store struct {
	dir string
}

// Open returns the store under the configured cache directory.
func Open() *Store {
	return New(config.CASDir())
}

// New returns a store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Hash returns the key content is stored under.
func Hash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func validHash(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

func (s *Store) path(hash string, kind Kind) string {
	return filepath.Join(s.dir, hash[:2], hash[2:]+"."+string(kind)+".zst")
}

// Write stores content, returning its hash. Writing content that is already
// stored is a no-op.
func (s *Store) Write(content string, kind Kind) (string, error) {
	hash := Hash(content)

	p := s.path(hash, kind)
	if _, err := os.Stat(p); err == nil {
		return hash, nil
	}

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("creating CAS directory: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return "", fmt.Errorf("creating zstd writer: %w", err)
	}
	blob := enc.EncodeAll([]byte(content), nil)
	enc.Close()

	// Rename into place so concurrent readers never see a partial blob.
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating CAS temp file: %w", err)
	}
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing CAS file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("closing CAS file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("renaming CAS file: %w", err)
	}
	return hash, nil
}

// Read retrieves content by hash.
func (s *Store) Read(hash string, kind Kind) (string, error) {
	if !validHash(hash) {
		return "", fmt.Errorf("%w: %q", ErrBadHash, hash)
	}
	blob, err := os.ReadFile(s.path(hash, kind))
	if err != nil {
		return "", fmt.Errorf("reading CAS file %s: %w", hash, err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return "", fmt.Errorf("creating zstd reader: %w", err)
	}
	defer dec.Close()

	data, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return "", fmt.Errorf("decompressing CAS file %s: %w", hash, err)
	}
	return string(data), nil
}

// Has reports whether a blob is stored.
func (s *Store) Has(hash string, kind Kind) bool {
	if !validHash(hash) {
		return false
	}
	_, err := os.Stat(s.path(hash, kind))
	return err == nil
}

// Clear removes every blob.
func (s *Store) Clear() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("removing CAS directory: %w", err)
	}
	return nil
}
