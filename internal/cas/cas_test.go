package cas

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	t.Parallel()
	s := New(t.TempDir())

	content := "# demo 1.0.0\n\n## Functions\n"
	hash, err := s.Write(content, Markdown)
	if err != nil {
		t.Fatal(err)
	}
	if hash != Hash(content) {
		t.Fatalf("hash = %s, want %s", hash, Hash(content))
	}

	got, err := s.Read(hash, Markdown)
	if err != nil {
		t.Fatal(err)
	}
	if got != content {
		t.Errorf("round-trip failed: got %q, want %q", got, content)
	}
	if !s.Has(hash, Markdown) {
		t.Error("Has = false after write")
	}
	if s.Has(hash, HTML) {
		t.Error("kinds are stored separately")
	}
}

func TestWrite_Dedup(t *testing.T) {
	t.Parallel()
	s := New(t.TempDir())

	hash1, err := s.Write("duplicate content", Markdown)
	if err != nil {
		t.Fatal(err)
	}
	hash2, err := s.Write("duplicate content", Markdown)
	if err != nil {
		t.Fatal(err)
	}
	if hash1 != hash2 {
		t.Errorf("same content produced different hashes: %s vs %s", hash1, hash2)
	}

	shard, err := os.ReadDir(s.Dir() + "/" + hash1[:2])
	if err != nil {
		t.Fatal(err)
	}
	if len(shard) != 1 || !strings.HasSuffix(shard[0].Name(), ".md.zst") {
		t.Errorf("shard contents = %v", shard)
	}
}

func TestWrite_DifferentContent(t *testing.T) {
	t.Parallel()
	s := New(t.TempDir())

	hash1, err := s.Write("content A", Markdown)
	if err != nil {
		t.Fatal(err)
	}
	hash2, err := s.Write("content B", Markdown)
	if err != nil {
		t.Fatal(err)
	}
	if hash1 == hash2 {
		t.Error("different content should produce different hashes")
	}
}

func TestRead_MissingHash(t *testing.T) {
	t.Parallel()
	s := New(t.TempDir())

	_, err := s.Read(strings.Repeat("0", 64), Markdown)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

func TestRead_BadHash(t *testing.T) {
	t.Parallel()
	s := New(t.TempDir())

	for _, h := range []string{"", "abc", "../../../../etc/passwd", strings.Repeat("z", 64)} {
		if _, err := s.Read(h, Markdown); !errors.Is(err, ErrBadHash) {
			t.Errorf("Read(%q) err = %v, want ErrBadHash", h, err)
		}
	}
}

func TestClear(t *testing.T) {
	t.Parallel()
	s := New(t.TempDir())

	hash, err := s.Write("gone soon", HTML)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if s.Has(hash, HTML) {
		t.Error("blob survived Clear")
	}
}

func TestOpen_UsesCacheDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	if got := Open().Dir(); !strings.HasPrefix(got, dir) {
		t.Errorf("Dir = %q, want under %q", got, dir)
	}
}
