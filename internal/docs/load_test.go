package docs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func TestRead(t *testing.T) {
	t.Parallel()
	doc := []byte(`{"root":"0:0","index":{}}`)

	tests := []struct {
		name  string
		input []byte
	}{
		{"plain", doc},
		{"zstd", compress(t, doc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Read(bytes.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !bytes.Equal(got, doc) {
				t.Errorf("got %q, want %q", got, doc)
			}
		})
	}
}

func TestRead_CorruptZstd(t *testing.T) {
	t.Parallel()
	input := append([]byte{0x28, 0xb5, 0x2f, 0xfd}, []byte("garbage")...)
	if _, err := Read(bytes.NewReader(input)); err == nil {
		t.Fatal("expected error for corrupt zstd input")
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "crate.json.zst")
	if err := os.WriteFile(path, compress(t, []byte(`{}`)), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "{}" {
		t.Errorf("got %q", got)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
