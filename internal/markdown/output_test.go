package markdown

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestAddFrontMatter(t *testing.T) {
	t.Parallel()

	fm := FrontMatter{
		Crate:         "geo",
		Version:       "0.3.1",
		FormatVersion: 39,
		Items:         map[string]int{"Structs": 2, "Functions": 1},
	}
	got, err := AddFrontMatter("# geo 0.3.1\n", fm)
	if err != nil {
		t.Fatalf("AddFrontMatter: %v", err)
	}
	if !strings.HasPrefix(got, "---\n") {
		t.Error("missing opening ---")
	}
	if !strings.HasSuffix(got, "---\n\n# geo 0.3.1\n") {
		t.Errorf("body not preserved after front matter: %q", got)
	}

	block := strings.TrimPrefix(got, "---\n")
	block = block[:strings.Index(block, "---\n")]
	var back FrontMatter
	if err := yaml.Unmarshal([]byte(block), &back); err != nil {
		t.Fatalf("front matter is not YAML: %v", err)
	}
	if back.Crate != "geo" || back.Version != "0.3.1" || back.Items["Structs"] != 2 {
		t.Errorf("decoded front matter = %+v", back)
	}
	if aIdx, zIdx := strings.Index(got, "Functions"), strings.Index(got, "Structs"); aIdx > zIdx {
		t.Error("item keys not sorted")
	}
}

func TestAddFrontMatter_OmitsEmpty(t *testing.T) {
	t.Parallel()
	got, err := AddFrontMatter("body", FrontMatter{Crate: "x"})
	if err != nil {
		t.Fatalf("AddFrontMatter: %v", err)
	}
	if want := "---\ncrate: x\n---\n\nbody"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestToHTML(t *testing.T) {
	t.Parallel()
	src := "# geo 1.0\n\n## Structs\n\n<a id=\"struct.Point\"></a>\n### Point\n\nSee [origin](#function.origin).\n\n```rust\npub struct Point;\n```\n"
	got := ToHTML(src)

	for _, want := range []string{
		`geo 1.0</h1>`,
		`<a href="#function.origin">origin</a>`,
		`<a id="struct.Point"></a>`,
		`<code class="language-rust">pub struct Point;`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("HTML missing %q:\n%s", want, got)
		}
	}
}
