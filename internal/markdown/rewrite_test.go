package markdown

import (
	"strings"
	"testing"
)

func TestRewriteLinks_InlineLinks(t *testing.T) {
	t.Parallel()
	src := "See [Foo](old/path) for details."
	got := RewriteLinks(src, map[string]string{"old/path": "#struct.Foo"})
	want := "See [Foo](#struct.Foo) for details."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteLinks_ReferenceStyleLinks(t *testing.T) {
	t.Parallel()
	src := "See [Foo][ref] for details.\n\n[ref]: old/path"
	got := RewriteLinks(src, map[string]string{"old/path": "#trait.New"})
	if !strings.Contains(got, "[ref]: #trait.New") {
		t.Errorf("reference link not rewritten: %q", got)
	}
}

func TestRewriteLinks_EmptyMap(t *testing.T) {
	t.Parallel()
	src := "Hello [world](url)."
	got := RewriteLinks(src, nil)
	if got != src {
		t.Errorf("expected unchanged, got %q", got)
	}
	got = RewriteLinks(src, map[string]string{})
	if got != src {
		t.Errorf("expected unchanged for empty map, got %q", got)
	}
}

func TestRewriteLinks_NoMatchingLinks(t *testing.T) {
	t.Parallel()
	src := "Check [this](keep-me) out."
	got := RewriteLinks(src, map[string]string{"other": "#item.x"})
	if got != src {
		t.Errorf("expected unchanged, got %q", got)
	}
}

func TestRewriteLinks_MultipleLinks(t *testing.T) {
	t.Parallel()
	src := "[A](a-dest) and [B](b-dest) together."
	got := RewriteLinks(src, map[string]string{
		"a-dest": "#function.a",
		"b-dest": "#function.b",
	})
	if !strings.Contains(got, "(#function.a)") {
		t.Error("link A not rewritten")
	}
	if !strings.Contains(got, "(#function.b)") {
		t.Error("link B not rewritten")
	}
}

func TestRewriteShortcuts(t *testing.T) {
	t.Parallel()

	keys := map[string]string{
		"Foo":      "#struct.Foo",
		"Foo::bar": "#function.bar",
		"`Baz`":    "#enum.Baz",
	}

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"plain", "See [Foo].", "See [Foo](#struct.Foo)."},
		{"code_span", "Returns [`Baz`] values.", "Returns [`Baz`](#enum.Baz) values."},
		{"longest_first", "Call [Foo::bar] on [Foo].", "Call [Foo::bar](#function.bar) on [Foo](#struct.Foo)."},
		{"repeated", "[Foo] and [Foo]", "[Foo](#struct.Foo) and [Foo](#struct.Foo)"},
		{"inline_link_kept", "[Foo](elsewhere)", "[Foo](elsewhere)"},
		{"full_reference", "Full ref: [the point][Foo].", "Full ref: [the point](#struct.Foo)."},
		{"full_reference_unknown_label", "[Foo][Qux]", "[Foo][Qux]"},
		{"collapsed_reference", "Collapsed: [Foo][].", "Collapsed: [Foo](#struct.Foo)."},
		{"colon_mid_sentence", "see [Foo]: it is used", "see [Foo](#struct.Foo): it is used"},
		{"definition_kept", "[Foo]: https://example.com", "[Foo]: https://example.com"},
		{"inline_code_kept", "Code: `[Foo]`.", "Code: `[Foo]`."},
		{"double_backtick_code_kept", "``a ` [Foo]`` then [Foo]", "``a ` [Foo]`` then [Foo](#struct.Foo)"},
		{"unclosed_backtick", "a ` [Foo]", "a ` [Foo](#struct.Foo)"},
		{"end_of_line", "ends with [Foo]", "ends with [Foo](#struct.Foo)"},
		{"unknown_key", "[Qux] stays", "[Qux] stays"},
		{"fenced_block", "```\n[Foo]\n```\n[Foo]", "```\n[Foo]\n```\n[Foo](#struct.Foo)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RewriteShortcuts(tt.src, keys); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewriteShortcuts_EmptyMap(t *testing.T) {
	t.Parallel()
	src := "See [Foo]."
	if got := RewriteShortcuts(src, nil); got != src {
		t.Errorf("expected unchanged, got %q", got)
	}
}
