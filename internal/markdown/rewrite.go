package markdown

import (
	"cmp"
	"slices"
	"strings"

	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"
)

// RewriteLinks rewrites markdown link destinations using the provided link map.
// It parses the markdown to AST to find all link destinations, then performs
// targeted string replacements to preserve original formatting.
func RewriteLinks(src string, linkMap map[string]string) string {
	if len(linkMap) == 0 {
		return src
	}

	doc := gm.Parse([]byte(src), gmparser.NewWithExtensions(
		gmparser.CommonExtensions|gmparser.Autolink,
	))

	seen := make(map[string]bool)
	var dests []string
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if link, ok := node.(*ast.Link); ok {
			dest := string(link.Destination)
			if _, ok := linkMap[dest]; ok && !seen[dest] {
				seen[dest] = true
				dests = append(dests, dest)
			}
		}
		return ast.GoToNext
	})

	if len(dests) == 0 {
		return src
	}

	result := src
	for _, dest := range dests {
		result = strings.ReplaceAll(result, "]("+dest+")", "]("+linkMap[dest]+")")
	}

	// Reference-style definitions: [ref]: destination
	lines := strings.Split(result, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		for _, dest := range dests {
			if strings.HasSuffix(trimmed, "]: "+dest) {
				lines[i] = strings.Replace(line, "]: "+dest, "]: "+linkMap[dest], 1)
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

// RewriteShortcuts turns intra-doc references whose label is a key into
// inline links: shortcut [Foo], collapsed [Foo][] and full [text][Foo]
// references. keys maps the label to its destination. Brackets already
// followed by a destination, reference definitions at the start of a line,
// inline code spans and fenced code blocks are left alone.
func RewriteShortcuts(src string, keys map[string]string) string {
	if len(keys) == 0 {
		return src
	}

	// Longest key first so "Foo::bar" is matched before "Foo".
	ordered := make([]string, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	slices.SortFunc(ordered, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	lines := strings.Split(src, "\n")
	inFence := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		lines[i] = rewriteReferences(line, ordered, keys)
	}
	return strings.Join(lines, "\n")
}

func rewriteReferences(line string, ordered []string, keys map[string]string) string {
	spans := codeSpans(line)
	var b strings.Builder
	for i := 0; i < len(line); {
		if line[i] != '[' || inSpan(spans, i) {
			b.WriteByte(line[i])
			i++
			continue
		}
		key := matchLabel(line[i:], ordered)
		if key == "" {
			b.WriteByte('[')
			i++
			continue
		}
		dest := keys[key]
		end := i + len(key) + 2

		switch {
		case i > 0 && line[i-1] == ']':
			// [text][Key]: the label becomes the destination.
			b.WriteString("(" + dest + ")")
		case strings.HasPrefix(line[end:], "[]"):
			b.WriteString(line[i:end] + "(" + dest + ")")
			end += 2
		case end < len(line) && (line[end] == '(' || line[end] == '['):
			b.WriteString(line[i:end])
		case end < len(line) && line[end] == ':' && strings.TrimSpace(line[:i]) == "":
			// [Key]: definition
			b.WriteString(line[i:end])
		default:
			b.WriteString(line[i:end] + "(" + dest + ")")
		}
		i = end
	}
	return b.String()
}

// matchLabel returns the first key k for which s starts with "[k]".
func matchLabel(s string, ordered []string) string {
	for _, k := range ordered {
		if len(s) >= len(k)+2 && s[1:len(k)+1] == k && s[len(k)+1] == ']' {
			return k
		}
	}
	return ""
}

// codeSpans returns the [start, end) byte ranges of the inline code spans
// on a line. A backtick run without a matching closer is literal text.
func codeSpans(line string) [][2]int {
	var spans [][2]int
	for i := 0; i < len(line); {
		if line[i] != '`' {
			i++
			continue
		}
		n := backticks(line[i:])
		if closer := findCloser(line, i+n, n); closer >= 0 {
			spans = append(spans, [2]int{i, closer + n})
			i = closer + n
			continue
		}
		i += n
	}
	return spans
}

func findCloser(line string, from, n int) int {
	for j := from; j < len(line); {
		if line[j] != '`' {
			j++
			continue
		}
		m := backticks(line[j:])
		if m == n {
			return j
		}
		j += m
	}
	return -1
}

func backticks(s string) int {
	n := 0
	for n < len(s) && s[n] == '`' {
		n++
	}
	return n
}

func inSpan(spans [][2]int, i int) bool {
	for _, sp := range spans {
		if i >= sp[0] && i < sp[1] {
			return true
		}
	}
	return false
}
