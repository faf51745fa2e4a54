package markdown

import (
	"fmt"
	"strings"

	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	gmparser "github.com/gomarkdown/markdown/parser"
	"gopkg.in/yaml.v3"
)

// FrontMatter describes a rendered document.
type FrontMatter struct {
	Crate         string         `yaml:"crate"`
	Version       string         `yaml:"version,omitempty"`
	FormatVersion int            `yaml:"format_version,omitempty"`
	Items         map[string]int `yaml:"items,omitempty"`
}

// AddFrontMatter prepends a YAML front-matter block.
func AddFrontMatter(src string, fm FrontMatter) (string, error) {
	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encoding front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(out)
	b.WriteString("---\n\n")
	b.WriteString(src)
	return b.String(), nil
}

// ToHTML converts a rendered document to an HTML fragment.
func ToHTML(src string) string {
	p := gmparser.NewWithExtensions(gmparser.CommonExtensions | gmparser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(gm.ToHTML([]byte(src), p, r))
}
