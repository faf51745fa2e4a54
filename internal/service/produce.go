package service

import (
	"fmt"
	"log/slog"

	"github.com/jcdickinson/rsdocmd/internal/config"
	md "github.com/jcdickinson/rsdocmd/internal/markdown"
	"github.com/jcdickinson/rsdocmd/internal/rustdoc"
	"github.com/jcdickinson/rsdocmd/internal/synth"
)

// Output is a rendered document.
type Output struct {
	Document string
	Format   config.Format
	Sections map[string]int // section title → rendered items
	Items    int
}

// Produce renders a parsed crate according to the render configuration.
// Front matter is only added to Markdown output.
func Produce(c *rustdoc.Crate, rc config.RenderConfig, logger *slog.Logger) (*Output, error) {
	format, err := config.ParseFormat(string(rc.Format))
	if err != nil {
		return nil, err
	}

	s := synth.New(c, synth.Options{
		PublicOnly:     rc.PublicOnly,
		DocumentedOnly: rc.DocumentedOnly,
		Logger:         logger,
	})
	out := &Output{
		Document: s.Document(),
		Format:   format,
		Sections: s.Counts(),
	}
	for _, n := range out.Sections {
		out.Items += n
	}

	switch {
	case format == config.FormatHTML:
		out.Document = md.ToHTML(out.Document)
	case rc.FrontMatter:
		doc, err := md.AddFrontMatter(out.Document, md.FrontMatter{
			Crate:         c.Name(),
			Version:       c.CrateVersion,
			FormatVersion: c.FormatVersion,
			Items:         out.Sections,
		})
		if err != nil {
			return nil, fmt.Errorf("adding front matter: %w", err)
		}
		out.Document = doc
	}
	return out, nil
}

// ParseAndProduce parses rustdoc JSON and renders it.
func ParseAndProduce(data []byte, rc config.RenderConfig, logger *slog.Logger) (*rustdoc.Crate, *Output, error) {
	c, err := rustdoc.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	out, err := Produce(c, rc, logger)
	if err != nil {
		return nil, nil, err
	}
	return c, out, nil
}
