// Package synth builds a Markdown document from a parsed rustdoc crate.
//
// The synthesizer only reads the crate. It classifies the primary crate's
// items into sections, resolves id-based relationships (doc links, impls,
// variants, fields) through the index, drops functions already described by
// a trait or impl, and renders each remaining item with package render.
package synth

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jcdickinson/rsdocmd/internal/rustdoc"
)

// Options tune which items are rendered.
type Options struct {
	// PublicOnly drops declarations that are not pub.
	PublicOnly bool
	// DocumentedOnly drops declarations without documentation.
	DocumentedOnly bool
	// Logger receives debug records for unresolved references.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// Synthesizer renders one crate. It holds no state shared with other
// synthesizers, so separate crates can be rendered concurrently.
type Synthesizer struct {
	crate   *rustdoc.Crate
	opts    Options
	log     *slog.Logger
	methods *traitMethods
	buckets Buckets
	anchors map[rustdoc.ID]string
}

// New classifies c and prepares it for rendering.
func New(c *rustdoc.Crate, opts Options) *Synthesizer {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Synthesizer{
		crate:   c,
		opts:    opts,
		log:     log,
		methods: newTraitMethods(c.Index),
		buckets: Classify(c),
		anchors: assignAnchors(c),
	}
}

// Render is shorthand for New(c, opts).Document().
func Render(c *rustdoc.Crate, opts Options) string {
	return New(c, opts).Document()
}

// Counts returns the number of rendered items per section title.
func (s *Synthesizer) Counts() map[string]int {
	counts := make(map[string]int)
	for cat := Category(0); cat < numCategories; cat++ {
		for _, it := range s.buckets[cat] {
			if s.include(it) {
				counts[cat.String()]++
			}
		}
	}
	return counts
}

// Document renders the whole crate.
func (s *Synthesizer) Document() string {
	var b strings.Builder

	title := s.crate.Name()
	if s.crate.CrateVersion != "" {
		title += " " + s.crate.CrateVersion
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	for cat := Category(0); cat < numCategories; cat++ {
		var sections []string
		for _, it := range s.buckets[cat] {
			if !s.include(it) {
				continue
			}
			if out := s.renderItem(cat, it); out != "" {
				sections = append(sections, out)
			}
		}
		if len(sections) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", cat)
		for _, sec := range sections {
			b.WriteString(sec)
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// include applies the trait-method skip test and the configured filters.
func (s *Synthesizer) include(it *rustdoc.Item) bool {
	if s.methods.skip(it) {
		return false
	}
	switch it.Kind.(type) {
	case *rustdoc.Impl, *rustdoc.Variant:
		return true
	}
	if s.opts.PublicOnly && !it.IsPublic() {
		return false
	}
	if s.opts.DocumentedOnly && strings.TrimSpace(it.DocsText()) == "" {
		return false
	}
	return true
}

func (s *Synthesizer) renderItem(cat Category, it *rustdoc.Item) string {
	switch cat {
	case Functions:
		fn, _ := it.Function()
		return s.renderFunction(it, fn)
	case Structs:
		st, _ := it.Struct()
		return s.renderStruct(it, st)
	case Enums:
		e, _ := it.Enum()
		return s.renderEnum(it, e)
	case Traits:
		tr, _ := it.Trait()
		return s.renderTrait(it, tr)
	case Impls:
		im, _ := it.Impl()
		return s.renderImpl(it, im)
	case EnumVariants:
		v, _ := it.Variant()
		return s.renderVariant(it, v)
	default:
		return s.renderOther(it)
	}
}
