package synth

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jcdickinson/rsdocmd/internal/render"
	"github.com/jcdickinson/rsdocmd/internal/rustdoc"
)

// derivable lists traits that are usually derived or provided by the
// compiler rather than written by hand.
var derivable = map[string]bool{
	"Clone":               true,
	"Copy":                true,
	"Debug":               true,
	"Default":             true,
	"PartialEq":           true,
	"Eq":                  true,
	"PartialOrd":          true,
	"Ord":                 true,
	"Hash":                true,
	"StructuralPartialEq": true,
	"StructuralEq":        true,
}

// Implemented is the trait list of a struct or enum, split into traits
// written by hand and traits the compiler or a blanket impl provides.
// Both lists are sorted and free of duplicates.
type Implemented struct {
	Manual []string
	Auto   []string
}

// Empty reports whether no trait was found.
func (im Implemented) Empty() bool {
	return len(im.Manual) == 0 && len(im.Auto) == 0
}

// ImplementedTraits resolves impl ids into qualified trait names.
func (s *Synthesizer) ImplementedTraits(impls []rustdoc.ID) Implemented {
	var out Implemented
	for _, id := range impls {
		it, ok := s.crate.Index.Get(id)
		if !ok {
			s.log.Debug("unresolved impl", "impl", id)
			continue
		}
		im, ok := it.Impl()
		if !ok || im.Trait == nil {
			continue
		}
		name := s.qualifiedTrait(*im.Trait)
		if s.isAutoImpl(id, im) {
			out.Auto = append(out.Auto, name)
		} else {
			out.Manual = append(out.Manual, name)
		}
	}
	out.Manual = sortedUnique(out.Manual)
	out.Auto = sortedUnique(out.Auto)
	return out
}

// qualifiedTrait prefixes a trait path with the namespace of its origin.
// Paths that are already qualified are kept as written.
func (s *Synthesizer) qualifiedTrait(p rustdoc.Path) string {
	name := render.Path(p)
	if strings.Contains(p.Name, "::") || p.ID == "" {
		return name
	}
	if ns := s.crate.Namespace(p.ID); ns != "" {
		return ns + "::" + name
	}
	return name
}

func (s *Synthesizer) isAutoImpl(id rustdoc.ID, im *rustdoc.Impl) bool {
	switch s.crate.Origin(id) {
	case rustdoc.OriginAuto, rustdoc.OriginBlanket:
		return true
	}
	if im.Synthetic || im.IsBlanket() {
		return true
	}
	base := im.Trait.Name
	if i := strings.LastIndex(base, "::"); i >= 0 {
		base = base[i+2:]
	}
	if !derivable[base] {
		return false
	}
	return im.Trait.ID == "" || !s.crate.IsLocal(im.Trait.ID)
}

func sortedUnique(names []string) []string {
	slices.Sort(names)
	return slices.Compact(names)
}

func (s *Synthesizer) writeImplements(b *strings.Builder, impls []rustdoc.ID) {
	traits := s.ImplementedTraits(impls)
	writeTraitList(b, "Implements", traits.Manual)
	writeTraitList(b, "Auto-implemented", traits.Auto)
}

func writeTraitList(b *strings.Builder, label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s:**\n\n", label)
	for _, n := range names {
		fmt.Fprintf(b, "- `%s`\n", n)
	}
	b.WriteString("\n")
}
