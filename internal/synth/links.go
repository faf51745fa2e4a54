package synth

import (
	"strconv"

	"github.com/jcdickinson/rsdocmd/internal/markdown"
	"github.com/jcdickinson/rsdocmd/internal/rustdoc"
)

// anchorKind is the tag used in anchors and doc links for an item.
func anchorKind(it *rustdoc.Item) string {
	switch it.Kind.(type) {
	case *rustdoc.Function:
		return "function"
	case *rustdoc.Struct:
		return "struct"
	case *rustdoc.Enum:
		return "enum"
	case *rustdoc.Trait:
		return "trait"
	default:
		return "item"
	}
}

// Anchor returns the in-document anchor of a named item, e.g. "struct.Point".
func Anchor(it *rustdoc.Item) string {
	return anchorKind(it) + "." + it.NameOr("")
}

// assignAnchors gives every named local item a unique anchor. Items are
// visited in index order; the first item with a given kind and name keeps
// Anchor(it), later ones get "-1", "-2", ... appended.
func assignAnchors(c *rustdoc.Crate) map[rustdoc.ID]string {
	anchors := make(map[rustdoc.ID]string)
	used := make(map[string]bool)
	for id, it := range c.Index.All() {
		if it.Name == nil || !c.IsLocal(id) {
			continue
		}
		base := Anchor(it)
		a := base
		for n := 1; used[a]; n++ {
			a = base + "-" + strconv.Itoa(n)
		}
		used[a] = true
		anchors[id] = a
	}
	return anchors
}

// anchor returns the unique anchor of it, falling back to Anchor for items
// outside the primary crate.
func (s *Synthesizer) anchor(it *rustdoc.Item) string {
	if a, ok := s.anchors[it.ID]; ok {
		return a
	}
	return Anchor(it)
}

// rewriteDocs replaces the item's doc-link keys with links to the target's
// anchor. Keys whose target is missing or unnamed stay as written.
func (s *Synthesizer) rewriteDocs(it *rustdoc.Item) string {
	docs := it.DocsText()
	if docs == "" || len(it.Links) == 0 {
		return docs
	}
	dests := make(map[string]string, len(it.Links))
	for key, target := range it.Links {
		t, ok := s.crate.Index.Get(target)
		if !ok || t.Name == nil {
			s.log.Debug("unresolved doc link", "item", it.ID, "key", key, "target", target)
			continue
		}
		dests[key] = "#" + s.anchor(t)
	}
	docs = markdown.RewriteLinks(docs, dests)
	return markdown.RewriteShortcuts(docs, dests)
}
