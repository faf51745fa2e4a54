package rustdoc

import "strconv"

// Crate is a parsed rustdoc JSON document.
type Crate struct {
	Root            ID
	CrateVersion    string
	IncludesPrivate bool
	FormatVersion   int
	Index           *Index
	Paths           map[ID]Summary
	ExternalCrates  map[string]ExternalCrate
}

// Summary provides the path and kind for an item, including external ones.
type Summary struct {
	CrateID int      `json:"crate_id"`
	Path    []string `json:"path"`
	Kind    string   `json:"kind"`
}

// ExternalCrate identifies a dependency crate by name.
type ExternalCrate struct {
	Name        string `json:"name"`
	HTMLRootURL string `json:"html_root_url"`
}

// Name returns the documented crate's name, taken from the root item.
func (c *Crate) Name() string {
	if it, ok := c.Index.Get(c.Root); ok && it.Name != nil {
		return *it.Name
	}
	return "crate"
}

// Origin says which crate, or which kind of synthesized impl, an item
// comes from.
type Origin int

const (
	OriginLocal Origin = iota
	OriginStd
	OriginAlloc
	OriginAuto
	OriginBlanket
	OriginExternal
)

// origins is the fixed prefix table. Anything not listed is OriginExternal.
var origins = map[string]Origin{
	"0": OriginLocal,
	"1": OriginStd,
	"2": OriginAlloc,
	"a": OriginAuto,
	"b": OriginBlanket,
}

// OriginOfPrefix maps an identifier prefix (or crate id) to an Origin.
func OriginOfPrefix(prefix string) Origin {
	if o, ok := origins[prefix]; ok {
		return o
	}
	return OriginExternal
}

// Namespace returns the path prefix used when naming items of this origin.
// External crates have no fixed namespace; see Crate.Namespace.
func (o Origin) Namespace() string {
	switch o {
	case OriginLocal:
		return "crate"
	case OriginStd:
		return "std"
	case OriginAlloc:
		return "alloc"
	default:
		return ""
	}
}

// originKey returns the prefix used to classify id: its own prefix when it
// has one, otherwise the crate id recorded on the item or in the paths table.
func (c *Crate) originKey(id ID) string {
	if prefix, ok := id.Prefix(); ok {
		return prefix
	}
	if it, ok := c.Index.Get(id); ok {
		return strconv.Itoa(it.CrateID)
	}
	if s, ok := c.Paths[id]; ok {
		return strconv.Itoa(s.CrateID)
	}
	return "0"
}

// Origin classifies an identifier.
func (c *Crate) Origin(id ID) Origin {
	return OriginOfPrefix(c.originKey(id))
}

// IsLocal reports whether id belongs to the documented crate.
func (c *Crate) IsLocal(id ID) bool {
	return c.Origin(id) == OriginLocal
}

// Namespace returns the crate namespace used to qualify names from id's
// origin. External crates are named from external_crates when the document
// lists them.
func (c *Crate) Namespace(id ID) string {
	o := c.Origin(id)
	if ns := o.Namespace(); ns != "" {
		return ns
	}
	if o == OriginExternal {
		if ext, ok := c.ExternalCrates[c.originKey(id)]; ok && ext.Name != "" {
			return ext.Name
		}
		return "extern"
	}
	return ""
}
