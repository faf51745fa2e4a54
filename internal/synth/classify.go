package synth

import "github.com/jcdickinson/rsdocmd/internal/rustdoc"

// Category is a document section.
type Category int

const (
	Functions Category = iota
	Structs
	Enums
	Traits
	Impls
	EnumVariants
	Other
	numCategories
)

var categoryTitles = [numCategories]string{
	Functions:    "Functions",
	Structs:      "Structs",
	Enums:        "Enums",
	Traits:       "Traits",
	Impls:        "Implementations",
	EnumVariants: "Enum Variants",
	Other:        "Other",
}

func (c Category) String() string {
	if c < 0 || c >= numCategories {
		return "Unknown"
	}
	return categoryTitles[c]
}

// Buckets holds the primary crate's items per category, each in index order.
type Buckets [numCategories][]*rustdoc.Item

// Classify partitions the primary crate's items into categories. Items with
// neither a name nor an impl payload are dropped. A payload is tested against
// function, enum, trait, impl, struct and variant in that order; the first
// match decides the category.
func Classify(c *rustdoc.Crate) Buckets {
	var b Buckets
	for id, it := range c.Index.All() {
		if !c.IsLocal(id) {
			continue
		}
		_, isImpl := it.Impl()
		if it.Name == nil && !isImpl {
			continue
		}
		cat := classify(it)
		b[cat] = append(b[cat], it)
	}
	return b
}

func classify(it *rustdoc.Item) Category {
	switch it.Kind.(type) {
	case *rustdoc.Function:
		return Functions
	case *rustdoc.Enum:
		return Enums
	case *rustdoc.Trait:
		return Traits
	case *rustdoc.Impl:
		return Impls
	case *rustdoc.Struct:
		return Structs
	case *rustdoc.Variant:
		return EnumVariants
	default:
		return Other
	}
}
