package rustdoc

import (
	"cmp"
	"encoding/json"
	"iter"
	"slices"
	"strconv"
	"strings"
)

// ID identifies an item. Older rustdoc output uses origin-prefixed strings
// ("0:12:345"), newer output uses bare integers; both decode to an ID.
type ID string

// UnmarshalJSON accepts a string, a number or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Prefix returns the origin prefix of the identifier (the text before the
// first colon) and whether one is present.
func (id ID) Prefix() (string, bool) {
	prefix, _, ok := strings.Cut(string(id), ":")
	return prefix, ok
}

// compareIDs orders identifiers segment by segment, numerically where both
// segments are numbers, so "0:9" sorts before "0:10". Numbers sort before
// text, and numerically equal segments fall back to text order.
func compareIDs(a, b ID) int {
	as := strings.Split(string(a), ":")
	bs := strings.Split(string(b), ":")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		an, aerr := strconv.ParseUint(as[i], 10, 64)
		bn, berr := strconv.ParseUint(bs[i], 10, 64)
		switch {
		case aerr == nil && berr == nil:
			if c := cmp.Compare(an, bn); c != 0 {
				return c
			}
			// "01" and "1": same number, order by text.
		case aerr == nil:
			return -1
		case berr == nil:
			return 1
		}
		return strings.Compare(as[i], bs[i])
	}
	return len(as) - len(bs)
}

// Index maps identifiers to items. Iteration is in identifier order so that
// rendering is reproducible. An Index is immutable once built.
type Index struct {
	ids   []ID
	items map[ID]*Item
}

// NewIndex builds an index from items keyed by their ID.
func NewIndex(items ...*Item) *Index {
	ix := &Index{items: make(map[ID]*Item, len(items))}
	for _, it := range items {
		if _, dup := ix.items[it.ID]; !dup {
			ix.ids = append(ix.ids, it.ID)
		}
		ix.items[it.ID] = it
	}
	slices.SortFunc(ix.ids, compareIDs)
	return ix
}

// Get looks up an item. A missing item is not an error: callers leave the
// reference unresolved.
func (ix *Index) Get(id ID) (*Item, bool) {
	if ix == nil || id == "" {
		return nil, false
	}
	it, ok := ix.items[id]
	return it, ok
}

// Len returns the number of items.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.ids)
}

// IDs returns all identifiers in order.
func (ix *Index) IDs() []ID {
	if ix == nil {
		return nil
	}
	return slices.Clone(ix.ids)
}

// All iterates items in identifier order.
func (ix *Index) All() iter.Seq2[ID, *Item] {
	return func(yield func(ID, *Item) bool) {
		if ix == nil {
			return
		}
		for _, id := range ix.ids {
			if !yield(id, ix.items[id]) {
				return
			}
		}
	}
}
