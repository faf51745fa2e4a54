package rustdoc

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Parse builds a Crate from rustdoc JSON bytes. The first item that fails to
// decode aborts the parse with a *SchemaError naming the item.
func Parse(data []byte) (*Crate, error) {
	var w struct {
		Root            ID                         `json:"root"`
		CrateVersion    *string                    `json:"crate_version"`
		IncludesPrivate bool                       `json:"includes_private"`
		FormatVersion   int                        `json:"format_version"`
		Index           map[string]json.RawMessage `json:"index"`
		Paths           map[ID]Summary             `json:"paths"`
		ExternalCrates  map[string]ExternalCrate   `json:"external_crates"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unmarshaling rustdoc JSON: %w", err)
	}

	keys := make([]ID, 0, len(w.Index))
	for k := range w.Index {
		keys = append(keys, ID(k))
	}
	slices.SortFunc(keys, compareIDs)

	items := make([]*Item, 0, len(keys))
	for _, id := range keys {
		it, err := DecodeItem(id, w.Index[string(id)])
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	return &Crate{
		Root:            w.Root,
		CrateVersion:    deref(w.CrateVersion),
		IncludesPrivate: w.IncludesPrivate,
		FormatVersion:   w.FormatVersion,
		Index:           NewIndex(items...),
		Paths:           w.Paths,
		ExternalCrates:  w.ExternalCrates,
	}, nil
}
