package rustdoc

import (
	"errors"
	"strings"
	"testing"
)

const sampleCrate = `{
  "root": "0:0",
  "crate_version": "0.3.1",
  "includes_private": false,
  "format_version": 39,
  "index": {
    "0:0": {"crate_id": 0, "name": "geo", "visibility": "public", "inner": {"module": {"items": ["0:10", "0:2"]}}},
    "0:2": {"crate_id": 0, "name": "Point", "visibility": "public", "docs": "A point.",
            "inner": {"struct": {"kind": {"plain": {"fields": ["0:3", "0:4"], "has_stripped_fields": false}}, "generics": {"params": [], "where_predicates": []}, "impls": ["0:9"]}}},
    "0:3": {"crate_id": 0, "name": "x", "visibility": "public", "inner": {"struct_field": {"primitive": "f64"}}},
    "0:4": {"crate_id": 0, "name": "y", "visibility": "default", "inner": {"struct_field": {"primitive": "f64"}}},
    "0:10": {"crate_id": 0, "name": "Mode", "visibility": {"restricted": {"parent": "0:0", "path": "crate"}},
             "inner": {"enum": {"variants": ["0:11"], "impls": [], "generics": null}}},
    "0:11": {"crate_id": 0, "name": "On", "inner": {"variant": {"kind": "plain", "discriminant": {"expr": "1", "value": "1"}}}},
    "0:9": {"crate_id": 0, "name": null, "inner": {"impl": {"is_unsafe": false, "generics": {"params": [], "where_predicates": []},
            "trait": {"name": "Display", "id": "1:5", "args": null}, "for": {"resolved_path": {"name": "Point", "id": "0:2"}},
            "items": [], "is_negative": false, "is_synthetic": false, "blanket_impl": null}}}
  },
  "paths": {"1:5": {"crate_id": 1, "path": ["core", "fmt", "Display"], "kind": "trait"}},
  "external_crates": {"1": {"name": "core", "html_root_url": null}}
}`

func TestParse(t *testing.T) {
	t.Parallel()
	c, err := Parse([]byte(sampleCrate))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if c.Name() != "geo" || c.CrateVersion != "0.3.1" || c.FormatVersion != 39 {
		t.Errorf("crate header = %q %q %d", c.Name(), c.CrateVersion, c.FormatVersion)
	}
	if c.Index.Len() != 7 {
		t.Fatalf("Len = %d, want 7", c.Index.Len())
	}

	wantOrder := []ID{"0:0", "0:2", "0:3", "0:4", "0:9", "0:10", "0:11"}
	for i, id := range c.Index.IDs() {
		if id != wantOrder[i] {
			t.Fatalf("IDs = %v, want %v", c.Index.IDs(), wantOrder)
		}
	}

	point, _ := c.Index.Get("0:2")
	st, ok := point.Struct()
	if !ok {
		t.Fatalf("0:2 is %T, want struct", point.Kind)
	}
	if st.Shape != StructPlain || len(st.Fields) != 2 || len(st.Impls) != 1 {
		t.Errorf("struct = %#v", st)
	}

	mode, _ := c.Index.Get("0:10")
	if mode.Visibility != VisibilityRestricted || mode.IsPublic() {
		t.Errorf("Mode visibility = %q", mode.Visibility)
	}

	on, _ := c.Index.Get("0:11")
	v, ok := on.Variant()
	if !ok || v.Shape != VariantPlain || v.Discriminant == nil || v.Discriminant.Expr != "1" {
		t.Errorf("variant = %#v", on.Kind)
	}

	root, _ := c.Index.Get("0:0")
	if root.Kind.Tag() != "module" {
		t.Errorf("root tag = %q, want module", root.Kind.Tag())
	}

	impl, _ := c.Index.Get("0:9")
	im, ok := impl.Impl()
	if !ok || im.Trait == nil || im.Trait.Name != "Display" || im.IsBlanket() {
		t.Errorf("impl = %#v", impl.Kind)
	}
	if c.Namespace(im.Trait.ID) != "std" {
		t.Errorf("Namespace(%s) = %q, want std", im.Trait.ID, c.Namespace(im.Trait.ID))
	}
}

func TestParseSchemaErrorNamesItem(t *testing.T) {
	t.Parallel()
	doc := `{"root":"0:0","crate_version":"1.0.0","includes_private":false,"index":{
		"0:0":{"name":"ok","inner":{"module":{}}},
		"0:5":{"name":"bad","inner":{"function":{"sig":{"inputs":[["x",{"borrowed_ref":{"is_mutable":false}}]],"output":null}}}}
	}}`

	_, err := Parse([]byte(doc))
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
	if se.ID != "0:5" {
		t.Errorf("ID = %q, want 0:5", se.ID)
	}
	if se.Shape != "borrowed_ref" {
		t.Errorf("Shape = %q, want borrowed_ref", se.Shape)
	}
	if !strings.Contains(se.JSON, "\n  \"is_mutable\": false\n") {
		t.Errorf("JSON not pretty-printed: %q", se.JSON)
	}
}

func TestParseInvalidJSON(t *testing.T) {
	t.Parallel()
	if _, err := Parse([]byte(`{"index":`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestDecodeItemLegacyShapes(t *testing.T) {
	t.Parallel()

	t.Run("tuple_struct", func(t *testing.T) {
		t.Parallel()
		it, err := DecodeItem("0:1", []byte(`{"name":"Bytes","inner":{"struct":{"struct_type":"tuple","fields":["0:2"],"impls":[],"generics":{"params":[{"name":"'a","kind":{"lifetime":{"outlives":[]}}}],"where_predicates":[]}}}}`))
		if err != nil {
			t.Fatal(err)
		}
		st, _ := it.Struct()
		if st.Shape != StructTuple || len(st.TupleFields) != 1 || st.TupleFields[0].ID != "0:2" {
			t.Errorf("struct = %#v", st)
		}
		if lt := st.Generics.Lifetimes(); len(lt) != 1 || lt[0] != "'a" {
			t.Errorf("Lifetimes = %v", lt)
		}
	})

	t.Run("unit_struct", func(t *testing.T) {
		t.Parallel()
		it, err := DecodeItem("0:1", []byte(`{"name":"Marker","inner":{"struct":{"kind":"unit","impls":[],"generics":null}}}`))
		if err != nil {
			t.Fatal(err)
		}
		st, _ := it.Struct()
		if st.Shape != StructUnit {
			t.Errorf("Shape = %v, want unit", st.Shape)
		}
	})

	t.Run("tuple_variant_with_stripped_field", func(t *testing.T) {
		t.Parallel()
		it, err := DecodeItem("0:1", []byte(`{"name":"Pair","inner":{"variant":{"kind":{"tuple":["0:3",null]},"discriminant":null}}}`))
		if err != nil {
			t.Fatal(err)
		}
		v, _ := it.Variant()
		if v.Shape != VariantTuple || len(v.Fields) != 2 || v.Fields[1] != "" {
			t.Errorf("variant = %#v", v)
		}
	})

	t.Run("numeric_ids", func(t *testing.T) {
		t.Parallel()
		it, err := DecodeItem("7", []byte(`{"id":7,"crate_id":0,"name":"E","links":{"Other":12},"inner":{"enum":{"variants":[8,9],"impls":[10],"generics":{"params":[],"where_predicates":[]}}}}`))
		if err != nil {
			t.Fatal(err)
		}
		e, _ := it.Enum()
		if len(e.Variants) != 2 || e.Variants[0] != "8" || e.Impls[0] != "10" {
			t.Errorf("enum = %#v", e)
		}
		if it.Links["Other"] != "12" {
			t.Errorf("Links = %v", it.Links)
		}
	})

	t.Run("unknown_visibility", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeItem("0:1", []byte(`{"name":"x","visibility":{"weird":true},"inner":null}`))
		var se *SchemaError
		if !errors.As(err, &se) || se.ID != "0:1" {
			t.Fatalf("err = %v, want *SchemaError for 0:1", err)
		}
	})
}
