package rustdoc

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestTypePrecedenceOrder(t *testing.T) {
	t.Parallel()
	want := []string{
		"primitive", "generic", "resolved_path", "borrowed_ref", "slice", "array",
		"raw_pointer", "impl_trait", "dyn_trait", "qualified_path", "tuple", "self_type",
	}
	if !reflect.DeepEqual(TypePrecedence, want) {
		t.Fatalf("TypePrecedence = %v, want %v", TypePrecedence, want)
	}
}

func TestDecodeTypePrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		json string
		want Type
	}{
		{
			"primitive_beats_generic",
			`{"generic":"T","primitive":"u8"}`,
			Primitive{Name: "u8"},
		},
		{
			"resolved_path_beats_qualified_path",
			`{"qualified_path":{"name":"Item","self_type":{"generic":"I"}},"resolved_path":{"name":"Item","id":"0:1"}}`,
			ResolvedPath{Path: Path{Name: "Item", ID: "0:1"}},
		},
		{
			"malformed_earlier_key_falls_through",
			`{"primitive":42,"generic":"T"}`,
			Generic{Name: "T"},
		},
		{
			"qualified_path_missing_self_type_falls_to_tuple",
			`{"qualified_path":{"name":"Item"},"tuple":[]}`,
			Tuple{Elems: []Type{}},
		},
		{
			"self_type_key",
			`{"self_type":null}`,
			SelfType{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodeType(json.RawMessage(tt.json))
			if err != nil {
				t.Fatalf("DecodeType: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeTypeUnknown(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{`{"pat":{}}`, `"infer"`, `42`, `[]`} {
		got, err := DecodeType(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("DecodeType(%s): %v", raw, err)
		}
		if _, ok := got.(Unknown); !ok {
			t.Errorf("DecodeType(%s) = %#v, want Unknown", raw, got)
		}
	}
}

func TestDecodeTypeNull(t *testing.T) {
	t.Parallel()
	got, err := DecodeType(json.RawMessage(`null`))
	if err != nil || got != nil {
		t.Fatalf("DecodeType(null) = %#v, %v; want nil, nil", got, err)
	}
}

func TestDecodeTypeSchemaError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		json  string
		shape string
	}{
		{"borrowed_ref_without_type", `{"borrowed_ref":{"lifetime":null,"is_mutable":false}}`, "borrowed_ref"},
		{"dyn_trait_without_traits", `{"dyn_trait":{"lifetime":null}}`, "dyn_trait"},
		{"array_without_len", `{"array":{"primitive":"u8"}}`, "array"},
		{"resolved_path_without_name", `{"resolved_path":{"id":"0:1"}}`, "resolved_path"},
		{"nested", `{"slice":{"raw_pointer":{"is_mutable":true}}}`, "raw_pointer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeType(json.RawMessage(tt.json))
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *SchemaError", err)
			}
			if se.Shape != tt.shape {
				t.Errorf("Shape = %q, want %q", se.Shape, tt.shape)
			}
			if se.JSON == "" {
				t.Error("JSON is empty")
			}
		})
	}
}

func TestDecodeTypeQualifiedPath(t *testing.T) {
	t.Parallel()
	raw := `{"qualified_path":{"name":"Target","args":null,"self_type":{"generic":"T"},"trait_":{"resolved_path":{"name":"Deref","id":"1:2"}}}}`
	got, err := DecodeType(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("DecodeType: %v", err)
	}
	q, ok := got.(QualifiedPath)
	if !ok {
		t.Fatalf("got %T, want QualifiedPath", got)
	}
	if q.Name != "Target" || q.Trait == nil || q.Trait.Name != "Deref" || q.Trait.ID != "1:2" {
		t.Errorf("got %#v", q)
	}
	if q.SelfType != (Generic{Name: "T"}) {
		t.Errorf("SelfType = %#v", q.SelfType)
	}
}

func TestSchemaErrorMessage(t *testing.T) {
	t.Parallel()
	err := &SchemaError{ID: "0:7", Shape: "dyn_trait", JSON: "{\n  \"a\": 1\n}", Err: errors.New(`missing field "traits"`)}
	msg := err.Error()
	for _, want := range []string{"item 0:7", "unrecognized dyn_trait shape", `missing field "traits"`, "\n{\n  \"a\": 1\n}"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not contain %q", msg, want)
		}
	}
}
