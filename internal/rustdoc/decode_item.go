package rustdoc

import (
	"encoding/json"
	"fmt"
	"slices"
)

// kindPrecedence lists the item payload keys this package models, in the
// order they are tried.
var kindPrecedence = []string{
	"function",
	"enum",
	"struct",
	"trait",
	"impl",
	"variant",
	"struct_field",
}

// DecodeItem decodes one index entry. id is the index key; it wins over any
// id recorded inside the entry.
func DecodeItem(id ID, raw json.RawMessage) (*Item, error) {
	var w struct {
		CrateID    int             `json:"crate_id"`
		Name       *string         `json:"name"`
		Docs       *string         `json:"docs"`
		Visibility json.RawMessage `json:"visibility"`
		Links      map[string]ID   `json:"links"`
		Inner      json.RawMessage `json:"inner"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &SchemaError{ID: id, Shape: "item", JSON: prettyJSON(raw), Err: err}
	}

	it := &Item{
		ID:      id,
		CrateID: w.CrateID,
		Name:    w.Name,
		Docs:    w.Docs,
		Links:   w.Links,
	}

	vis, err := decodeVisibility(w.Visibility)
	if err != nil {
		return nil, withID(err, id)
	}
	it.Visibility = vis

	kind, err := decodeKind(w.Inner)
	if err != nil {
		return nil, withID(err, id)
	}
	it.Kind = kind
	return it, nil
}

func withID(err error, id ID) error {
	if se, ok := err.(*SchemaError); ok && se.ID == "" {
		se.ID = id
	}
	return err
}

func decodeVisibility(raw json.RawMessage) (Visibility, error) {
	if isNull(raw) {
		return "", nil
	}
	if isString(raw) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", schemaError("visibility", raw, err)
		}
		return Visibility(s), nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", schemaError("visibility", raw, err)
	}
	if _, ok := obj["restricted"]; ok {
		return VisibilityRestricted, nil
	}
	return "", schemaError("visibility", raw, fmt.Errorf("unknown visibility"))
}

func decodeKind(raw json.RawMessage) (Kind, error) {
	if isNull(raw) {
		return nil, nil
	}
	if isString(raw) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, schemaError("inner", raw, err)
		}
		return &OtherKind{Name: s}, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, schemaError("inner", raw, err)
	}
	for _, key := range kindPrecedence {
		payload, ok := obj[key]
		if !ok {
			continue
		}
		switch key {
		case "function":
			return decodeFunction(payload)
		case "enum":
			return decodeEnum(payload)
		case "struct":
			return decodeStruct(payload)
		case "trait":
			return decodeTrait(payload)
		case "impl":
			return decodeImpl(payload)
		case "variant":
			return decodeVariant(payload)
		case "struct_field":
			t, err := DecodeType(payload)
			if err != nil {
				return nil, err
			}
			return &StructField{Type: t}, nil
		}
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	slices.Sort(keys)
	return &OtherKind{Name: keys[0]}, nil
}

func decodeFunction(raw json.RawMessage) (*Function, error) {
	var w struct {
		Decl     json.RawMessage `json:"decl"`
		Sig      json.RawMessage `json:"sig"`
		Generics json.RawMessage `json:"generics"`
		Header   json.RawMessage `json:"header"`
		HasBody  bool            `json:"has_body"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, schemaError("function", raw, err)
	}
	declRaw := w.Sig
	if isNull(declRaw) {
		declRaw = w.Decl
	}
	if isNull(declRaw) {
		return nil, missingField("function", raw, "decl")
	}

	var d struct {
		Inputs      []json.RawMessage `json:"inputs"`
		Output      json.RawMessage   `json:"output"`
		CVariadic   bool              `json:"c_variadic"`
		IsCVariadic bool              `json:"is_c_variadic"`
	}
	if err := json.Unmarshal(declRaw, &d); err != nil {
		return nil, schemaError("decl", declRaw, err)
	}

	fn := &Function{HasBody: w.HasBody}
	fn.Decl.Variadic = d.CVariadic || d.IsCVariadic
	for _, in := range d.Inputs {
		var pair []json.RawMessage
		if err := json.Unmarshal(in, &pair); err != nil || len(pair) != 2 {
			return nil, schemaError("input", in, fmt.Errorf("want [name, type] pair"))
		}
		var name string
		if err := json.Unmarshal(pair[0], &name); err != nil {
			return nil, schemaError("input", in, err)
		}
		t, err := DecodeType(pair[1])
		if err != nil {
			return nil, err
		}
		fn.Decl.Inputs = append(fn.Decl.Inputs, Param{Name: name, Type: t})
	}
	out, err := DecodeType(d.Output)
	if err != nil {
		return nil, err
	}
	fn.Decl.Output = out

	if fn.Generics, err = DecodeGenerics(w.Generics); err != nil {
		return nil, err
	}
	fn.Header = decodeHeader(w.Header)
	return fn, nil
}

// decodeHeader reads either the object form {is_const, ...} or the older
// list form ["const", "unsafe"].
func decodeHeader(raw json.RawMessage) FnHeader {
	if isNull(raw) {
		return FnHeader{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return FnHeader{
			IsConst:  slices.Contains(list, "const"),
			IsUnsafe: slices.Contains(list, "unsafe"),
			IsAsync:  slices.Contains(list, "async"),
		}
	}
	var obj struct {
		IsConst  bool `json:"is_const"`
		IsUnsafe bool `json:"is_unsafe"`
		IsAsync  bool `json:"is_async"`
	}
	_ = json.Unmarshal(raw, &obj)
	return FnHeader{IsConst: obj.IsConst, IsUnsafe: obj.IsUnsafe, IsAsync: obj.IsAsync}
}

func decodeEnum(raw json.RawMessage) (*Enum, error) {
	var w struct {
		Variants []ID           `json:"variants"`
		Impls    []ID           `json:"impls"`
		Generics json.RawMessage `json:"generics"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, schemaError("enum", raw, err)
	}
	g, err := DecodeGenerics(w.Generics)
	if err != nil {
		return nil, err
	}
	return &Enum{Variants: w.Variants, Impls: w.Impls, Generics: g}, nil
}

func decodeStruct(raw json.RawMessage) (*Struct, error) {
	var w struct {
		Kind       json.RawMessage `json:"kind"`
		StructType string          `json:"struct_type"`
		Fields     []ID            `json:"fields"`
		Impls      []ID            `json:"impls"`
		Generics   json.RawMessage `json:"generics"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, schemaError("struct", raw, err)
	}
	g, err := DecodeGenerics(w.Generics)
	if err != nil {
		return nil, err
	}
	s := &Struct{Impls: w.Impls, Generics: g}

	switch {
	case isString(w.Kind):
		var k string
		_ = json.Unmarshal(w.Kind, &k)
		s.Shape = structShape(k)
	case !isNull(w.Kind):
		var k struct {
			Plain *struct {
				Fields []ID `json:"fields"`
			} `json:"plain"`
			Tuple []json.RawMessage `json:"tuple"`
		}
		if err := json.Unmarshal(w.Kind, &k); err != nil {
			return nil, schemaError("struct_kind", w.Kind, err)
		}
		switch {
		case k.Plain != nil:
			s.Shape = StructPlain
			s.Fields = k.Plain.Fields
		case k.Tuple != nil:
			s.Shape = StructTuple
			for _, f := range k.Tuple {
				tf, err := decodeTupleField(f)
				if err != nil {
					return nil, err
				}
				s.TupleFields = append(s.TupleFields, tf)
			}
		default:
			return nil, schemaError("struct_kind", w.Kind, fmt.Errorf("want plain, tuple or unit"))
		}
	default:
		// Older documents: struct_type beside a flat field list.
		s.Shape = structShape(w.StructType)
		if s.Shape == StructTuple {
			for _, id := range w.Fields {
				s.TupleFields = append(s.TupleFields, TupleField{ID: id})
			}
		} else {
			s.Fields = w.Fields
		}
	}
	return s, nil
}

func structShape(s string) StructShape {
	switch s {
	case "tuple":
		return StructTuple
	case "unit":
		return StructUnit
	default:
		return StructPlain
	}
}

// decodeTupleField reads a positional field given by reference (an id), inline
// (a type) or stripped (null).
func decodeTupleField(raw json.RawMessage) (TupleField, error) {
	if isNull(raw) {
		return TupleField{}, nil
	}
	var id ID
	if err := json.Unmarshal(raw, &id); err == nil {
		return TupleField{ID: id}, nil
	}
	t, err := DecodeType(raw)
	if err != nil {
		return TupleField{}, err
	}
	return TupleField{Type: t}, nil
}

func decodeTrait(raw json.RawMessage) (*Trait, error) {
	var w struct {
		IsUnsafe        *bool           `json:"is_unsafe"`
		Unsafe          *bool           `json:"unsafe"`
		IsAuto          bool            `json:"is_auto"`
		Items           []ID            `json:"items"`
		Bounds          json.RawMessage `json:"bounds"`
		Generics        json.RawMessage `json:"generics"`
		Implementations []ID            `json:"implementations"`
		Implementors    []ID            `json:"implementors"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, schemaError("trait", raw, err)
	}
	bounds, err := decodeBounds("bounds", w.Bounds)
	if err != nil {
		return nil, err
	}
	g, err := DecodeGenerics(w.Generics)
	if err != nil {
		return nil, err
	}
	impls := w.Implementations
	if impls == nil {
		impls = w.Implementors
	}
	return &Trait{
		IsUnsafe:        firstBool(w.IsUnsafe, w.Unsafe),
		IsAuto:          w.IsAuto,
		Items:           w.Items,
		Bounds:          bounds,
		Generics:        g,
		Implementations: impls,
	}, nil
}

func decodeImpl(raw json.RawMessage) (*Impl, error) {
	var w struct {
		IsUnsafe    *bool           `json:"is_unsafe"`
		Unsafe      *bool           `json:"unsafe"`
		Negative    *bool           `json:"negative"`
		IsNegative  *bool           `json:"is_negative"`
		Synthetic   *bool           `json:"synthetic"`
		IsSynthetic *bool           `json:"is_synthetic"`
		Generics    json.RawMessage `json:"generics"`
		Trait       json.RawMessage `json:"trait"`
		For         json.RawMessage `json:"for"`
		Items       []ID            `json:"items"`
		BlanketImpl json.RawMessage `json:"blanket_impl"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, schemaError("impl", raw, err)
	}
	im := &Impl{
		IsUnsafe:  firstBool(w.IsUnsafe, w.Unsafe),
		Negative:  firstBool(w.IsNegative, w.Negative),
		Synthetic: firstBool(w.IsSynthetic, w.Synthetic),
		Items:     w.Items,
	}
	var err error
	if im.Generics, err = DecodeGenerics(w.Generics); err != nil {
		return nil, err
	}
	if !isNull(w.Trait) {
		p, err := decodeTraitPath(w.Trait)
		if err != nil {
			return nil, err
		}
		im.Trait = &p
	}
	if im.For, err = DecodeType(w.For); err != nil {
		return nil, err
	}
	if im.Blanket, err = DecodeType(w.BlanketImpl); err != nil {
		return nil, err
	}
	return im, nil
}

func decodeVariant(raw json.RawMessage) (*Variant, error) {
	var w struct {
		Kind         json.RawMessage `json:"kind"`
		Discriminant *struct {
			Expr  string  `json:"expr"`
			Value *string `json:"value"`
		} `json:"discriminant"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, schemaError("variant", raw, err)
	}
	v := &Variant{}
	if w.Discriminant != nil {
		v.Discriminant = &Discriminant{Expr: w.Discriminant.Expr, Value: deref(w.Discriminant.Value)}
	}

	switch {
	case isNull(w.Kind):
		v.Shape = VariantPlain
	case isString(w.Kind):
		var k string
		_ = json.Unmarshal(w.Kind, &k)
		if k != "plain" {
			return nil, schemaError("variant_kind", w.Kind, fmt.Errorf("unknown variant kind %q", k))
		}
		v.Shape = VariantPlain
	default:
		var k struct {
			Tuple  []ID `json:"tuple"`
			Struct *struct {
				Fields []ID `json:"fields"`
			} `json:"struct"`
			Plain json.RawMessage `json:"plain"`
		}
		if err := json.Unmarshal(w.Kind, &k); err != nil {
			return nil, schemaError("variant_kind", w.Kind, err)
		}
		switch {
		case k.Tuple != nil:
			v.Shape = VariantTuple
			v.Fields = k.Tuple
		case k.Struct != nil:
			v.Shape = VariantStruct
			v.Fields = k.Struct.Fields
		case k.Plain != nil:
			v.Shape = VariantPlain
		default:
			return nil, schemaError("variant_kind", w.Kind, fmt.Errorf("want plain, tuple or struct"))
		}
	}
	return v, nil
}
