package rustdoc

import (
	"bytes"
	"encoding/json"
	"errors"
)

// TypePrecedence lists the wire keys of the Type variants in the order they
// are tried. Payloads carrying several keys are absorbed by the first key
// whose required fields are present, so reordering this list changes which
// variant wins.
var TypePrecedence = []string{
	"primitive",
	"generic",
	"resolved_path",
	"borrowed_ref",
	"slice",
	"array",
	"raw_pointer",
	"impl_trait",
	"dyn_trait",
	"qualified_path",
	"tuple",
	"self_type",
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func isString(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '"'
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstBool(vals ...*bool) bool {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return false
}

// DecodeType decodes a type expression. JSON null decodes to a nil Type.
// Unrecognised shapes decode to Unknown; a recognised key whose payload is
// malformed is a *SchemaError.
func DecodeType(raw json.RawMessage) (Type, error) {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s == "Self" {
			return SelfType{}, nil
		}
		return Unknown{Raw: raw}, nil
	case '{':
	default:
		return Unknown{Raw: raw}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, schemaError("type", raw, err)
	}

	var firstErr error
	for _, key := range TypePrecedence {
		payload, ok := obj[key]
		if !ok {
			continue
		}
		t, err := decodeTypeVariant(key, payload, obj)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return Unknown{Raw: raw}, nil
}

func decodeTypeVariant(key string, payload json.RawMessage, obj map[string]json.RawMessage) (Type, error) {
	switch key {
	case "primitive":
		var name string
		if err := json.Unmarshal(payload, &name); err != nil {
			return nil, schemaError(key, payload, err)
		}
		return Primitive{Name: name}, nil

	case "generic":
		var name string
		if err := json.Unmarshal(payload, &name); err != nil {
			return nil, schemaError(key, payload, err)
		}
		return Generic{Name: name}, nil

	case "resolved_path":
		p, err := decodePath(key, payload)
		if err != nil {
			return nil, err
		}
		return ResolvedPath{Path: p}, nil

	case "borrowed_ref":
		var w struct {
			Lifetime  *string         `json:"lifetime"`
			IsMutable *bool           `json:"is_mutable"`
			Mutable   *bool           `json:"mutable"`
			Type      json.RawMessage `json:"type"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, schemaError(key, payload, err)
		}
		if isNull(w.Type) {
			return nil, missingField(key, payload, "type")
		}
		inner, err := DecodeType(w.Type)
		if err != nil {
			return nil, err
		}
		return BorrowedRef{
			Lifetime:  deref(w.Lifetime),
			IsMutable: firstBool(w.IsMutable, w.Mutable),
			Type:      inner,
		}, nil

	case "slice":
		if isNull(payload) {
			return nil, missingField(key, payload, "slice")
		}
		inner, err := DecodeType(payload)
		if err != nil {
			return nil, err
		}
		return Slice{Elem: inner}, nil

	case "array":
		var w struct {
			Type json.RawMessage `json:"type"`
			Len  *string         `json:"len"`
		}
		if err := json.Unmarshal(payload, &w); err == nil && !isNull(w.Type) && w.Len != nil {
			elem, err := DecodeType(w.Type)
			if err != nil {
				return nil, err
			}
			return Array{Elem: elem, Len: *w.Len}, nil
		}
		// Older documents put len beside the array key.
		lenRaw, ok := obj["len"]
		if !ok || isNull(payload) {
			return nil, missingField(key, payload, "len")
		}
		var n string
		if err := json.Unmarshal(lenRaw, &n); err != nil {
			return nil, schemaError(key, lenRaw, err)
		}
		elem, err := DecodeType(payload)
		if err != nil {
			return nil, err
		}
		return Array{Elem: elem, Len: n}, nil

	case "raw_pointer":
		var w struct {
			IsMutable *bool           `json:"is_mutable"`
			Mutable   *bool           `json:"mutable"`
			Type      json.RawMessage `json:"type"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, schemaError(key, payload, err)
		}
		if isNull(w.Type) {
			return nil, missingField(key, payload, "type")
		}
		inner, err := DecodeType(w.Type)
		if err != nil {
			return nil, err
		}
		return RawPointer{IsMutable: firstBool(w.IsMutable, w.Mutable), Type: inner}, nil

	case "impl_trait":
		bounds, err := decodeBounds(key, payload)
		if err != nil {
			return nil, err
		}
		return ImplTrait{Bounds: bounds}, nil

	case "dyn_trait":
		var w struct {
			Lifetime *string           `json:"lifetime"`
			Traits   *[]json.RawMessage `json:"traits"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, schemaError(key, payload, err)
		}
		if w.Traits == nil {
			return nil, missingField(key, payload, "traits")
		}
		bounds := make([]GenericBound, 0, len(*w.Traits))
		for _, pt := range *w.Traits {
			b, err := decodePolyTrait(pt)
			if err != nil {
				return nil, err
			}
			bounds = append(bounds, b)
		}
		return DynTrait{Lifetime: deref(w.Lifetime), Bounds: bounds}, nil

	case "qualified_path":
		var w struct {
			Name        *string         `json:"name"`
			Args        json.RawMessage `json:"args"`
			SelfType    json.RawMessage `json:"self_type"`
			Trait       json.RawMessage `json:"trait"`
			LegacyTrait json.RawMessage `json:"trait_"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, schemaError(key, payload, err)
		}
		if w.Name == nil {
			return nil, missingField(key, payload, "name")
		}
		if isNull(w.SelfType) {
			return nil, missingField(key, payload, "self_type")
		}
		args, err := decodeGenericArgs(w.Args)
		if err != nil {
			return nil, err
		}
		self, err := DecodeType(w.SelfType)
		if err != nil {
			return nil, err
		}
		q := QualifiedPath{Name: *w.Name, Args: args, SelfType: self}
		traitRaw := w.Trait
		if isNull(traitRaw) {
			traitRaw = w.LegacyTrait
		}
		if !isNull(traitRaw) {
			p, err := decodeTraitPath(traitRaw)
			if err != nil {
				return nil, err
			}
			q.Trait = &p
		}
		return q, nil

	case "tuple":
		var elems []json.RawMessage
		if err := json.Unmarshal(payload, &elems); err != nil {
			return nil, schemaError(key, payload, err)
		}
		out := make([]Type, 0, len(elems))
		for _, e := range elems {
			t, err := DecodeType(e)
			if err != nil {
				return nil, err
			}
			if t == nil {
				t = Unknown{Raw: e}
			}
			out = append(out, t)
		}
		return Tuple{Elems: out}, nil

	case "self_type":
		return SelfType{}, nil
	}
	return nil, schemaError(key, payload, errors.New("no decoder"))
}

// decodePath decodes {name|path, id, args}.
func decodePath(shape string, raw json.RawMessage) (Path, error) {
	var w struct {
		Name *string         `json:"name"`
		Path *string         `json:"path"`
		ID   ID              `json:"id"`
		Args json.RawMessage `json:"args"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return Path{}, schemaError(shape, raw, err)
	}
	if w.Name == nil && w.Path == nil {
		return Path{}, missingField(shape, raw, "name")
	}
	name := deref(w.Name)
	if name == "" {
		name = deref(w.Path)
	}
	args, err := decodeGenericArgs(w.Args)
	if err != nil {
		return Path{}, err
	}
	return Path{Name: name, ID: w.ID, Args: args}, nil
}

// decodeTraitPath decodes a trait reference, which older documents wrap as a
// resolved_path type.
func decodeTraitPath(raw json.RawMessage) (Path, error) {
	var wrapped struct {
		ResolvedPath json.RawMessage `json:"resolved_path"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && !isNull(wrapped.ResolvedPath) {
		return decodePath("trait", wrapped.ResolvedPath)
	}
	return decodePath("trait", raw)
}

func decodeGenericArgs(raw json.RawMessage) (*GenericArgs, error) {
	if isNull(raw) || isString(raw) {
		return nil, nil
	}
	var w struct {
		AngleBracketed *struct {
			Args        []json.RawMessage `json:"args"`
			Bindings    []json.RawMessage `json:"bindings"`
			Constraints []json.RawMessage `json:"constraints"`
		} `json:"angle_bracketed"`
		Parenthesized *struct {
			Inputs []json.RawMessage `json:"inputs"`
			Output json.RawMessage   `json:"output"`
		} `json:"parenthesized"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, schemaError("generic_args", raw, err)
	}

	switch {
	case w.AngleBracketed != nil:
		ab := &AngleBracketed{}
		for _, a := range w.AngleBracketed.Args {
			arg, err := decodeGenericArg(a)
			if err != nil {
				return nil, err
			}
			ab.Args = append(ab.Args, arg)
		}
		for _, c := range append(w.AngleBracketed.Bindings, w.AngleBracketed.Constraints...) {
			con, ok, err := decodeConstraint(c)
			if err != nil {
				return nil, err
			}
			if ok {
				ab.Constraints = append(ab.Constraints, con)
			}
		}
		return &GenericArgs{AngleBracketed: ab}, nil

	case w.Parenthesized != nil:
		p := &Parenthesized{}
		for _, in := range w.Parenthesized.Inputs {
			t, err := DecodeType(in)
			if err != nil {
				return nil, err
			}
			p.Inputs = append(p.Inputs, t)
		}
		out, err := DecodeType(w.Parenthesized.Output)
		if err != nil {
			return nil, err
		}
		p.Output = out
		return &GenericArgs{Parenthesized: p}, nil
	}
	return nil, schemaError("generic_args", raw, errors.New("neither angle_bracketed nor parenthesized"))
}

func decodeGenericArg(raw json.RawMessage) (GenericArg, error) {
	if isString(raw) {
		// "infer": the _ placeholder
		return TypeArg{Type: Unknown{Raw: raw}}, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, schemaError("generic_arg", raw, err)
	}
	if lt, ok := obj["lifetime"]; ok {
		var s string
		if err := json.Unmarshal(lt, &s); err != nil {
			return nil, schemaError("lifetime", lt, err)
		}
		return LifetimeArg{Lifetime: s}, nil
	}
	if t, ok := obj["type"]; ok {
		typ, err := DecodeType(t)
		if err != nil {
			return nil, err
		}
		return TypeArg{Type: typ}, nil
	}
	if c, ok := obj["const"]; ok {
		var w struct {
			Expr  string  `json:"expr"`
			Value *string `json:"value"`
		}
		if err := json.Unmarshal(c, &w); err != nil {
			return nil, schemaError("const", c, err)
		}
		return ConstArg{Expr: w.Expr, Value: deref(w.Value)}, nil
	}
	return TypeArg{Type: Unknown{Raw: raw}}, nil
}

// decodeConstraint decodes an associated item constraint. Older documents
// list bindings as bare strings, which carry nothing renderable.
func decodeConstraint(raw json.RawMessage) (AssocConstraint, bool, error) {
	if isString(raw) {
		return AssocConstraint{}, false, nil
	}
	var w struct {
		Name    string          `json:"name"`
		Args    json.RawMessage `json:"args"`
		Binding struct {
			Equality   json.RawMessage `json:"equality"`
			Constraint json.RawMessage `json:"constraint"`
		} `json:"binding"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return AssocConstraint{}, false, schemaError("constraint", raw, err)
	}
	args, err := decodeGenericArgs(w.Args)
	if err != nil {
		return AssocConstraint{}, false, err
	}
	c := AssocConstraint{Name: w.Name, Args: args}
	if !isNull(w.Binding.Equality) {
		var term struct {
			Type     json.RawMessage `json:"type"`
			Constant json.RawMessage `json:"constant"`
		}
		if err := json.Unmarshal(w.Binding.Equality, &term); err != nil {
			return AssocConstraint{}, false, schemaError("equality", w.Binding.Equality, err)
		}
		if isNull(term.Type) {
			c.Equality = Unknown{Raw: w.Binding.Equality}
		} else if c.Equality, err = DecodeType(term.Type); err != nil {
			return AssocConstraint{}, false, err
		}
	}
	if !isNull(w.Binding.Constraint) {
		if c.Bounds, err = decodeBounds("constraint", w.Binding.Constraint); err != nil {
			return AssocConstraint{}, false, err
		}
	}
	return c, true, nil
}

func decodeBounds(shape string, raw json.RawMessage) ([]GenericBound, error) {
	if isNull(raw) {
		return nil, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, schemaError(shape, raw, err)
	}
	bounds := make([]GenericBound, 0, len(elems))
	for _, e := range elems {
		b, err := decodeBound(e)
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, b)
	}
	return bounds, nil
}

func decodeBound(raw json.RawMessage) (GenericBound, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return UnknownBound{Raw: raw}, nil
	}
	if tb, ok := obj["trait_bound"]; ok {
		var w struct {
			Trait         json.RawMessage `json:"trait"`
			GenericParams json.RawMessage `json:"generic_params"`
			Modifier      string          `json:"modifier"`
		}
		if err := json.Unmarshal(tb, &w); err != nil {
			return nil, schemaError("trait_bound", tb, err)
		}
		if isNull(w.Trait) {
			return nil, missingField("trait_bound", tb, "trait")
		}
		p, err := decodeTraitPath(w.Trait)
		if err != nil {
			return nil, err
		}
		params, err := decodeParamDefs(w.GenericParams)
		if err != nil {
			return nil, err
		}
		mod := w.Modifier
		if mod == "" {
			mod = ModifierNone
		}
		return TraitBound{Trait: p, GenericParams: params, Modifier: mod}, nil
	}
	if lt, ok := obj["outlives"]; ok {
		var s string
		if err := json.Unmarshal(lt, &s); err != nil {
			return nil, schemaError("outlives", lt, err)
		}
		return OutlivesBound{Lifetime: s}, nil
	}
	return UnknownBound{Raw: raw}, nil
}

// decodePolyTrait decodes a dyn trait entry {trait, generic_params}.
func decodePolyTrait(raw json.RawMessage) (GenericBound, error) {
	var w struct {
		Trait         json.RawMessage `json:"trait"`
		GenericParams json.RawMessage `json:"generic_params"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, schemaError("poly_trait", raw, err)
	}
	if isNull(w.Trait) {
		return nil, missingField("poly_trait", raw, "trait")
	}
	p, err := decodeTraitPath(w.Trait)
	if err != nil {
		return nil, err
	}
	params, err := decodeParamDefs(w.GenericParams)
	if err != nil {
		return nil, err
	}
	return TraitBound{Trait: p, GenericParams: params, Modifier: ModifierNone}, nil
}

// DecodeGenerics decodes a generics block. null decodes to nil.
func DecodeGenerics(raw json.RawMessage) (*Generics, error) {
	if isNull(raw) {
		return nil, nil
	}
	var w struct {
		Params          json.RawMessage   `json:"params"`
		WherePredicates []json.RawMessage `json:"where_predicates"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, schemaError("generics", raw, err)
	}
	params, err := decodeParamDefs(w.Params)
	if err != nil {
		return nil, err
	}
	g := &Generics{Params: params}
	for _, wp := range w.WherePredicates {
		p, err := decodeWherePredicate(wp)
		if err != nil {
			return nil, err
		}
		if p != nil {
			g.WherePredicates = append(g.WherePredicates, p)
		}
	}
	return g, nil
}

func decodeParamDefs(raw json.RawMessage) ([]GenericParamDef, error) {
	if isNull(raw) {
		return nil, nil
	}
	var elems []struct {
		Name string `json:"name"`
		Kind struct {
			Lifetime *struct {
				Outlives []string `json:"outlives"`
			} `json:"lifetime"`
			Type *struct {
				Bounds      json.RawMessage `json:"bounds"`
				Default     json.RawMessage `json:"default"`
				Synthetic   *bool           `json:"synthetic"`
				IsSynthetic *bool           `json:"is_synthetic"`
			} `json:"type"`
			Const *struct {
				Type    json.RawMessage `json:"type"`
				Default *string         `json:"default"`
			} `json:"const"`
		} `json:"kind"`
	}
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, schemaError("generic_params", raw, err)
	}
	out := make([]GenericParamDef, 0, len(elems))
	for _, e := range elems {
		p := GenericParamDef{Name: e.Name}
		switch {
		case e.Kind.Lifetime != nil:
			p.Kind = ParamLifetime
			p.Outlives = e.Kind.Lifetime.Outlives
		case e.Kind.Type != nil:
			p.Kind = ParamType
			bounds, err := decodeBounds("bounds", e.Kind.Type.Bounds)
			if err != nil {
				return nil, err
			}
			p.Bounds = bounds
			if p.Default, err = DecodeType(e.Kind.Type.Default); err != nil {
				return nil, err
			}
			p.Synthetic = firstBool(e.Kind.Type.IsSynthetic, e.Kind.Type.Synthetic)
		case e.Kind.Const != nil:
			p.Kind = ParamConst
			t, err := DecodeType(e.Kind.Const.Type)
			if err != nil {
				return nil, err
			}
			p.ConstType = t
			p.ConstDefault = deref(e.Kind.Const.Default)
		default:
			p.Kind = ParamType
		}
		out = append(out, p)
	}
	return out, nil
}

func decodeWherePredicate(raw json.RawMessage) (WherePredicate, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, schemaError("where_predicate", raw, err)
	}
	if bp, ok := obj["bound_predicate"]; ok {
		var w struct {
			Type          json.RawMessage `json:"type"`
			Bounds        json.RawMessage `json:"bounds"`
			GenericParams json.RawMessage `json:"generic_params"`
		}
		if err := json.Unmarshal(bp, &w); err != nil {
			return nil, schemaError("bound_predicate", bp, err)
		}
		t, err := DecodeType(w.Type)
		if err != nil {
			return nil, err
		}
		bounds, err := decodeBounds("bounds", w.Bounds)
		if err != nil {
			return nil, err
		}
		params, err := decodeParamDefs(w.GenericParams)
		if err != nil {
			return nil, err
		}
		return BoundPredicate{Type: t, Bounds: bounds, GenericParams: params}, nil
	}
	if rp, ok := obj["region_predicate"]; ok {
		var w struct {
			Lifetime string          `json:"lifetime"`
			Bounds   json.RawMessage `json:"bounds"`
		}
		if err := json.Unmarshal(rp, &w); err != nil {
			return nil, schemaError("region_predicate", rp, err)
		}
		bounds, err := decodeBounds("bounds", w.Bounds)
		if err != nil {
			return nil, err
		}
		pred := RegionPredicate{Lifetime: w.Lifetime}
		for _, b := range bounds {
			if o, ok := b.(OutlivesBound); ok {
				pred.Outlives = append(pred.Outlives, o.Lifetime)
			}
		}
		return pred, nil
	}
	if ep, ok := obj["eq_predicate"]; ok {
		var w struct {
			LHS json.RawMessage `json:"lhs"`
			RHS json.RawMessage `json:"rhs"`
		}
		if err := json.Unmarshal(ep, &w); err != nil {
			return nil, schemaError("eq_predicate", ep, err)
		}
		lhs, err := DecodeType(w.LHS)
		if err != nil {
			return nil, err
		}
		rhsRaw := w.RHS
		var term struct {
			Type json.RawMessage `json:"type"`
		}
		if json.Unmarshal(w.RHS, &term) == nil && !isNull(term.Type) {
			rhsRaw = term.Type
		}
		rhs, err := DecodeType(rhsRaw)
		if err != nil {
			return nil, err
		}
		return EqPredicate{LHS: lhs, RHS: rhs}, nil
	}
	return nil, nil
}
