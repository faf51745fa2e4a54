package rustdoc

import "encoding/json"

// Type is a rustdoc type expression: the type of a parameter, field, return
// value or generic argument. The set of implementations is closed; shapes the
// decoder does not recognise become Unknown.
type Type interface {
	isType()
}

// Primitive is a built-in type such as u8, str or bool.
type Primitive struct {
	Name string
}

// Generic is a generic parameter reference, including the Self placeholder.
type Generic struct {
	Name string
}

// Path names an item, optionally resolved to an ID and carrying generic
// arguments. It is shared by resolved paths and trait references.
type Path struct {
	Name string
	ID   ID
	Args *GenericArgs
}

// ResolvedPath is a named type such as Vec<u8> or a crate-local struct.
type ResolvedPath struct {
	Path
}

// BorrowedRef is &'a mut T.
type BorrowedRef struct {
	Lifetime  string
	IsMutable bool
	Type      Type
}

// Slice is [T].
type Slice struct {
	Elem Type
}

// Array is [T; N]. Len is the length expression as written.
type Array struct {
	Elem Type
	Len  string
}

// RawPointer is *const T or *mut T.
type RawPointer struct {
	IsMutable bool
	Type      Type
}

// ImplTrait is impl Bound + Bound in argument or return position.
type ImplTrait struct {
	Bounds []GenericBound
}

// DynTrait is dyn Bound + Bound + 'a.
type DynTrait struct {
	Lifetime string
	Bounds   []GenericBound
}

// QualifiedPath is an associated type projection like <T as Trait>::Name.
type QualifiedPath struct {
	Name     string
	Args     *GenericArgs
	SelfType Type
	Trait    *Path
}

// Tuple is (A, B). The unit type is an empty tuple.
type Tuple struct {
	Elems []Type
}

// SelfType marks a trait method returning the implementing type.
type SelfType struct{}

// Unknown holds a type shape the decoder did not recognise.
type Unknown struct {
	Raw json.RawMessage
}

func (Primitive) isType()     {}
func (Generic) isType()       {}
func (ResolvedPath) isType()  {}
func (BorrowedRef) isType()   {}
func (Slice) isType()         {}
func (Array) isType()         {}
func (RawPointer) isType()    {}
func (ImplTrait) isType()     {}
func (DynTrait) isType()      {}
func (QualifiedPath) isType() {}
func (Tuple) isType()         {}
func (SelfType) isType()      {}
func (Unknown) isType()       {}

// GenericArgs are the arguments applied to a path: either <...> or the
// Fn(A) -> B sugar.
type GenericArgs struct {
	AngleBracketed *AngleBracketed
	Parenthesized  *Parenthesized
}

// AngleBracketed is <'a, T, 3, Item = U>.
type AngleBracketed struct {
	Args        []GenericArg
	Constraints []AssocConstraint
}

// Parenthesized is Fn(A, B) -> C.
type Parenthesized struct {
	Inputs []Type
	Output Type
}

// GenericArg is one argument inside angle brackets.
type GenericArg interface {
	isGenericArg()
}

// LifetimeArg is a lifetime argument such as 'a.
type LifetimeArg struct {
	Lifetime string
}

// TypeArg is a type argument.
type TypeArg struct {
	Type Type
}

// ConstArg is a const generic argument.
type ConstArg struct {
	Expr  string
	Value string
}

func (LifetimeArg) isGenericArg() {}
func (TypeArg) isGenericArg()     {}
func (ConstArg) isGenericArg()    {}

// AssocConstraint binds an associated type: Item = T or Item: Bound.
type AssocConstraint struct {
	Name     string
	Args     *GenericArgs
	Equality Type
	Bounds   []GenericBound
}

// GenericBound is a trait bound or a lifetime outlives bound.
type GenericBound interface {
	isGenericBound()
}

// Bound modifiers.
const (
	ModifierNone       = "none"
	ModifierMaybe      = "maybe"
	ModifierMaybeConst = "maybe_const"
)

// TraitBound is for<'a> ?Trait<Args>.
type TraitBound struct {
	Trait         Path
	GenericParams []GenericParamDef
	Modifier      string
}

// OutlivesBound is a lifetime bound such as 'static.
type OutlivesBound struct {
	Lifetime string
}

// UnknownBound holds a bound shape the decoder did not recognise.
type UnknownBound struct {
	Raw json.RawMessage
}

func (TraitBound) isGenericBound()    {}
func (OutlivesBound) isGenericBound() {}
func (UnknownBound) isGenericBound()  {}

// Generics is a generic parameter list with its where clause.
type Generics struct {
	Params          []GenericParamDef
	WherePredicates []WherePredicate
}

// ParamKind distinguishes lifetime, type and const parameters.
type ParamKind int

const (
	ParamLifetime ParamKind = iota
	ParamType
	ParamConst
)

// GenericParamDef declares one generic parameter.
type GenericParamDef struct {
	Name string
	Kind ParamKind

	// ParamLifetime
	Outlives []string

	// ParamType
	Bounds    []GenericBound
	Default   Type
	Synthetic bool

	// ParamConst
	ConstType    Type
	ConstDefault string
}

// WherePredicate is one clause of a where clause.
type WherePredicate interface {
	isWherePredicate()
}

// BoundPredicate is T: Bound.
type BoundPredicate struct {
	Type          Type
	Bounds        []GenericBound
	GenericParams []GenericParamDef
}

// RegionPredicate is 'a: 'b.
type RegionPredicate struct {
	Lifetime string
	Outlives []string
}

// EqPredicate is T = U.
type EqPredicate struct {
	LHS Type
	RHS Type
}

func (BoundPredicate) isWherePredicate()  {}
func (RegionPredicate) isWherePredicate() {}
func (EqPredicate) isWherePredicate()     {}

// Lifetimes returns the names of the lifetime parameters in g.
func (g *Generics) Lifetimes() []string {
	if g == nil {
		return nil
	}
	var out []string
	for _, p := range g.Params {
		if p.Kind == ParamLifetime {
			out = append(out, p.Name)
		}
	}
	return out
}
