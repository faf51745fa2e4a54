package rustdoc

// Visibility of an item.
type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityDefault    Visibility = "default"
	VisibilityCrate      Visibility = "crate"
	VisibilityRestricted Visibility = "restricted"
)

// Item is one entry of the rustdoc index.
type Item struct {
	ID         ID
	CrateID    int
	Name       *string
	Docs       *string
	Visibility Visibility
	Links      map[string]ID // doc-comment link text → target item
	Kind       Kind          // nil when the item carries no payload
}

// NameOr returns the item's name, or fallback when it is unnamed.
func (it *Item) NameOr(fallback string) string {
	if it.Name == nil {
		return fallback
	}
	return *it.Name
}

// DocsText returns the item's documentation, or "" when it has none.
func (it *Item) DocsText() string {
	if it.Docs == nil {
		return ""
	}
	return *it.Docs
}

// IsPublic reports whether the item is declared pub.
func (it *Item) IsPublic() bool {
	return it.Visibility == VisibilityPublic
}

// Kind is the tagged payload of an item.
type Kind interface {
	// Tag is the rustdoc inner key the payload was decoded from.
	Tag() string
}

// Param is a named function parameter.
type Param struct {
	Name string
	Type Type
}

// FnDecl is a function declaration: parameters, return type and variadic flag.
type FnDecl struct {
	Inputs   []Param
	Output   Type // nil for ()
	Variadic bool
}

// FnHeader holds the qualifiers written before fn.
type FnHeader struct {
	IsConst  bool
	IsUnsafe bool
	IsAsync  bool
}

// Function is a free function or a method.
type Function struct {
	Decl     FnDecl
	Generics *Generics
	Header   FnHeader
	HasBody  bool
}

// Enum is an enum declaration.
type Enum struct {
	Variants []ID
	Impls    []ID
	Generics *Generics
}

// StructShape is the syntactic form of a struct.
type StructShape int

const (
	StructPlain StructShape = iota
	StructTuple
	StructUnit
)

// TupleField is one positional field of a tuple struct. Either the field item
// ID or the inline type is set; both are empty when the field was stripped.
type TupleField struct {
	ID   ID
	Type Type
}

// Struct is a struct declaration.
type Struct struct {
	Shape       StructShape
	Fields      []ID // StructPlain
	TupleFields []TupleField
	Impls       []ID
	Generics    *Generics
}

// Trait is a trait declaration.
type Trait struct {
	IsUnsafe        bool
	IsAuto          bool
	Items           []ID
	Bounds          []GenericBound
	Generics        *Generics
	Implementations []ID
}

// Impl is an impl block, inherent or of a trait.
type Impl struct {
	IsUnsafe  bool
	Negative  bool
	Synthetic bool
	Generics  *Generics
	Trait     *Path // nil for inherent impls
	For       Type
	Items     []ID
	Blanket   Type // set for blanket impls
}

// IsBlanket reports whether the impl applies to a whole class of types.
func (im *Impl) IsBlanket() bool {
	return im.Blanket != nil
}

// VariantShape is the syntactic form of an enum variant.
type VariantShape int

const (
	VariantPlain VariantShape = iota
	VariantTuple
	VariantStruct
)

// Discriminant is an explicit enum discriminant.
type Discriminant struct {
	Expr  string
	Value string
}

// Variant is an enum variant.
type Variant struct {
	Shape        VariantShape
	Fields       []ID // tuple or named fields; empty IDs are stripped fields
	Discriminant *Discriminant
}

// StructField is a field of a struct or struct-like variant.
type StructField struct {
	Type Type
}

// OtherKind is any payload this package does not model (modules, uses,
// constants, macros, ...).
type OtherKind struct {
	Name string
}

func (*Function) Tag() string    { return "function" }
func (*Enum) Tag() string        { return "enum" }
func (*Struct) Tag() string      { return "struct" }
func (*Trait) Tag() string       { return "trait" }
func (*Impl) Tag() string        { return "impl" }
func (*Variant) Tag() string     { return "variant" }
func (*StructField) Tag() string { return "struct_field" }
func (o *OtherKind) Tag() string { return o.Name }

// Function returns the item's function payload, if any.
func (it *Item) Function() (*Function, bool) {
	f, ok := it.Kind.(*Function)
	return f, ok
}

// Enum returns the item's enum payload, if any.
func (it *Item) Enum() (*Enum, bool) {
	e, ok := it.Kind.(*Enum)
	return e, ok
}

// Struct returns the item's struct payload, if any.
func (it *Item) Struct() (*Struct, bool) {
	s, ok := it.Kind.(*Struct)
	return s, ok
}

// Trait returns the item's trait payload, if any.
func (it *Item) Trait() (*Trait, bool) {
	t, ok := it.Kind.(*Trait)
	return t, ok
}

// Impl returns the item's impl payload, if any.
func (it *Item) Impl() (*Impl, bool) {
	im, ok := it.Kind.(*Impl)
	return im, ok
}

// Variant returns the item's enum variant payload, if any.
func (it *Item) Variant() (*Variant, bool) {
	v, ok := it.Kind.(*Variant)
	return v, ok
}

// Field returns the item's struct field payload, if any.
func (it *Item) Field() (*StructField, bool) {
	f, ok := it.Kind.(*StructField)
	return f, ok
}
