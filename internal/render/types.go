// Package render turns rustdoc type expressions into Rust source syntax.
// Every function here is pure and total: shapes it cannot express render as
// UnknownType instead of failing.
package render

import (
	"strings"

	"github.com/jcdickinson/rsdocmd/internal/rustdoc"
)

// UnknownType is emitted for type shapes that have no rendering.
const UnknownType = "/* unknown type */"

// Type renders a type expression.
func Type(t rustdoc.Type) string {
	switch t := t.(type) {
	case rustdoc.Primitive:
		return t.Name
	case rustdoc.Generic:
		return t.Name
	case rustdoc.ResolvedPath:
		return Path(t.Path)
	case rustdoc.BorrowedRef:
		var b strings.Builder
		b.WriteString("&")
		if t.Lifetime != "" {
			b.WriteString(t.Lifetime)
			b.WriteString(" ")
		}
		if t.IsMutable {
			b.WriteString("mut ")
		}
		b.WriteString(Type(t.Type))
		return b.String()
	case rustdoc.Slice:
		return "[" + Type(t.Elem) + "]"
	case rustdoc.Array:
		return "[" + Type(t.Elem) + "; " + t.Len + "]"
	case rustdoc.RawPointer:
		if t.IsMutable {
			return "*mut " + Type(t.Type)
		}
		return "*const " + Type(t.Type)
	case rustdoc.ImplTrait:
		return "impl " + Bounds(t.Bounds)
	case rustdoc.DynTrait:
		s := "dyn " + Bounds(t.Bounds)
		if t.Lifetime != "" {
			s += " + " + t.Lifetime
		}
		return s
	case rustdoc.QualifiedPath:
		return t.Name + GenericArgs(t.Args)
	case rustdoc.Tuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = Type(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case rustdoc.SelfType:
		return "Self"
	default:
		return UnknownType
	}
}

// Path renders a path name followed by its generic arguments.
func Path(p rustdoc.Path) string {
	return p.Name + GenericArgs(p.Args)
}

// GenericArgs renders <...> arguments, or "" when there are none.
// Parenthesized Fn(A) -> B arguments are not rendered.
func GenericArgs(args *rustdoc.GenericArgs) string {
	if args == nil || args.AngleBracketed == nil {
		return ""
	}
	ab := args.AngleBracketed
	parts := make([]string, 0, len(ab.Args)+len(ab.Constraints))
	for _, a := range ab.Args {
		parts = append(parts, GenericArg(a))
	}
	for _, c := range ab.Constraints {
		parts = append(parts, constraint(c))
	}
	if len(parts) == 0 {
		return ""
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// GenericArg renders a single generic argument.
func GenericArg(a rustdoc.GenericArg) string {
	switch a := a.(type) {
	case rustdoc.LifetimeArg:
		return a.Lifetime
	case rustdoc.TypeArg:
		return Type(a.Type)
	case rustdoc.ConstArg:
		if a.Expr != "" {
			return a.Expr
		}
		return a.Value
	default:
		return UnknownType
	}
}

func constraint(c rustdoc.AssocConstraint) string {
	name := c.Name + GenericArgs(c.Args)
	switch {
	case c.Equality != nil:
		return name + " = " + Type(c.Equality)
	case len(c.Bounds) > 0:
		return name + ": " + Bounds(c.Bounds)
	default:
		return name
	}
}

// Bounds renders bounds joined by " + ".
func Bounds(bounds []rustdoc.GenericBound) string {
	parts := make([]string, len(bounds))
	for i, b := range bounds {
		parts[i] = Bound(b)
	}
	return strings.Join(parts, " + ")
}

// Bound renders one trait or lifetime bound.
func Bound(b rustdoc.GenericBound) string {
	switch b := b.(type) {
	case rustdoc.TraitBound:
		var s strings.Builder
		if hrtb := lifetimeParams(b.GenericParams); hrtb != "" {
			s.WriteString("for<" + hrtb + "> ")
		}
		switch b.Modifier {
		case rustdoc.ModifierMaybe:
			s.WriteString("?")
		case rustdoc.ModifierMaybeConst:
			s.WriteString("~const ")
		}
		s.WriteString(Path(b.Trait))
		return s.String()
	case rustdoc.OutlivesBound:
		return b.Lifetime
	default:
		return UnknownType
	}
}

func lifetimeParams(params []rustdoc.GenericParamDef) string {
	var names []string
	for _, p := range params {
		if p.Kind == rustdoc.ParamLifetime {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}
