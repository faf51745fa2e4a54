package render

import (
	"strings"

	"github.com/jcdickinson/rsdocmd/internal/rustdoc"
)

// FnSignature builds a Rust function signature without a trailing semicolon.
// Example output: "pub fn record_debug(&mut self, field: &Field, value: &dyn Debug)"
func FnSignature(name string, fn *rustdoc.Function, public bool) string {
	var b strings.Builder

	if public {
		b.WriteString("pub ")
	}
	if fn.Header.IsConst {
		b.WriteString("const ")
	}
	if fn.Header.IsAsync {
		b.WriteString("async ")
	}
	if fn.Header.IsUnsafe {
		b.WriteString("unsafe ")
	}

	b.WriteString("fn ")
	b.WriteString(name)
	b.WriteString(Generics(fn.Generics))

	b.WriteString("(")
	params := make([]string, 0, len(fn.Decl.Inputs)+1)
	for _, in := range fn.Decl.Inputs {
		if in.Name == "self" {
			params = append(params, SelfParam(in.Type))
			continue
		}
		params = append(params, in.Name+": "+Type(in.Type))
	}
	if fn.Decl.Variadic {
		params = append(params, "...")
	}
	b.WriteString(strings.Join(params, ", "))
	b.WriteString(")")

	if out := fn.Decl.Output; out != nil && !isUnit(out) {
		b.WriteString(" -> ")
		b.WriteString(Type(fn.Decl.Output))
	}
	b.WriteString(WhereClause(fn.Generics))
	return b.String()
}

// SelfParam renders a receiver with Rust shorthand: self, &self, &'a mut self,
// or self: Type for explicit receiver types.
func SelfParam(t rustdoc.Type) string {
	switch t := t.(type) {
	case rustdoc.SelfType:
		return "self"
	case rustdoc.Generic:
		if t.Name == "Self" {
			return "self"
		}
	case rustdoc.BorrowedRef:
		if isSelf(t.Type) {
			prefix := "&"
			if t.Lifetime != "" {
				prefix += t.Lifetime + " "
			}
			if t.IsMutable {
				prefix += "mut "
			}
			return prefix + "self"
		}
	}
	return "self: " + Type(t)
}

func isSelf(t rustdoc.Type) bool {
	switch t := t.(type) {
	case rustdoc.SelfType:
		return true
	case rustdoc.Generic:
		return t.Name == "Self"
	}
	return false
}

func isUnit(t rustdoc.Type) bool {
	tup, ok := t.(rustdoc.Tuple)
	return ok && len(tup.Elems) == 0
}
