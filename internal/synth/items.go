package synth

import (
	"fmt"
	"strings"

	"github.com/jcdickinson/rsdocmd/internal/render"
	"github.com/jcdickinson/rsdocmd/internal/rustdoc"
)

// FieldPlaceholder stands in for a field type that cannot be resolved.
const FieldPlaceholder = "/* field type */"

const (
	itemLevel    = 3
	variantLevel = 4
	sectionLevel = 4
	memberLevel  = 5
)

// declaredPublic reports whether a declaration is written with pub. Items
// without a recorded visibility are treated as public.
func declaredPublic(it *rustdoc.Item) bool {
	return it.Visibility == "" || it.IsPublic()
}

func (s *Synthesizer) writeHeading(b *strings.Builder, level int, it *rustdoc.Item, title string) {
	if it != nil && it.Name != nil {
		fmt.Fprintf(b, "<a id=\"%s\"></a>\n", s.anchor(it))
	}
	fmt.Fprintf(b, "%s %s\n\n", strings.Repeat("#", level), title)
}

func (s *Synthesizer) writeDocs(b *strings.Builder, it *rustdoc.Item) {
	if docs := strings.TrimSpace(s.rewriteDocs(it)); docs != "" {
		b.WriteString(docs)
		b.WriteString("\n\n")
	}
}

func writeCode(b *strings.Builder, code string) {
	fmt.Fprintf(b, "```rust\n%s\n```\n\n", code)
}

func (s *Synthesizer) renderFunction(it *rustdoc.Item, fn *rustdoc.Function) string {
	var b strings.Builder
	name := it.NameOr("_")
	s.writeHeading(&b, itemLevel, it, name)
	s.writeDocs(&b, it)
	writeCode(&b, render.FnSignature(name, fn, declaredPublic(it)))
	return b.String()
}

func (s *Synthesizer) renderOther(it *rustdoc.Item) string {
	var b strings.Builder
	name := it.NameOr("_")
	s.writeHeading(&b, itemLevel, it, name)
	s.writeDocs(&b, it)
	if f, ok := it.Field(); ok {
		writeCode(&b, name+": "+render.Type(f.Type))
	}
	return b.String()
}

// --- structs ---

func (s *Synthesizer) renderStruct(it *rustdoc.Item, st *rustdoc.Struct) string {
	var b strings.Builder
	name := it.NameOr("_")
	s.writeHeading(&b, itemLevel, it, name)
	s.writeDocs(&b, it)
	writeCode(&b, s.structDecl(it, st))
	s.writeImplements(&b, st.Impls)
	return b.String()
}

func (s *Synthesizer) structDecl(it *rustdoc.Item, st *rustdoc.Struct) string {
	var b strings.Builder
	if declaredPublic(it) {
		b.WriteString("pub ")
	}
	b.WriteString("struct ")
	b.WriteString(it.NameOr("_"))
	b.WriteString(render.Generics(st.Generics))

	switch st.Shape {
	case rustdoc.StructUnit:
		b.WriteString(render.WhereClause(st.Generics))
		b.WriteString(";")
	case rustdoc.StructTuple:
		b.WriteString("(")
		b.WriteString(strings.Join(s.tupleFields(st), ", "))
		b.WriteString(")")
		b.WriteString(render.WhereClause(st.Generics))
		b.WriteString(";")
	default:
		b.WriteString(render.WhereClause(st.Generics))
		fields := s.namedFields(it.ID, st.Fields)
		if len(fields) == 0 {
			b.WriteString(" {}")
			break
		}
		b.WriteString(" {\n")
		for _, f := range fields {
			b.WriteString("    " + f + ",\n")
		}
		b.WriteString("}")
	}
	return b.String()
}

// namedFields renders "pub name: Type" for each resolvable field id.
func (s *Synthesizer) namedFields(owner rustdoc.ID, ids []rustdoc.ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		f, ok := s.crate.Index.Get(id)
		if !ok {
			s.log.Debug("unresolved field", "item", owner, "field", id)
			continue
		}
		vis := ""
		if f.IsPublic() {
			vis = "pub "
		}
		out = append(out, vis+f.NameOr("_")+": "+s.fieldType(f))
	}
	return out
}

func (s *Synthesizer) fieldType(f *rustdoc.Item) string {
	if sf, ok := f.Field(); ok && sf.Type != nil {
		return render.Type(sf.Type)
	}
	return FieldPlaceholder
}

// tupleFields renders the positional fields of a tuple struct.
//
// A single unresolvable field of a struct with exactly one lifetime parameter
// is shown as &'a [u8]: the borrowed byte-slice wrapper is the common shape
// of such structs.
func (s *Synthesizer) tupleFields(st *rustdoc.Struct) []string {
	lifetimes := st.Generics.Lifetimes()
	out := make([]string, 0, len(st.TupleFields))
	for _, tf := range st.TupleFields {
		text, ok := s.tupleField(tf)
		if !ok && len(st.TupleFields) == 1 && len(lifetimes) == 1 {
			text = "&" + lifetimes[0] + " [u8]"
		}
		out = append(out, text)
	}
	return out
}

func (s *Synthesizer) tupleField(tf rustdoc.TupleField) (string, bool) {
	if tf.Type != nil {
		return render.Type(tf.Type), true
	}
	f, ok := s.crate.Index.Get(tf.ID)
	if !ok {
		return FieldPlaceholder, false
	}
	sf, ok := f.Field()
	if !ok || sf.Type == nil {
		return FieldPlaceholder, false
	}
	vis := ""
	if f.IsPublic() {
		vis = "pub "
	}
	return vis + render.Type(sf.Type), true
}

// --- enums ---

func (s *Synthesizer) renderEnum(it *rustdoc.Item, e *rustdoc.Enum) string {
	var b strings.Builder
	name := it.NameOr("_")
	s.writeHeading(&b, itemLevel, it, name)
	s.writeDocs(&b, it)
	writeCode(&b, s.enumDecl(it, e))
	s.writeImplements(&b, e.Impls)
	return b.String()
}

func (s *Synthesizer) enumDecl(it *rustdoc.Item, e *rustdoc.Enum) string {
	var b strings.Builder
	if declaredPublic(it) {
		b.WriteString("pub ")
	}
	b.WriteString("enum ")
	b.WriteString(it.NameOr("_"))
	b.WriteString(render.Generics(e.Generics))
	b.WriteString(render.WhereClause(e.Generics))
	if len(e.Variants) == 0 {
		b.WriteString(" {}")
		return b.String()
	}
	b.WriteString(" {\n")
	for _, id := range e.Variants {
		v, ok := s.crate.Index.Get(id)
		if !ok {
			s.log.Debug("unresolved variant", "item", it.ID, "variant", id)
			continue
		}
		for _, line := range docLines(v.DocsText()) {
			b.WriteString("    /// " + line + "\n")
		}
		b.WriteString("    " + s.variantLine(v) + ",\n")
	}
	b.WriteString("}")
	return b.String()
}

// docLines returns doc comment lines without trailing blank lines.
func docLines(docs string) []string {
	docs = strings.TrimRight(docs, " \n")
	if docs == "" {
		return nil
	}
	lines := strings.Split(docs, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}

// variantLine renders a variant as it appears inside an enum body, without
// the trailing comma.
func (s *Synthesizer) variantLine(it *rustdoc.Item) string {
	line := it.NameOr("_")
	v, ok := it.Variant()
	if !ok {
		return line
	}
	switch v.Shape {
	case rustdoc.VariantTuple:
		parts := make([]string, len(v.Fields))
		for i, id := range v.Fields {
			parts[i] = FieldPlaceholder
			if f, ok := s.crate.Index.Get(id); ok {
				parts[i] = s.fieldType(f)
			}
		}
		line += "(" + strings.Join(parts, ", ") + ")"
	case rustdoc.VariantStruct:
		fields := s.namedFields(it.ID, v.Fields)
		if len(fields) == 0 {
			line += " {}"
		} else {
			line += " { " + strings.Join(fields, ", ") + " }"
		}
	}
	if v.Discriminant != nil {
		expr := v.Discriminant.Expr
		if expr == "" {
			expr = v.Discriminant.Value
		}
		line += " = " + expr
	}
	return line
}

func (s *Synthesizer) renderVariant(it *rustdoc.Item, _ *rustdoc.Variant) string {
	var b strings.Builder
	s.writeHeading(&b, variantLevel, it, it.NameOr("_"))
	s.writeDocs(&b, it)
	writeCode(&b, s.variantLine(it)+",")
	return b.String()
}

// --- traits ---

func (s *Synthesizer) renderTrait(it *rustdoc.Item, tr *rustdoc.Trait) string {
	var b strings.Builder
	name := it.NameOr("_")
	s.writeHeading(&b, itemLevel, it, name)
	s.writeDocs(&b, it)
	writeCode(&b, s.traitDecl(it, tr))
	s.writeMethods(&b, it.ID, tr.Items)
	return b.String()
}

func (s *Synthesizer) traitDecl(it *rustdoc.Item, tr *rustdoc.Trait) string {
	var b strings.Builder
	if declaredPublic(it) {
		b.WriteString("pub ")
	}
	if tr.IsUnsafe {
		b.WriteString("unsafe ")
	}
	if tr.IsAuto {
		b.WriteString("auto ")
	}
	b.WriteString("trait ")
	b.WriteString(it.NameOr("_"))
	b.WriteString(render.Generics(tr.Generics))
	if len(tr.Bounds) > 0 {
		b.WriteString(": ")
		b.WriteString(render.Bounds(tr.Bounds))
	}
	b.WriteString(render.WhereClause(tr.Generics))
	b.WriteString(s.memberBlock(it.ID, tr.Items, true))
	return b.String()
}

// memberBlock renders " { ... }" listing member signatures. Trait members
// with a default body are marked with { ... }.
func (s *Synthesizer) memberBlock(owner rustdoc.ID, ids []rustdoc.ID, inTrait bool) string {
	var lines []string
	for _, id := range ids {
		m, ok := s.crate.Index.Get(id)
		if !ok {
			s.log.Debug("unresolved member", "item", owner, "member", id)
			continue
		}
		name := m.NameOr("_")
		switch k := m.Kind.(type) {
		case *rustdoc.Function:
			sig := render.FnSignature(name, k, !inTrait && m.IsPublic())
			if inTrait && k.HasBody {
				lines = append(lines, sig+" { ... }")
			} else {
				lines = append(lines, sig+";")
			}
		case *rustdoc.OtherKind:
			switch k.Name {
			case "assoc_type", "associated_type", "type_alias":
				lines = append(lines, "type "+name+";")
			case "assoc_const", "associated_const", "constant":
				lines = append(lines, "const "+name+";")
			}
		}
	}
	if len(lines) == 0 {
		return " {}"
	}
	return " {\n    " + strings.Join(lines, "\n    ") + "\n}"
}

// writeMethods writes the detailed per-method listing.
func (s *Synthesizer) writeMethods(b *strings.Builder, owner rustdoc.ID, ids []rustdoc.ID) {
	var body strings.Builder
	for _, id := range ids {
		m, ok := s.crate.Index.Get(id)
		if !ok {
			continue
		}
		fn, ok := m.Function()
		if !ok {
			continue
		}
		name := m.NameOr("_")
		fmt.Fprintf(&body, "%s `%s`\n\n", strings.Repeat("#", memberLevel), name)
		writeCode(&body, render.FnSignature(name, fn, m.IsPublic()))
		s.writeDocs(&body, m)
	}
	if body.Len() == 0 {
		return
	}
	fmt.Fprintf(b, "%s Methods\n\n", strings.Repeat("#", sectionLevel))
	b.WriteString(body.String())
}

// --- impls ---

// ImplTitle names an impl block: "Implementation of 'Display' for 'Foo'", or
// "Implementation for 'Foo'" for inherent impls.
func ImplTitle(im *rustdoc.Impl) string {
	forType := render.Type(im.For)
	if im.Trait == nil {
		return fmt.Sprintf("Implementation for '%s'", forType)
	}
	return fmt.Sprintf("Implementation of '%s' for '%s'", render.Path(*im.Trait), forType)
}

func (s *Synthesizer) renderImpl(it *rustdoc.Item, im *rustdoc.Impl) string {
	var b strings.Builder
	title := ImplTitle(im)
	if im.Trait == nil && it.Name != nil {
		title = *it.Name
	}
	s.writeHeading(&b, itemLevel, it, title)
	s.writeDocs(&b, it)
	writeCode(&b, s.implDecl(it.ID, im))
	s.writeMethods(&b, it.ID, im.Items)
	return b.String()
}

func (s *Synthesizer) implDecl(id rustdoc.ID, im *rustdoc.Impl) string {
	var b strings.Builder
	if im.IsUnsafe {
		b.WriteString("unsafe ")
	}
	b.WriteString("impl")
	b.WriteString(render.Generics(im.Generics))
	b.WriteString(" ")
	if im.Trait != nil {
		if im.Negative {
			b.WriteString("!")
		}
		b.WriteString(render.Path(*im.Trait))
		b.WriteString(" for ")
	}
	b.WriteString(render.Type(im.For))
	b.WriteString(render.WhereClause(im.Generics))
	b.WriteString(s.memberBlock(id, im.Items, false))
	return b.String()
}
