package render

import (
	"strings"

	"github.com/jcdickinson/rsdocmd/internal/rustdoc"
)

// Generics renders a declaration's parameter list, e.g. <'a, T: Clone, const N: usize>.
// Synthetic parameters introduced by impl Trait arguments are omitted.
func Generics(g *rustdoc.Generics) string {
	if g == nil {
		return ""
	}
	var parts []string
	for _, p := range g.Params {
		if p.Synthetic {
			continue
		}
		parts = append(parts, param(p))
	}
	if len(parts) == 0 {
		return ""
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func param(p rustdoc.GenericParamDef) string {
	switch p.Kind {
	case rustdoc.ParamLifetime:
		if len(p.Outlives) > 0 {
			return p.Name + ": " + strings.Join(p.Outlives, " + ")
		}
		return p.Name
	case rustdoc.ParamConst:
		s := "const " + p.Name + ": " + Type(p.ConstType)
		if p.ConstDefault != "" {
			s += " = " + p.ConstDefault
		}
		return s
	default:
		s := p.Name
		if len(p.Bounds) > 0 {
			s += ": " + Bounds(p.Bounds)
		}
		if p.Default != nil {
			s += " = " + Type(p.Default)
		}
		return s
	}
}

// WhereClause renders " where A: B, C: D", or "" when g has no predicates.
func WhereClause(g *rustdoc.Generics) string {
	if g == nil || len(g.WherePredicates) == 0 {
		return ""
	}
	parts := make([]string, 0, len(g.WherePredicates))
	for _, wp := range g.WherePredicates {
		switch wp := wp.(type) {
		case rustdoc.BoundPredicate:
			s := ""
			if hrtb := lifetimeParams(wp.GenericParams); hrtb != "" {
				s = "for<" + hrtb + "> "
			}
			parts = append(parts, s+Type(wp.Type)+": "+Bounds(wp.Bounds))
		case rustdoc.RegionPredicate:
			parts = append(parts, wp.Lifetime+": "+strings.Join(wp.Outlives, " + "))
		case rustdoc.EqPredicate:
			parts = append(parts, Type(wp.LHS)+" = "+Type(wp.RHS))
		}
	}
	return " where " + strings.Join(parts, ", ")
}
