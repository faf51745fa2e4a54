package synth

import "github.com/jcdickinson/rsdocmd/internal/rustdoc"

// traitMethods detects functions that implement or declare a trait method and
// are therefore already described under their trait or impl.
//
// Two independent tests are used: membership in a trait impl's item list, and
// a name plus parameter-count match against any trait's declared methods. The
// second test is best-effort. It can skip an unrelated function that happens
// to share a name and arity with a trait method.
type traitMethods struct {
	implMembers map[rustdoc.ID]bool
	arities     map[string][]int
}

func newTraitMethods(ix *rustdoc.Index) *traitMethods {
	tm := &traitMethods{
		implMembers: make(map[rustdoc.ID]bool),
		arities:     make(map[string][]int),
	}
	for _, it := range ix.All() {
		switch k := it.Kind.(type) {
		case *rustdoc.Impl:
			if k.Trait == nil {
				continue
			}
			for _, id := range k.Items {
				tm.implMembers[id] = true
			}
		case *rustdoc.Trait:
			for _, id := range k.Items {
				m, ok := ix.Get(id)
				if !ok || m.Name == nil {
					continue
				}
				if fn, ok := m.Function(); ok {
					tm.arities[*m.Name] = append(tm.arities[*m.Name], len(fn.Decl.Inputs))
				}
			}
		}
	}
	return tm
}

// skip reports whether it is a trait method implementation.
func (tm *traitMethods) skip(it *rustdoc.Item) bool {
	fn, ok := it.Function()
	if !ok {
		return false
	}
	if tm.implMembers[it.ID] {
		return true
	}
	if it.Name == nil {
		return false
	}
	for _, n := range tm.arities[*it.Name] {
		if n == len(fn.Decl.Inputs) {
			return true
		}
	}
	return false
}
