package verify

import (
	"fmt"
	"go/ast"
	"go/types"

	"github.com/wippyai/staticassert/directive"
	"github.com/wippyai/staticassert/expand"
)

// iface evaluates argument i, which must be an interface that can type a
// variable.
func (r *run) iface(i int) (types.Type, *types.Interface, bool) {
	t, ok := r.typeOf(i, r.d.Args[i].Text)
	if !ok {
		return nil, nil, false
	}
	it, ok := t.Underlying().(*types.Interface)
	if !ok {
		r.fail(i, "%s is not an interface", r.d.Args[i].Text)
		return nil, nil, false
	}
	if !it.IsMethodSet() {
		r.fail(i, "%s is a constraint interface", r.d.Args[i].Text)
		return nil, nil, false
	}
	return t, it, true
}

// why explains why t is not assignable to the interface it.
func (r *run) why(t types.Type, it *types.Interface) string {
	m, wrongType := types.MissingMethod(t, it, true)
	switch {
	case m == nil:
		return "not assignable"
	case !wrongType:
		return "missing method " + m.Name()
	case !types.IsInterface(t) &&
		types.NewMethodSet(types.NewPointer(t)).Lookup(m.Pkg(), m.Name()) != nil &&
		types.NewMethodSet(t).Lookup(m.Pkg(), m.Name()) == nil:
		return "method " + m.Name() + " has pointer receiver"
	}
	return "wrong type for method " + m.Name()
}

func (r *run) implAll() {
	t, ok := r.subject()
	if !ok {
		return
	}
	if r.d.Verb == directive.SuperIface && !r.subjectIface(t) {
		return
	}
	for i, a := range r.d.Args {
		it, u, ok := r.iface(i)
		if !ok {
			return
		}
		if !types.AssignableTo(t, it) {
			r.fail(i, "%s does not implement %s (%s)", r.d.Subject.Text, a.Text, r.why(t, u))
			return
		}
	}
}

func (r *run) implAny() {
	t, ok := r.subject()
	if !ok {
		return
	}
	if r.d.Verb == directive.SubIfaceAny && !r.subjectIface(t) {
		return
	}
	for i := range r.d.Args {
		it, _, ok := r.iface(i)
		if !ok {
			return
		}
		if types.AssignableTo(t, it) {
			r.f.Facts.Witness = i
			return
		}
	}
	r.fail(subjectClause, "%s implements none of the listed interfaces", r.d.Subject.Text)
}

// superAll requires every listed interface to extend the subject.
func (r *run) superAll() {
	t, ok := r.subject()
	if !ok || !r.subjectIface(t) {
		return
	}
	for i, a := range r.d.Args {
		sub, _, ok := r.iface(i)
		if !ok {
			return
		}
		if !types.AssignableTo(sub, t) {
			r.fail(i, "%s does not extend %s (%s)", a.Text, r.d.Subject.Text, r.why(sub, t.Underlying().(*types.Interface)))
			return
		}
	}
}

// subjectIface requires the subject to be a basic interface.
func (r *run) subjectIface(t types.Type) bool {
	it, ok := t.Underlying().(*types.Interface)
	switch {
	case !ok:
		r.fail(subjectClause, "%s is not an interface", r.d.Subject.Text)
	case !it.IsMethodSet():
		r.fail(subjectClause, "%s is a constraint interface", r.d.Subject.Text)
	}
	return ok && it.IsMethodSet()
}

// notImpl checks the negative forms and picks absent methods whose
// appearance on the subject would make a probe selector ambiguous.
func (r *run) notImpl() {
	t, ok := r.subject()
	if !ok {
		return
	}
	embed, canEmbed := embeddedName(r.d.Subject.Expr, t)

	ifaces := make([]*types.Interface, len(r.d.Args))
	var missing []int
	for i, a := range r.d.Args {
		it, u, ok := r.iface(i)
		if !ok {
			return
		}
		ifaces[i] = u
		if !types.AssignableTo(t, it) {
			missing = append(missing, i)
			continue
		}
		if r.d.Verb == directive.NotImplAny {
			r.fail(i, "%s implements %s", r.d.Subject.Text, a.Text)
			return
		}
	}
	if len(missing) == 0 {
		r.fail(subjectClause, "%s implements every listed interface", r.d.Subject.Text)
		return
	}

	facts := r.f.Facts
	for _, i := range missing {
		m := ""
		if canEmbed {
			m = r.probeMethod(t, ifaces[i], embed)
		}
		note := fmt.Sprintf("%s does not implement %s (%s)", r.d.Subject.Text, r.d.Args[i].Text, r.why(t, ifaces[i]))

		if r.d.Verb == directive.NotImplAll {
			// One absent method anywhere is enough.
			if m != "" {
				facts.Probes = []expand.Probe{{Method: m, Iface: i}}
				facts.Notes = nil
				return
			}
			if len(facts.Notes) == 0 {
				facts.Notes = append(facts.Notes, note)
			}
			continue
		}

		if m == "" {
			facts.Notes = append(facts.Notes, note)
		} else {
			facts.Probes = append(facts.Probes, expand.Probe{Method: m, Iface: i})
		}
	}
}

// probeMethod returns a method of it that t lacks entirely, neither as a
// method with another signature nor as a field, and that the probe can
// name from this package.
func (r *run) probeMethod(t types.Type, it *types.Interface, embed string) string {
	for j := 0; j < it.NumMethods(); j++ {
		m := it.Method(j)
		if !m.Exported() && m.Pkg() != r.v.pkg {
			continue
		}
		if m.Name() == embed {
			continue
		}
		if obj, index, _ := types.LookupFieldOrMethod(t, true, r.v.pkg, m.Name()); obj != nil || index != nil {
			continue
		}
		return m.Name()
	}
	return ""
}

// embeddedName returns the field name the subject gets when embedded in a
// struct, and whether it can be embedded at all.
func embeddedName(e ast.Expr, t types.Type) (string, bool) {
	if star, ok := e.(*ast.StarExpr); ok {
		p, ok := unalias(t).(*types.Pointer)
		if !ok || types.IsInterface(p.Elem()) {
			return "", false
		}
		e = star.X
		t = p.Elem()
	}
	switch unalias(t).(type) {
	case *types.Named, *types.Basic:
	default:
		return "", false
	}
	// Pointer types and unsafe.Pointer cannot be embedded, even by name.
	switch u := t.Underlying().(type) {
	case *types.Pointer:
		return "", false
	case *types.Basic:
		if u.Kind() == types.UnsafePointer {
			return "", false
		}
	}
	for {
		switch x := e.(type) {
		case *ast.Ident:
			return x.Name, true
		case *ast.SelectorExpr:
			if _, ok := x.X.(*ast.Ident); !ok {
				return "", false
			}
			return x.Sel.Name, true
		case *ast.IndexExpr:
			e = x.X
		case *ast.IndexListExpr:
			e = x.X
		default:
			return "", false
		}
	}
}
