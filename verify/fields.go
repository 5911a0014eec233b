package verify

import (
	"go/constant"
	"go/types"
)

// lookupField finds a field of t by name. It fails the run for methods,
// ambiguous selectors and missing names.
func (r *run) lookupField(clause int, t types.Type, name string) ([]int, bool, bool) {
	obj, index, indirect := types.LookupFieldOrMethod(t, true, r.v.pkg, name)
	switch obj := obj.(type) {
	case nil:
		if index != nil {
			r.fail(clause, "selector %s is ambiguous in %s", name, r.d.Subject.Text)
		} else {
			r.fail(clause, "%s has no field %s", r.d.Subject.Text, name)
		}
		return nil, false, false
	case *types.Var:
		return index, indirect, true
	default:
		r.fail(clause, "%s.%s is a %s, not a field", r.d.Subject.Text, name, kindOf(obj))
		return nil, false, false
	}
}

func kindOf(obj types.Object) string {
	if _, ok := obj.(*types.Func); ok {
		return "method"
	}
	return "declaration"
}

func (r *run) fields() {
	t, ok := r.subject()
	if !ok {
		return
	}
	for i, a := range r.d.Args {
		if _, _, ok := r.lookupField(i, t, a.Name); !ok {
			return
		}
	}
}

func (r *run) fieldOffsets() {
	t, ok := r.subject()
	if !ok {
		return
	}
	if p, ok := t.Underlying().(*types.Pointer); ok {
		t = p.Elem()
	}
	if _, ok := t.Underlying().(*types.Struct); !ok {
		r.fail(subjectClause, "%s is not a struct", r.d.Subject.Text)
		return
	}

	for i, a := range r.d.Args {
		index, indirect, ok := r.lookupField(i, t, a.Name)
		if !ok {
			return
		}
		if indirect {
			r.fail(i, "field %s is embedded via a pointer in %s", a.Name, r.d.Subject.Text)
			return
		}
		got := r.offset(t, index)

		text := types.ExprString(a.Expr)
		tv, ok := r.eval(i, text)
		if !ok {
			return
		}
		if tv.Value == nil {
			r.fail(i, "offset %s is not constant", text)
			return
		}
		want, exact := constant.Int64Val(constant.ToInt(tv.Value))
		if !exact {
			r.fail(i, "offset %s is not an integer constant", text)
			return
		}
		if got != want {
			r.fail(i, "offset of %s.%s is %d, not %d", r.d.Subject.Text, a.Name, got, want)
			return
		}
	}
}

// offset sums field offsets along an embedding path.
func (r *run) offset(t types.Type, index []int) int64 {
	var off int64
	for _, i := range index {
		s := t.Underlying().(*types.Struct)
		fs := make([]*types.Var, s.NumFields())
		for j := range fs {
			fs[j] = s.Field(j)
		}
		off += r.v.sizes.Offsetsof(fs)[i]
		t = s.Field(i).Type()
	}
	return off
}
