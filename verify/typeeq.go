package verify

import (
	"go/types"
)

func (r *run) objSafe() {
	for i, a := range r.d.Args {
		t, ok := r.typeOf(i, a.Text)
		if !ok {
			return
		}
		it, ok := t.Underlying().(*types.Interface)
		if !ok {
			r.fail(i, "%s is not an interface", a.Text)
			return
		}
		if !it.IsMethodSet() {
			r.fail(i, "%s has a type set and can only be used as a constraint", a.Text)
			return
		}
	}
}

func (r *run) typeList() ([]types.Type, bool) {
	ts := make([]types.Type, len(r.d.Args))
	for i, a := range r.d.Args {
		t, ok := r.typeOf(i, a.Text)
		if !ok {
			return nil, false
		}
		ts[i] = t
	}
	return ts, true
}

func (r *run) eqType() {
	ts, ok := r.typeList()
	if !ok {
		return
	}
	for i := 1; i < len(ts); i++ {
		if !types.Identical(ts[i-1], ts[i]) {
			r.fail(i, "%s and %s are different types", r.str(ts[i-1]), r.str(ts[i]))
			return
		}
	}
}

func (r *run) neType() {
	ts, ok := r.typeList()
	if !ok {
		return
	}
	for j := 1; j < len(ts); j++ {
		for i := 0; i < j; i++ {
			if types.Identical(ts[i], ts[j]) {
				r.fail(j, "%s and %s are the same type %s", r.d.Args[i].Text, r.d.Args[j].Text, r.str(ts[j]))
				return
			}
		}
	}
}
