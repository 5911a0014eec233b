package verify

import (
	"go/types"

	"github.com/wippyai/staticassert/directive"
)

func (r *run) layout() {
	args := r.d.Args
	align := r.d.Verb.IsAlign()
	vals := make([]int64, len(args))
	isType := make([]bool, len(args))

	for i, a := range args {
		tv, ok := r.eval(i, a.Text)
		if !ok {
			return
		}
		t := tv.Type
		switch {
		case r.d.Verb == directive.EqSizePtr:
			if !tv.IsValue() {
				r.fail(i, "%s is a type, expected a pointer value", a.Text)
				return
			}
			p, ok := t.Underlying().(*types.Pointer)
			if !ok {
				r.fail(i, "%s is not a pointer", a.Text)
				return
			}
			t = p.Elem()
		case tv.IsType():
			if a.Kind == directive.KindExpr {
				r.fail(i, "%s is a type, expected a value", a.Text)
				return
			}
			isType[i] = true
		case !tv.IsValue():
			r.fail(i, "%s is neither a type nor a value", a.Text)
			return
		}
		t = types.Default(t)
		if align {
			vals[i] = r.v.sizes.Alignof(t)
		} else {
			vals[i] = r.v.sizes.Sizeof(t)
		}
	}
	r.f.Facts.IsType = isType

	what := "size"
	if align {
		what = "alignment"
	}
	switch r.d.Verb {
	case directive.EqSize, directive.EqSizeVal, directive.EqSizePtr, directive.EqAlign:
		for i := 1; i < len(vals); i++ {
			if vals[i-1] != vals[i] {
				r.fail(i, "%s of %s is %d, %s of %s is %d", what, args[i-1].Text, vals[i-1], what, args[i].Text, vals[i])
				return
			}
		}
	default:
		for i := 1; i < len(vals); i++ {
			if !holds(r.d.Verb, vals[0], vals[i]) {
				r.fail(i, "%s of %s is %d, %s of %s is %d", what, args[0].Text, vals[0], what, args[i].Text, vals[i])
				return
			}
		}
	}
}

func holds(v directive.Verb, a, b int64) bool {
	switch v {
	case directive.LtSize, directive.LtAlign:
		return a < b
	case directive.LeSize, directive.LeAlign:
		return a <= b
	case directive.GtSize, directive.GtAlign:
		return a > b
	case directive.GeSize, directive.GeAlign:
		return a >= b
	case directive.NeAlign:
		return a != b
	}
	return a == b
}
