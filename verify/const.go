package verify

import (
	"go/constant"

	"github.com/wippyai/staticassert/directive"
)

func (r *run) constant() {
	args := r.d.Args
	if r.d.Verb == directive.Const {
		for i, a := range args {
			if !r.condition(i, a.Text) {
				return
			}
		}
		return
	}

	op := "=="
	if r.d.Verb == directive.ConstNe {
		op = "!="
	}
	first, ok := r.eval(0, args[0].Text)
	if !ok {
		return
	}
	if first.Value == nil {
		r.fail(0, "%s is not constant", args[0].Text)
		return
	}
	for i := 1; i < len(args); i++ {
		tv, ok := r.eval(i, "("+args[0].Text+") "+op+" ("+args[i].Text+")")
		if !ok {
			return
		}
		if tv.Value == nil || tv.Value.Kind() != constant.Bool {
			r.fail(i, "%s is not constant", args[i].Text)
			return
		}
		if !constant.BoolVal(tv.Value) {
			other, _ := r.eval(i, args[i].Text)
			r.fail(i, "%s is %s, %s is %s", args[0].Text, first.Value, args[i].Text, other.Value)
			return
		}
	}
}

// condition evaluates one constant boolean clause.
func (r *run) condition(i int, text string) bool {
	tv, ok := r.eval(i, text)
	if !ok {
		return false
	}
	switch {
	case tv.Value == nil:
		r.fail(i, "%s is not constant", text)
	case tv.Value.Kind() != constant.Bool:
		r.fail(i, "%s is not a boolean", text)
	case !constant.BoolVal(tv.Value):
		r.fail(i, "%s is false", text)
	default:
		return true
	}
	return false
}
