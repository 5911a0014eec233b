package expand

import (
	"fmt"
	"strings"

	"github.com/wippyai/staticassert/directive"
	"github.com/wippyai/staticassert/expand/internal/emit"
)

// eqType chains pointer assignments between adjacent types. Unnamed pointer
// types are assignable only when their element types are identical.
func (x *Expander) eqType(d *directive.Directive) {
	seen := names(d)
	vars := make([]string, len(d.Args))
	params := make([]string, len(d.Args))
	for i, a := range d.Args {
		vars[i] = fresh(seen, "p")
		params[i] = fmt.Sprintf("%s *%s", vars[i], a.Text)
	}
	x.e.Open("func _(%s)", strings.Join(params, ", "))
	for i := 1; i < len(d.Args); i++ {
		a := d.Args[i]
		x.e.Line("var _ *%s = %s %s", a.Text, emit.At(a.Pos), vars[i-1])
	}
	x.e.Close()
}

// neType lists every type as a case of one type switch, which rejects any
// two identical cases.
func (x *Expander) neType(d *directive.Directive) {
	v := fresh(names(d), "v")
	x.e.Open("func _(%s interface{})", v)
	x.e.Open("switch %s.(type)", v)
	for _, a := range d.Args {
		x.e.Line("case %s %s:", emit.At(a.Pos), a.Text)
	}
	x.e.Close()
	x.e.Close()
}

// objSafe declares a parameter of each interface type and switches on it.
// Constraint interfaces cannot type a parameter and non-interfaces cannot be
// switched on.
func (x *Expander) objSafe(d *directive.Directive) {
	v := fresh(names(d), "v")
	for _, a := range d.Args {
		at := emit.At(a.Pos)
		x.e.Open("func _(%s %s %s)", v, at, a.Text)
		x.e.Open("switch %s %s.(type)", at, v)
		x.e.Close()
		x.e.Close()
	}
}
