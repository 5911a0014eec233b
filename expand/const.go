package expand

import (
	"github.com/wippyai/staticassert/directive"
)

// constant gates each condition of const, or each comparison of the first
// operand with the others for const_eq and const_ne.
func (x *Expander) constant(d *directive.Directive) {
	x.e.Open("func _()")
	switch d.Verb {
	case directive.Const:
		for _, a := range d.Args {
			x.gate(a.Text, a.Pos)
		}
	default:
		op := "=="
		if d.Verb == directive.ConstNe {
			op = "!="
		}
		first := "(" + d.Args[0].Text + ")"
		for _, a := range d.Args[1:] {
			x.gate(first+" "+op+" ("+a.Text+")", a.Pos)
		}
	}
	x.e.Close()
}
