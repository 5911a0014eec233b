package expand

import (
	"github.com/wippyai/staticassert/directive"
	"github.com/wippyai/staticassert/expand/internal/emit"
)

// fields takes the address of each named field. Methods are not
// addressable, so only fields pass.
func (x *Expander) fields(d *directive.Directive) {
	v := fresh(names(d), "v")
	x.e.Open("func _(%s %s)", v, d.Subject.Text)
	for _, a := range d.Args {
		x.e.Line("_ = %s &%s.%s", emit.At(a.Pos), v, a.Name)
	}
	x.e.Close()
}

// fieldOffsets gates on the offset of each field within the subject.
// unsafe.Offsetof on a field of a parameter is still a constant.
func (x *Expander) fieldOffsets(d *directive.Directive) {
	v := fresh(names(d), "v")
	x.e.Open("func _(%s %s)", v, d.Subject.Text)
	for _, a := range d.Args {
		x.gate(x.e.Offsetof(v+"."+a.Name)+" == ("+exprString(a.Expr)+")", a.Pos)
	}
	x.e.Close()
}
