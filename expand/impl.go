package expand

import (
	"github.com/wippyai/staticassert/directive"
	"github.com/wippyai/staticassert/expand/internal/emit"
)

// implAll requires the subject to be assignable to every interface in ifaces.
func (x *Expander) implAll(d *directive.Directive, ifaces []directive.Arg) {
	v := fresh(names(d), "v")
	x.e.Open("func _(%s %s)", v, d.Subject.Text)
	for _, a := range ifaces {
		x.e.Line("var _ %s = %s %s", a.Text, emit.At(a.Pos), v)
	}
	x.e.Close()
}

// superAll requires every listed interface to be assignable to the subject.
func (x *Expander) superAll(d *directive.Directive) {
	v := fresh(names(d), "v")
	for _, a := range d.Args {
		x.e.Open("func _(%s %s)", v, a.Text)
		x.e.Line("var _ %s = %s %s", d.Subject.Text, emit.At(a.Pos), v)
		x.e.Close()
	}
}

// notImpl emits one selector-ambiguity probe per absent method. The struct
// embeds the subject next to a type whose only field is the method name, so
// the selector resolves to that field until the subject gains the method at
// the same depth.
func (x *Expander) notImpl(d *directive.Directive, facts *Facts) {
	for _, n := range facts.Notes {
		x.e.Comment("verified at generation time: " + n)
	}
	seen := names(d)
	v := fresh(seen, "x")
	for _, p := range facts.Probes {
		absent := fresh(seen, "absent_"+p.Method)
		x.e.Open("func _()")
		x.e.Line("type %s struct{ %s struct{} }", absent, p.Method)
		x.e.Open("var %s struct", v)
		x.e.Line("%s", d.Subject.Text)
		x.e.Line("%s", absent)
		x.e.Close()
		x.e.Line("_ = %s %s.%s", emit.At(d.Args[p.Iface].Pos), v, p.Method)
		x.e.Close()
	}
}
