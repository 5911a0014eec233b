package expand

import (
	"fmt"
	"go/build/constraint"
	"strconv"
	"strings"

	"github.com/wippyai/staticassert/directive"
	"github.com/wippyai/staticassert/expand/internal/emit"
)

// cfg requests a file that is built only when the constraint does not hold.
func (x *Expander) cfg(d *directive.Directive) {
	msg := d.Message
	if msg == "" {
		msg = "build constraint not satisfied: " + d.Constraint.String()
	}
	x.cfgs = append(x.cfgs, CfgShape{
		Constraint: &constraint.NotExpr{X: d.Constraint},
		Message:    msg,
		Pos:        d.Args[0].Pos,
	})
}

// oneTag requests one file for "no tag set" and, with two or more tags, one
// for "more than one tag set".
func (x *Expander) oneTag(d *directive.Directive) {
	tags := make([]constraint.Expr, len(d.Args))
	names := make([]string, len(d.Args))
	for i, a := range d.Args {
		tags[i] = &constraint.TagExpr{Tag: a.Name}
		names[i] = a.Name
	}
	list := strings.Join(names, ", ")

	x.cfgs = append(x.cfgs, CfgShape{
		Constraint: &constraint.NotExpr{X: disjunction(tags...)},
		Message:    "none of the build tags " + list + " is set",
		Pos:        d.Args[0].Pos,
	})
	if len(tags) < 2 {
		return
	}

	var pairs []constraint.Expr
	for i := 0; i < len(tags); i++ {
		for j := i + 1; j < len(tags); j++ {
			pairs = append(pairs, &constraint.AndExpr{X: tags[i], Y: tags[j]})
		}
	}
	x.cfgs = append(x.cfgs, CfgShape{
		Constraint: disjunction(pairs...),
		Message:    "more than one of the build tags " + list + " is set",
		Pos:        d.Args[1].Pos,
	})
}

// disjunction folds xs into a left-leaning disjunction.
func disjunction(xs ...constraint.Expr) constraint.Expr {
	out := xs[0]
	for _, x := range xs[1:] {
		out = &constraint.OrExpr{X: out, Y: x}
	}
	return out
}

// Guard returns the build constraint of a generated file: never built while
// probing, restricted to the source file's own constraint (which may be nil)
// and to extra (which may be nil).
func Guard(file, extra constraint.Expr) constraint.Expr {
	var x constraint.Expr = &constraint.NotExpr{X: &constraint.TagExpr{Tag: ProbeTag}}
	if file != nil {
		x = &constraint.AndExpr{X: x, Y: file}
	}
	if extra != nil {
		x = &constraint.AndExpr{X: x, Y: extra}
	}
	return x
}

// Body returns the declaration of a cfg file. It never type-checks, and
// the message appears in the compiler's diagnostic.
func (s CfgShape) Body() []byte {
	return fmt.Appendf(nil, "var _ int = %s %s\n", emit.At(s.Pos), strconv.Quote("static assertion failed: "+s.Message))
}
