package expand

import (
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/token"
	"go/types"
	"path/filepath"
	"strconv"

	"github.com/wippyai/staticassert/directive"
	"github.com/wippyai/staticassert/errors"
	"github.com/wippyai/staticassert/expand/internal/emit"
)

// ProbeTag is set while the generator type-checks a package, so previously
// generated files are left out of the check.
const ProbeTag = "staticassert_probe"

// Probe names a method that is absent from a subject type. Iface is the index
// of the interface argument it was taken from.
type Probe struct {
	Method string
	Iface  int
}

// Facts carries what the verifier learned about a directive. A nil *Facts
// means the directive is expanded from its syntax alone.
type Facts struct {
	// IsType classifies each argument of a mixed type/expression list.
	IsType []bool
	// Probes are the absent-method witnesses for not_impl_all/not_impl_any.
	Probes []Probe
	// Notes describe checks that were decided at generation time and have
	// no compile-time shape.
	Notes []string
	// Witness is the implemented interface chosen for impl_any, or -1.
	Witness int
}

// CfgShape is a file that must not be part of a successful build. The file
// is compiled only when Constraint holds, and then fails with Message.
type CfgShape struct {
	Constraint constraint.Expr
	Message    string
	Pos        token.Position
}

// Expander lowers directives for one generated file.
type Expander struct {
	e      *emit.Emitter
	cfgs   []CfgShape
	shapes int
}

// New returns an empty Expander.
func New() *Expander {
	return &Expander{e: emit.NewEmitter()}
}

// Decls returns the generated declarations.
func (x *Expander) Decls() []byte {
	return x.e.Copy()
}

// Shapes returns the number of directives lowered into Decls.
func (x *Expander) Shapes() int {
	return x.shapes
}

// UsesUnsafe reports whether Decls refers to package unsafe.
func (x *Expander) UsesUnsafe() bool {
	return x.e.UsesUnsafe()
}

// Cfgs returns the build-constraint files requested so far.
func (x *Expander) Cfgs() []CfgShape {
	return x.cfgs
}

// Reset clears all output.
func (x *Expander) Reset() {
	x.e.Reset()
	x.cfgs = nil
	x.shapes = 0
}

// Expand lowers a single directive. Directives that need type information
// (impl_any, sub_iface_any, not_impl_all, not_impl_any, and size or
// alignment lists whose operands could be types or values) fail without
// facts.
func (x *Expander) Expand(d *directive.Directive, facts *Facts) error {
	if err := x.check(d, facts); err != nil {
		return err
	}

	switch d.Verb {
	case directive.Cfg:
		x.cfg(d)
		return nil
	case directive.OneTag:
		x.oneTag(d)
		return nil
	}

	x.e.Comment(fmt.Sprintf("%s: %s", position(d.Pos), d))
	switch d.Verb {
	case directive.EqSize, directive.EqAlign, directive.EqSizeVal, directive.EqSizePtr,
		directive.LtSize, directive.LeSize, directive.GtSize, directive.GeSize,
		directive.NeAlign, directive.LtAlign, directive.LeAlign, directive.GtAlign, directive.GeAlign:
		x.layout(d, facts)
	case directive.ImplAll, directive.SuperIface:
		x.implAll(d, d.Args)
	case directive.ImplAny, directive.SubIfaceAny:
		x.implAll(d, d.Args[facts.Witness:facts.Witness+1])
	case directive.SuperIfaceAll:
		x.superAll(d)
	case directive.NotImplAll, directive.NotImplAny:
		x.notImpl(d, facts)
	case directive.ObjSafe:
		x.objSafe(d)
	case directive.EqType:
		x.eqType(d)
	case directive.NeType:
		x.neType(d)
	case directive.Fields:
		x.fields(d)
	case directive.FieldOffsets:
		x.fieldOffsets(d)
	case directive.Const, directive.ConstEq, directive.ConstNe:
		x.constant(d)
	}
	x.e.Blank()
	x.shapes++
	return nil
}

func (x *Expander) check(d *directive.Directive, facts *Facts) error {
	pos := position(d.Pos)
	switch d.Verb {
	case directive.ImplAny, directive.SubIfaceAny:
		if facts == nil {
			return errors.Unsupported(errors.PhaseExpand, pos, string(d.Verb), string(d.Verb)+" needs type information to choose a witness")
		}
		if facts.Witness < 0 || facts.Witness >= len(d.Args) {
			return errors.Violated(pos, string(d.Verb), errors.NoClause, "subject implements none of the listed interfaces")
		}
	case directive.NotImplAll, directive.NotImplAny:
		if facts == nil {
			return errors.Unsupported(errors.PhaseExpand, pos, string(d.Verb), "negative implementation checks need type information")
		}
		for _, p := range facts.Probes {
			if p.Iface < 0 || p.Iface >= len(d.Args) || !token.IsIdentifier(p.Method) {
				return errors.New(errors.PhaseExpand, errors.KindInvalidInput).
					Pos(pos).
					Verb(string(d.Verb)).
					Detail("bad probe %+v", p).
					Build()
			}
		}
	case directive.Cfg:
		if d.Constraint == nil {
			return errors.Malformed(pos, string(d.Verb), "missing build constraint")
		}
	}
	if d.Verb.HasSubject() && d.Subject == nil {
		return errors.Malformed(pos, string(d.Verb), "missing subject")
	}
	for i, a := range d.Args {
		if a.Kind != directive.KindTypeOrExpr || (facts != nil && i < len(facts.IsType)) {
			continue
		}
		if _, known := classify(a.Expr); !known {
			return errors.New(errors.PhaseExpand, errors.KindUnsupported).
				Pos(position(a.Pos)).
				Verb(string(d.Verb)).
				Clause(i).
				Detail("cannot tell whether %s is a type or a value without type information; enable verification or use eq_size_val", a.Text).
				Build()
		}
	}
	return nil
}

// gate emits the constant-boolean gate for cond. The const declaration
// rejects non-constant and non-boolean conditions; the map literal has a
// duplicate key when cond is false. The gated key starts its own line so
// gofmt cannot move the line directive away from it.
func (x *Expander) gate(cond string, pos token.Position) {
	at := emit.At(pos)
	x.e.Line("const _ = %s !(%s)", at, cond)
	x.e.Open("_ = map[bool]int")
	x.e.Line("false: 0,")
	x.e.Line("%s bool(%s): 1,", at, cond)
	x.e.Close()
}

// names collects every identifier a directive mentions, so that generated
// locals cannot shadow them.
func names(d *directive.Directive) map[string]bool {
	seen := make(map[string]bool)
	add := func(a *directive.Arg) {
		if a.Name != "" {
			seen[a.Name] = true
		}
		if a.Expr == nil {
			return
		}
		ast.Inspect(a.Expr, func(n ast.Node) bool {
			if id, ok := n.(*ast.Ident); ok {
				seen[id.Name] = true
			}
			return true
		})
	}
	if d.Subject != nil {
		add(d.Subject)
	}
	for i := range d.Args {
		add(&d.Args[i])
	}
	return seen
}

// fresh returns base, or base with a numeric suffix, whichever seen does not
// hold yet, and reserves it.
func fresh(seen map[string]bool, base string) string {
	name := base
	for i := 0; seen[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	seen[name] = true
	return name
}

// position formats pos with the base file name only.
func position(pos token.Position) string {
	if !pos.IsValid() {
		return "-"
	}
	return filepath.Base(pos.Filename) + ":" + strconv.Itoa(pos.Line) + ":" + strconv.Itoa(pos.Column)
}

// exprString renders an expression that has no source text of its own.
func exprString(e ast.Expr) string {
	return types.ExprString(e)
}
