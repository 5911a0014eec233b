package expand

import (
	"go/ast"
	"go/types"

	"github.com/wippyai/staticassert/directive"
	"github.com/wippyai/staticassert/expand/internal/emit"
)

// layout lowers the size and alignment comparisons. Equality forms compare
// adjacent pairs; relational forms compare the first operand with each of
// the others.
func (x *Expander) layout(d *directive.Directive, facts *Facts) {
	ops := make([]string, len(d.Args))
	for i, a := range d.Args {
		ops[i] = x.measure(d.Verb, a, operandIsType(d, facts, i))
	}

	x.e.Open("func _()")
	switch d.Verb {
	case directive.EqSize, directive.EqSizeVal, directive.EqSizePtr, directive.EqAlign:
		for i := 1; i < len(ops); i++ {
			x.gate(ops[i-1]+" == "+ops[i], d.Args[i].Pos)
		}
	default:
		op := relation(d.Verb)
		for i := 1; i < len(ops); i++ {
			x.gate(ops[0]+" "+op+" "+ops[i], d.Args[i].Pos)
		}
	}
	x.e.Close()
}

// measure returns the constant expression for the size or alignment of one
// operand.
func (x *Expander) measure(v directive.Verb, a directive.Arg, isType bool) string {
	var operand string
	switch {
	case v == directive.EqSizePtr:
		// The operand of unsafe.Sizeof is not evaluated, so the pointer is
		// never dereferenced.
		operand = "*(" + a.Text + ")"
	case isType:
		operand = emit.Zero(a.Text)
	default:
		operand = a.Text
	}
	if v.IsAlign() {
		return x.e.Alignof(operand)
	}
	return x.e.Sizeof(operand)
}

func relation(v directive.Verb) string {
	switch v {
	case directive.LtSize, directive.LtAlign:
		return "<"
	case directive.LeSize, directive.LeAlign:
		return "<="
	case directive.GtSize, directive.GtAlign:
		return ">"
	case directive.GeSize, directive.GeAlign:
		return ">="
	case directive.NeAlign:
		return "!="
	}
	return "=="
}

// operandIsType classifies argument i. Facts from the verifier win; without
// them the syntax decides, which Expand only allows when it can.
func operandIsType(d *directive.Directive, facts *Facts, i int) bool {
	a := d.Args[i]
	switch a.Kind {
	case directive.KindType:
		return true
	case directive.KindExpr:
		return false
	}
	if facts != nil && i < len(facts.IsType) {
		return facts.IsType[i]
	}
	isType, _ := classify(a.Expr)
	return isType
}

// classify decides from syntax alone whether e denotes a type. Names,
// selectors and index expressions can denote either, so known is false for
// them unless the name is a predeclared type.
func classify(e ast.Expr) (isType, known bool) {
	switch e := e.(type) {
	case *ast.Ident:
		switch types.Universe.Lookup(e.Name).(type) {
		case *types.TypeName:
			return true, true
		case nil:
			return false, false
		}
		return false, true
	case *ast.ArrayType, *ast.StructType, *ast.FuncType, *ast.InterfaceType, *ast.MapType, *ast.ChanType:
		return true, true
	case *ast.SelectorExpr, *ast.IndexExpr, *ast.IndexListExpr:
		return false, false
	case *ast.StarExpr:
		return classify(e.X)
	case *ast.ParenExpr:
		return classify(e.X)
	}
	return false, true
}
