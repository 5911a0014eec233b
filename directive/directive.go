package directive

import (
	"go/ast"
	"go/build/constraint"
	"go/token"
	"sort"
)

// DefaultPrefix is the directive prefix used when none is configured.
const DefaultPrefix = "static"

// Verb names an assertion form.
type Verb string

const (
	EqSize    Verb = "eq_size"
	EqSizeVal Verb = "eq_size_val"
	EqSizePtr Verb = "eq_size_ptr"
	LtSize    Verb = "lt_size"
	LeSize    Verb = "le_size"
	GtSize    Verb = "gt_size"
	GeSize    Verb = "ge_size"
	EqAlign   Verb = "eq_align"
	NeAlign   Verb = "ne_align"
	LtAlign   Verb = "lt_align"
	LeAlign   Verb = "le_align"
	GtAlign   Verb = "gt_align"
	GeAlign   Verb = "ge_align"

	ImplAll    Verb = "impl_all"
	ImplAny    Verb = "impl_any"
	NotImplAll Verb = "not_impl_all"
	NotImplAny Verb = "not_impl_any"
	SuperIface Verb = "super_iface"
	ObjSafe    Verb = "obj_safe"

	// SuperIfaceAll takes the interface the others must all extend.
	SuperIfaceAll Verb = "super_iface_all"
	SubIfaceAny   Verb = "sub_iface_any"

	EqType Verb = "eq_type"
	NeType Verb = "ne_type"

	Fields       Verb = "fields"
	FieldOffsets Verb = "field_offsets"

	Const   Verb = "const"
	ConstEq Verb = "const_eq"
	ConstNe Verb = "const_ne"

	Cfg    Verb = "cfg"
	OneTag Verb = "one_tag"
)

// ArgKind says how a list element is parsed.
type ArgKind int

const (
	KindType       ArgKind = iota // a Go type expression
	KindExpr                      // a Go expression
	KindTypeOrExpr                // classified later by the resolver
	KindIdent                     // a field name
	KindOffset                    // "field == expr"
	KindTag                       // a build tag
	KindConstraint                // a whole build constraint expression
)

type form struct {
	subject bool
	arg     ArgKind
	min     int
	max     int // 0 means unbounded
}

var forms = map[Verb]form{
	EqSize:    {arg: KindTypeOrExpr, min: 2},
	EqSizeVal: {arg: KindExpr, min: 2},
	EqSizePtr: {arg: KindExpr, min: 2, max: 2},
	LtSize:    {arg: KindTypeOrExpr, min: 2},
	LeSize:    {arg: KindTypeOrExpr, min: 2},
	GtSize:    {arg: KindTypeOrExpr, min: 2},
	GeSize:    {arg: KindTypeOrExpr, min: 2},
	EqAlign:   {arg: KindTypeOrExpr, min: 2},
	NeAlign:   {arg: KindTypeOrExpr, min: 2},
	LtAlign:   {arg: KindTypeOrExpr, min: 2},
	LeAlign:   {arg: KindTypeOrExpr, min: 2},
	GtAlign:   {arg: KindTypeOrExpr, min: 2},
	GeAlign:   {arg: KindTypeOrExpr, min: 2},

	ImplAll:    {subject: true, arg: KindType, min: 1},
	ImplAny:    {subject: true, arg: KindType, min: 1},
	NotImplAll: {subject: true, arg: KindType, min: 1},
	NotImplAny: {subject: true, arg: KindType, min: 1},
	SuperIface: {subject: true, arg: KindType, min: 1},
	ObjSafe:    {arg: KindType, min: 1},

	SuperIfaceAll: {subject: true, arg: KindType, min: 1},
	SubIfaceAny:   {subject: true, arg: KindType, min: 1},

	EqType: {arg: KindType, min: 2},
	NeType: {arg: KindType, min: 2},

	Fields:       {subject: true, arg: KindIdent, min: 1},
	FieldOffsets: {subject: true, arg: KindOffset, min: 1},

	Const:   {arg: KindExpr, min: 1},
	ConstEq: {arg: KindExpr, min: 2},
	ConstNe: {arg: KindExpr, min: 2},

	Cfg:    {arg: KindConstraint, min: 1, max: 1},
	OneTag: {arg: KindTag, min: 1},
}

// Verbs returns every known verb in sorted order.
func Verbs() []Verb {
	out := make([]Verb, 0, len(forms))
	for v := range forms {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Known reports whether v is a recognized verb.
func (v Verb) Known() bool {
	_, ok := forms[v]
	return ok
}

// IsAlign reports whether v compares alignments rather than sizes.
func (v Verb) IsAlign() bool {
	switch v {
	case EqAlign, NeAlign, LtAlign, LeAlign, GtAlign, GeAlign:
		return true
	}
	return false
}

// HasSubject reports whether v takes a "Subject: list" argument.
func (v Verb) HasSubject() bool {
	return forms[v].subject
}

// Arg is one parsed argument.
type Arg struct {
	// Expr is the parsed type or expression. For KindOffset it is the
	// expected offset; nil for identifiers and tags.
	Expr ast.Expr
	Text string
	// Name is the field name for KindIdent and KindOffset, the tag for KindTag.
	Name string
	Pos  token.Position
	Kind ArgKind
}

// Directive is a parsed assertion.
type Directive struct {
	Subject *Arg
	// Constraint is set for cfg directives.
	Constraint constraint.Expr
	Verb       Verb
	Raw        string
	// Message is the optional cfg failure message.
	Message string
	Args    []Arg
	Pos     token.Position
	// At is the comment position in the file set the directive was scanned
	// from, or token.NoPos for directives parsed from text.
	At token.Pos
}

// String returns the directive as written, without the comment prefix.
func (d *Directive) String() string {
	if d.Raw == "" {
		return string(d.Verb)
	}
	return string(d.Verb) + " " + d.Raw
}
