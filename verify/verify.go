package verify

import (
	"fmt"
	"go/build"
	"go/token"
	"go/types"
	"runtime"

	"github.com/wippyai/staticassert/directive"
	"github.com/wippyai/staticassert/errors"
	"github.com/wippyai/staticassert/expand"
)

// Status is the outcome of verifying one directive.
type Status int

const (
	Holds Status = iota
	Violated
	Unresolved
)

func (s Status) String() string {
	switch s {
	case Holds:
		return "holds"
	case Violated:
		return "violated"
	case Unresolved:
		return "unresolved"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Finding is the verification result for one directive.
type Finding struct {
	Directive *directive.Directive
	// Facts feed the expander. They are set even when the directive fails.
	Facts  *expand.Facts
	Cause  error
	Detail string
	// Pos is the position of the failing clause, or of the directive.
	Pos    token.Position
	Status Status
	// Clause is the index of the failing argument, or errors.NoClause.
	Clause int
	// Warning marks findings that depend on the build context, which the
	// generator cannot know for certain.
	Warning bool
}

// Failed reports whether the finding should stop generation.
func (f *Finding) Failed() bool {
	return f.Status != Holds && !f.Warning
}

// Err converts a failed finding into a structured error. It returns nil
// when the directive holds.
func (f *Finding) Err() *errors.Error {
	pos := f.Pos.String()
	verb := string(f.Directive.Verb)
	switch f.Status {
	case Violated:
		return errors.Violated(pos, verb, f.Clause, f.Detail)
	case Unresolved:
		return errors.Unresolved(pos, verb, f.Clause, f.Cause)
	}
	return nil
}

// Report collects the findings of a package, in directive order.
type Report struct {
	Findings []*Finding
}

// Add appends f to the report.
func (r *Report) Add(f *Finding) {
	r.Findings = append(r.Findings, f)
}

// Failed reports whether any finding failed.
func (r *Report) Failed() bool {
	for _, f := range r.Findings {
		if f.Failed() {
			return true
		}
	}
	return false
}

// Count returns the number of findings with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, f := range r.Findings {
		if f.Status == s {
			n++
		}
	}
	return n
}

// Errors returns the failures that stop generation.
func (r *Report) Errors() []*errors.Error {
	var out []*errors.Error
	for _, f := range r.Findings {
		if f.Failed() {
			out = append(out, f.Err())
		}
	}
	return out
}

// Warnings returns the failed build-constraint checks.
func (r *Report) Warnings() []*errors.Error {
	var out []*errors.Error
	for _, f := range r.Findings {
		if f.Warning && f.Status != Holds {
			out = append(out, f.Err())
		}
	}
	return out
}

// Config holds verifier settings.
type Config struct {
	// Sizes computes sizes, alignments and offsets. Nil means the gc sizes
	// of Build.GOARCH.
	Sizes types.Sizes
	// Build is the context build constraints are evaluated in. Nil means
	// build.Default.
	Build *build.Context
}

// Verifier evaluates directives of one type-checked package.
type Verifier struct {
	fset  *token.FileSet
	pkg   *types.Package
	sizes types.Sizes
	build build.Context
	qual  types.Qualifier
}

// New returns a verifier for pkg, whose files were parsed into fset.
func New(fset *token.FileSet, pkg *types.Package, cfg *Config) *Verifier {
	v := &Verifier{
		fset:  fset,
		pkg:   pkg,
		build: build.Default,
		qual:  types.RelativeTo(pkg),
	}
	if cfg != nil {
		if cfg.Build != nil {
			v.build = *cfg.Build
		}
		v.sizes = cfg.Sizes
	}
	if v.sizes == nil {
		arch := v.build.GOARCH
		if arch == "" {
			arch = runtime.GOARCH
		}
		v.sizes = types.SizesFor("gc", arch)
	}
	if v.sizes == nil {
		v.sizes = types.SizesFor("gc", "amd64")
	}
	return v
}

// VerifyAll verifies ds in order.
func (v *Verifier) VerifyAll(ds []*directive.Directive) *Report {
	r := &Report{}
	for _, d := range ds {
		r.Add(v.Verify(d))
	}
	return r
}

// Verify evaluates a single directive.
func (v *Verifier) Verify(d *directive.Directive) *Finding {
	r := &run{
		v: v,
		d: d,
		f: &Finding{
			Directive: d,
			Facts:     &expand.Facts{Witness: -1},
			Pos:       d.Pos,
			Status:    Holds,
			Clause:    errors.NoClause,
		},
	}

	switch d.Verb {
	case directive.EqSize, directive.EqSizeVal, directive.EqSizePtr,
		directive.LtSize, directive.LeSize, directive.GtSize, directive.GeSize,
		directive.EqAlign, directive.NeAlign,
		directive.LtAlign, directive.LeAlign, directive.GtAlign, directive.GeAlign:
		r.layout()
	case directive.ImplAll, directive.SuperIface:
		r.implAll()
	case directive.ImplAny, directive.SubIfaceAny:
		r.implAny()
	case directive.SuperIfaceAll:
		r.superAll()
	case directive.NotImplAll, directive.NotImplAny:
		r.notImpl()
	case directive.ObjSafe:
		r.objSafe()
	case directive.EqType:
		r.eqType()
	case directive.NeType:
		r.neType()
	case directive.Fields:
		r.fields()
	case directive.FieldOffsets:
		r.fieldOffsets()
	case directive.Const, directive.ConstEq, directive.ConstNe:
		r.constant()
	case directive.Cfg:
		r.cfg()
	case directive.OneTag:
		r.oneTag()
	default:
		r.fail(errors.NoClause, "verb %s cannot be verified", d.Verb)
	}

	debugf("verify %s:%d %s: %s", d.Pos.Filename, d.Pos.Line, d.Verb, r.f.Status)
	return r.f
}

// run carries the state of one Verify call.
type run struct {
	v *Verifier
	d *directive.Directive
	f *Finding
}

// subjectClause selects the subject in fail and unresolved.
const subjectClause = -2

func (r *run) posOf(clause int) token.Position {
	switch {
	case clause == subjectClause && r.d.Subject != nil:
		return r.d.Subject.Pos
	case clause >= 0 && clause < len(r.d.Args):
		return r.d.Args[clause].Pos
	}
	return r.d.Pos
}

func (r *run) failed() bool {
	return r.f.Status != Holds
}

// fail records the first violation; later ones are ignored.
func (r *run) fail(clause int, format string, args ...any) {
	if r.failed() {
		return
	}
	r.f.Status = Violated
	r.f.Pos = r.posOf(clause)
	r.f.Clause = max(clause, errors.NoClause)
	r.f.Detail = fmt.Sprintf(format, args...)
}

func (r *run) unresolved(clause int, err error) {
	if r.failed() {
		return
	}
	r.f.Status = Unresolved
	r.f.Pos = r.posOf(clause)
	r.f.Clause = max(clause, errors.NoClause)
	r.f.Cause = err
}

// eval evaluates text in the scope of the directive's file.
func (r *run) eval(clause int, text string) (types.TypeAndValue, bool) {
	tv, err := types.Eval(r.v.fset, r.v.pkg, r.d.At, text)
	if err != nil {
		r.unresolved(clause, err)
		return tv, false
	}
	return tv, true
}

// typeOf evaluates an argument that must denote a type.
func (r *run) typeOf(clause int, text string) (types.Type, bool) {
	tv, ok := r.eval(clause, text)
	if !ok {
		return nil, false
	}
	if !tv.IsType() {
		r.fail(clause, "%s is not a type", text)
		return nil, false
	}
	return tv.Type, true
}

func (r *run) subject() (types.Type, bool) {
	return r.typeOf(subjectClause, r.d.Subject.Text)
}

func (r *run) str(t types.Type) string {
	return types.TypeString(t, r.v.qual)
}
