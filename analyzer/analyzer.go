// Package analyzer reports failed static assertions as vet diagnostics.
//
// The analyzer evaluates directives with the same verifier the generator
// uses, so editors and go vet point at the failing clause without running
// go generate first.
package analyzer

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/analysis"

	"github.com/wippyai/staticassert/directive"
	"github.com/wippyai/staticassert/errors"
	"github.com/wippyai/staticassert/verify"
)

// Analyzer checks //static: directives.
var Analyzer = &analysis.Analyzer{
	Name: "staticassert",
	Doc:  "report static assertion directives that do not hold",
	URL:  "https://pkg.go.dev/github.com/wippyai/staticassert/analyzer",
	Run:  run,
}

var (
	prefix = directive.DefaultPrefix
	// buildCfg enables cfg and one_tag checks, which are evaluated against
	// the host build context rather than the one vet was invoked with.
	buildCfg bool
)

func init() {
	Analyzer.Flags.StringVar(&prefix, "prefix", prefix, "directive prefix")
	Analyzer.Flags.BoolVar(&buildCfg, "cfg", false, "also check cfg and one_tag directives")
}

func run(pass *analysis.Pass) (any, error) {
	v := verify.New(pass.Fset, pass.Pkg, &verify.Config{Sizes: pass.TypesSizes})
	for _, f := range pass.Files {
		if ast.IsGenerated(f) {
			continue
		}
		for _, group := range f.Comments {
			for _, c := range group.List {
				if _, ok := directive.Match(c.Text, prefix); !ok {
					continue
				}
				check(pass, v, c)
			}
		}
	}
	return nil, nil
}

func check(pass *analysis.Pass, v *verify.Verifier, c *ast.Comment) {
	pos := pass.Fset.Position(c.Slash)
	d, err := directive.Parse(c.Text, pos, prefix)
	if err != nil {
		pass.Reportf(c.Slash, "malformed directive: %s", detail(err))
		return
	}
	d.At = c.Slash

	f := v.Verify(d)
	if f.Status == verify.Holds || (f.Warning && !buildCfg) {
		return
	}
	pass.Report(analysis.Diagnostic{
		Pos:      locate(c, pos, f.Pos),
		End:      c.End(),
		Category: f.Status.String(),
		Message:  message(f),
	})
}

// locate maps a clause position back into the file set. Directives are
// single-line comments, so the column offset is enough.
func locate(c *ast.Comment, at, clause token.Position) token.Pos {
	if clause.Line != at.Line || clause.Column < at.Column {
		return c.Slash
	}
	return c.Slash + token.Pos(clause.Column-at.Column)
}

func message(f *verify.Finding) string {
	var b strings.Builder
	b.WriteString(string(f.Directive.Verb))
	if f.Clause >= 0 {
		fmt.Fprintf(&b, " clause %d", f.Clause+1)
	}
	switch f.Status {
	case verify.Violated:
		b.WriteString(": ")
		b.WriteString(f.Detail)
	case verify.Unresolved:
		b.WriteString(": cannot resolve")
		if f.Cause != nil {
			b.WriteString(": ")
			b.WriteString(f.Cause.Error())
		}
	}
	return b.String()
}

// detail drops the position of a parse error, since the diagnostic
// carries its own.
func detail(err error) string {
	if e, ok := err.(*errors.Error); ok {
		return e.Detail
	}
	return err.Error()
}
