package generator

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/format"
	"go/parser"
	"go/token"
	"path"
	"path/filepath"
	"strconv"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/wippyai/staticassert/errors"
	"github.com/wippyai/staticassert/expand"
)

// importSpec is an import copied from the source file.
type importSpec struct {
	name string
	path string
}

// render produces the generated files for one source file: the main file
// when any directive was lowered into declarations, and one file per
// build-constraint shape.
func (g *Generator) render(p *Package, src *ast.File, name string, x *expand.Expander) (map[string][]byte, error) {
	out := map[string][]byte{}
	dir, base := filepath.Split(name)
	fileConstraint, err := buildConstraint(src)
	if err != nil {
		return nil, errors.New(errors.PhaseRender, errors.KindMalformed).
			Pos(name).
			Cause(err).
			Detail("cannot parse //go:build line").
			Build()
	}

	if x.Shapes() > 0 {
		target := filepath.Join(dir, g.opts.FilePrefix+base)
		data, err := renderMain(target, src, p, fileConstraint, x)
		if err != nil {
			return nil, err
		}
		out[target] = data
	}

	for i, s := range x.Cfgs() {
		target := filepath.Join(dir, fmt.Sprintf("%scfg%d_%s", g.opts.FilePrefix, i+1, base))
		data, err := renderCfg(target, src, fileConstraint, s)
		if err != nil {
			return nil, err
		}
		out[target] = data
	}
	return out, nil
}

// buildConstraint returns the //go:build expression of f, or nil.
func buildConstraint(f *ast.File) (constraint.Expr, error) {
	for _, group := range f.Comments {
		if group.Pos() > f.Package {
			break
		}
		for _, c := range group.List {
			if constraint.IsGoBuild(c.Text) {
				return constraint.Parse(c.Text)
			}
		}
	}
	return nil, nil
}

func preamble(b *bytes.Buffer, guard constraint.Expr, pkg string) {
	b.WriteString(Header)
	b.WriteString("\n\n//go:build ")
	b.WriteString(guard.String())
	b.WriteString("\n\npackage ")
	b.WriteString(pkg)
	b.WriteString("\n\n")
}

// imports lists the imports of src that generated code may refer to. An
// explicit name is given whenever the package name differs from the last
// path element, so usage can be detected by name.
func imports(src *ast.File, p *Package) []importSpec {
	var out []importSpec
	for _, spec := range src.Imports {
		ip, err := strconv.Unquote(spec.Path.Value)
		if err != nil || ip == "C" {
			continue
		}
		s := importSpec{path: ip}
		switch {
		case spec.Name != nil:
			if spec.Name.Name == "_" || spec.Name.Name == "." {
				continue
			}
			s.name = spec.Name.Name
		case p.Info != nil:
			if pn := pkgNameOf(p.Info, spec); pn != nil && pn.Imported().Name() != path.Base(ip) {
				s.name = pn.Imported().Name()
			}
		}
		out = append(out, s)
	}
	return out
}

func renderMain(target string, src *ast.File, p *Package, fileConstraint constraint.Expr, x *expand.Expander) ([]byte, error) {
	specs := imports(src, p)

	var b bytes.Buffer
	preamble(&b, expand.Guard(fileConstraint, nil), src.Name.Name)
	if len(specs) > 0 {
		b.WriteString("import (\n")
		for _, s := range specs {
			if s.name != "" {
				fmt.Fprintf(&b, "\t%s %q\n", s.name, s.path)
			} else {
				fmt.Fprintf(&b, "\t%q\n", s.path)
			}
		}
		b.WriteString(")\n\n")
	}
	b.Write(x.Decls())

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, target, b.Bytes(), parser.ParseComments)
	if err != nil {
		return nil, errors.New(errors.PhaseRender, errors.KindInvalidInput).
			Pos(target).
			Cause(err).
			Detail("generated code does not parse").
			Build()
	}

	for _, s := range specs {
		if !astutil.UsesImport(f, s.path) {
			astutil.DeleteNamedImport(fset, f, s.name, s.path)
		}
	}
	if x.UsesUnsafe() {
		astutil.AddImport(fset, f, "unsafe")
	}

	var out bytes.Buffer
	if err := format.Node(&out, fset, f); err != nil {
		return nil, errors.New(errors.PhaseRender, errors.KindInvalidInput).
			Pos(target).
			Cause(err).
			Detail("cannot format generated code").
			Build()
	}
	return out.Bytes(), nil
}

func renderCfg(target string, src *ast.File, fileConstraint constraint.Expr, s expand.CfgShape) ([]byte, error) {
	var b bytes.Buffer
	preamble(&b, expand.Guard(fileConstraint, s.Constraint), src.Name.Name)
	b.Write(s.Body())

	out, err := format.Source(b.Bytes())
	if err != nil {
		return nil, errors.New(errors.PhaseRender, errors.KindInvalidInput).
			Pos(target).
			Cause(err).
			Detail("cannot format generated code").
			Build()
	}
	return out, nil
}
