package generator

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/wippyai/staticassert/errors"
	"github.com/wippyai/staticassert/expand"
)

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo | packages.NeedTypesSizes

// Run loads the packages matching patterns and generates their files.
// Packages are loaded with the probe build tag, so previously generated
// files never take part in type checking.
func (g *Generator) Run(ctx context.Context, patterns ...string) (*Result, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	pkgs, err := g.load(ctx, patterns)
	if err != nil {
		return nil, err
	}

	res := newResult()
	var violations []*errors.Error
	seen := map[string]bool{}
	for _, lp := range pkgs {
		p := &Package{
			Fset:  lp.Fset,
			Types: lp.Types,
			Info:  lp.TypesInfo,
			Sizes: lp.TypesSizes,
		}
		// Test variants repeat the files of the package under test.
		for _, f := range lp.Syntax {
			name := lp.Fset.File(f.Pos()).Name()
			if !seen[name] {
				seen[name] = true
				p.Files = append(p.Files, f)
			}
		}
		if len(p.Files) == 0 {
			continue
		}

		Logger().Debug("generating package",
			zap.String("package", lp.PkgPath),
			zap.Int("files", len(p.Files)))

		pr, err := g.Package(p)
		if pr != nil {
			res.merge(pr)
		}
		if err != nil {
			var v *errors.ViolationsError
			if stderrors.As(err, &v) {
				violations = append(violations, v.Errors...)
				continue
			}
			return res, err
		}
	}
	res.sort()

	if len(violations) > 0 {
		return res, errors.NewViolationsError(violations)
	}
	return res, nil
}

func (g *Generator) load(ctx context.Context, patterns []string) ([]*packages.Package, error) {
	tags := append([]string{expand.ProbeTag}, g.opts.Tags...)
	cfg := &packages.Config{
		Mode:       loadMode,
		Context:    ctx,
		Dir:        g.opts.Dir,
		Tests:      g.opts.Tests,
		BuildFlags: []string{"-tags=" + strings.Join(tags, ",")},
		Logf:       debugf,
	}
	if g.opts.GOOS != "" || g.opts.GOARCH != "" {
		cfg.Env = os.Environ()
		if g.opts.GOOS != "" {
			cfg.Env = append(cfg.Env, "GOOS="+g.opts.GOOS)
		}
		if g.opts.GOARCH != "" {
			cfg.Env = append(cfg.Env, "GOARCH="+g.opts.GOARCH)
		}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindIO, err, "cannot load packages")
	}

	var errs []*errors.Error
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs = append(errs, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Pos(e.Pos).
				Detail("%s", e.Msg).
				Build())
		}
	})
	if len(errs) > 0 {
		return nil, errors.NewViolationsError(errs)
	}
	if len(pkgs) == 0 {
		return nil, errors.NotFound(errors.PhaseLoad, "package", fmt.Sprint(patterns))
	}
	return pkgs, nil
}
