package generator

import (
	"go/ast"
	"go/build"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/staticassert/config"
	"github.com/wippyai/staticassert/directive"
	"github.com/wippyai/staticassert/errors"
	"github.com/wippyai/staticassert/expand"
	"github.com/wippyai/staticassert/verify"
)

// Header is the first line of every generated file.
const Header = "// Code generated by staticassert. DO NOT EDIT."

// Options controls a generator run.
type Options struct {
	// Dir is the directory patterns are resolved in. Empty means the
	// current directory.
	Dir string
	// Prefix selects //<Prefix>:<verb> directives.
	Prefix string
	// FilePrefix starts every generated file name.
	FilePrefix string
	// Tags are extra build tags used for loading and verification.
	Tags []string
	// GOOS and GOARCH override the target. Empty means the environment's.
	GOOS   string
	GOARCH string
	// Verify evaluates directives with go/types before expanding them.
	// Without it impl_any and the negative implementation checks fail.
	Verify bool
	// Tests includes _test.go files.
	Tests bool
	// Check compares the generated output with the files on disk and
	// writes nothing.
	Check bool
	// DryRun computes the output and writes nothing.
	DryRun bool
}

// OptionsFrom converts a loaded configuration into options.
func OptionsFrom(cfg config.Config) Options {
	return Options{
		Prefix:     cfg.Prefix,
		FilePrefix: cfg.Output.FilePrefix,
		Tags:       cfg.Tags,
		GOOS:       cfg.GOOS,
		GOARCH:     cfg.GOARCH,
		Verify:     cfg.Verifies(),
	}
}

// Result summarizes a run.
type Result struct {
	// Report holds the verifier findings, in directive order.
	Report *verify.Report
	// Outputs maps generated file paths to their content.
	Outputs map[string][]byte
	// Written, Unchanged and Removed are file paths, sorted.
	Written   []string
	Unchanged []string
	Removed   []string
	// Stale lists out-of-date files found in check mode.
	Stale []string
	// Warnings are failed build constraint checks.
	Warnings   []*errors.Error
	Directives int
}

func newResult() *Result {
	return &Result{Report: &verify.Report{}, Outputs: map[string][]byte{}}
}

func (r *Result) merge(o *Result) {
	r.Report.Findings = append(r.Report.Findings, o.Report.Findings...)
	for k, v := range o.Outputs {
		r.Outputs[k] = v
	}
	r.Written = append(r.Written, o.Written...)
	r.Unchanged = append(r.Unchanged, o.Unchanged...)
	r.Removed = append(r.Removed, o.Removed...)
	r.Stale = append(r.Stale, o.Stale...)
	r.Warnings = append(r.Warnings, o.Warnings...)
	r.Directives += o.Directives
}

func (r *Result) sort() {
	sort.Strings(r.Written)
	sort.Strings(r.Unchanged)
	sort.Strings(r.Removed)
	sort.Strings(r.Stale)
}

// Package is a parsed and type-checked package.
type Package struct {
	Fset  *token.FileSet
	Types *types.Package
	// Info may be nil; it is used to name imports whose package name
	// differs from the last element of their path.
	Info  *types.Info
	Sizes types.Sizes
	Files []*ast.File
}

// Generator turns directives into generated files.
type Generator struct {
	opts Options
}

// New returns a generator. Zero values in opts take the configuration
// defaults.
func New(opts Options) *Generator {
	def := config.Default()
	if opts.Prefix == "" {
		opts.Prefix = def.Prefix
	}
	if opts.FilePrefix == "" {
		opts.FilePrefix = def.Output.FilePrefix
	}
	return &Generator{opts: opts}
}

// buildContext is the context build constraints are verified in.
func (g *Generator) buildContext() *build.Context {
	ctx := build.Default
	if g.opts.GOOS != "" {
		ctx.GOOS = g.opts.GOOS
	}
	if g.opts.GOARCH != "" {
		ctx.GOARCH = g.opts.GOARCH
	}
	ctx.BuildTags = append([]string(nil), g.opts.Tags...)
	return &ctx
}

// Package generates the files for one loaded package and commits them.
func (g *Generator) Package(p *Package) (*Result, error) {
	res, err := g.plan(p)
	if err != nil {
		return res, err
	}
	if err := g.commit(p, res); err != nil {
		return res, err
	}
	res.sort()
	return res, nil
}

// plan scans, verifies and expands every file of p and renders the output
// in memory.
func (g *Generator) plan(p *Package) (*Result, error) {
	res := newResult()
	var (
		v    *verify.Verifier
		errs []*errors.Error
	)
	if g.opts.Verify {
		v = verify.New(p.Fset, p.Types, &verify.Config{Sizes: p.Sizes, Build: g.buildContext()})
	}

	x := expand.New()
	for _, f := range p.Files {
		name := p.Fset.File(f.Pos()).Name()
		if g.isOutput(name, f) {
			continue
		}

		ds, perrs := directive.Scan(p.Fset, f, g.opts.Prefix)
		for _, err := range perrs {
			errs = append(errs, asError(err))
		}
		if len(ds) == 0 {
			continue
		}
		res.Directives += len(ds)
		Logger().Debug("scanned file",
			zap.String("file", name),
			zap.Int("directives", len(ds)))

		x.Reset()
		for _, d := range ds {
			var facts *expand.Facts
			if v != nil {
				finding := v.Verify(d)
				res.Report.Add(finding)
				switch {
				case finding.Failed():
					errs = append(errs, finding.Err())
					continue
				case finding.Warning && finding.Status != verify.Holds:
					res.Warnings = append(res.Warnings, finding.Err())
				}
				facts = finding.Facts
			}
			if err := x.Expand(d, facts); err != nil {
				errs = append(errs, asError(err))
			}
		}

		outs, err := g.render(p, f, name, x)
		if err != nil {
			errs = append(errs, asError(err))
			continue
		}
		for path, data := range outs {
			res.Outputs[path] = data
		}
	}

	if len(errs) > 0 {
		return res, errors.NewViolationsError(errs)
	}
	return res, nil
}

// isOutput reports whether f was written by this generator.
func (g *Generator) isOutput(name string, f *ast.File) bool {
	if !strings.HasPrefix(filepath.Base(name), g.opts.FilePrefix) {
		return false
	}
	for _, c := range f.Comments {
		if c.Pos() > f.Package {
			break
		}
		for _, l := range c.List {
			if l.Text == Header {
				return true
			}
		}
	}
	return false
}

// asError converts err into a structured error, keeping its text.
func asError(err error) *errors.Error {
	if e, ok := err.(*errors.Error); ok {
		return e
	}
	return errors.Wrap(errors.PhaseExpand, errors.KindInvalidInput, err, "")
}
