package generator

import (
	"context"
	stderrors "errors"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/staticassert/config"
	"github.com/wippyai/staticassert/errors"
)

const shapes = `package shapes

import (
	"io"
	"strings"
)

//go:generate staticassert

//static:eq_size [8]byte, Point, uint64
//static:impl_all *Buffer: io.Reader, io.Writer
//static:not_impl_any Point: io.Reader
//static:fields Point: X, Y
//static:const Version >= 2
type Point struct {
	X, Y int32
}

type Buffer struct{ strings.Builder }

func (b *Buffer) Read(p []byte) (int, error) { return 0, io.EOF }

const Version = 2
`

type fixture struct {
	dir string
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	fx := &fixture{dir: t.TempDir()}
	for name, src := range files {
		fx.write(t, name, src)
	}
	return fx
}

func (fx *fixture) path(name string) string {
	return filepath.Join(fx.dir, name)
}

func (fx *fixture) write(t *testing.T, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(fx.path(name), []byte(src), 0o644))
}

func (fx *fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(fx.path(name))
	require.NoError(t, err)
	return string(data)
}

// check parses and type-checks the .go files of the fixture directory.
// Generated files are included only when withOutput is set.
func (fx *fixture) check(t *testing.T, withOutput bool) (*Package, error) {
	t.Helper()
	entries, err := os.ReadDir(fx.dir)
	require.NoError(t, err)

	p := &Package{
		Fset:  token.NewFileSet(),
		Sizes: types.SizesFor("gc", "amd64"),
		Info: &types.Info{
			Defs:      map[*ast.Ident]types.Object{},
			Uses:      map[*ast.Ident]types.Object{},
			Implicits: map[ast.Node]types.Object{},
		},
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".go") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if !withOutput && strings.HasPrefix(name, config.DefaultFilePrefix) {
			continue
		}
		f, err := parser.ParseFile(p.Fset, fx.path(name), nil, parser.ParseComments)
		require.NoError(t, err)
		p.Files = append(p.Files, f)
	}

	conf := types.Config{Importer: importer.Default(), Sizes: p.Sizes}
	p.Types, err = conf.Check("example.com/shapes", p.Fset, p.Files, p.Info)
	return p, err
}

func (fx *fixture) load(t *testing.T) *Package {
	t.Helper()
	p, err := fx.check(t, false)
	require.NoError(t, err)
	return p
}

func TestPackage_Generates(t *testing.T) {
	fx := newFixture(t, map[string]string{"shapes.go": shapes})
	g := New(Options{Verify: true})

	res, err := g.Package(fx.load(t))
	require.NoError(t, err)
	assert.Equal(t, 5, res.Directives)
	assert.Equal(t, []string{fx.path("staticassert_shapes.go")}, res.Written)
	assert.Len(t, res.Report.Findings, 5)
	assert.False(t, res.Report.Failed())

	out := fx.read(t, "staticassert_shapes.go")
	assert.True(t, strings.HasPrefix(out, Header+"\n"))
	assert.Contains(t, out, "//go:build !staticassert_probe\n")
	assert.Contains(t, out, "package shapes\n")
	assert.Contains(t, out, `"io"`)
	assert.Contains(t, out, `"unsafe"`)
	assert.NotContains(t, out, `"strings"`, "unused imports are pruned")
	assert.Contains(t, out, "/*line shapes.go:")
	assert.Contains(t, out, "absent_Read")

	_, err = fx.check(t, true)
	assert.NoError(t, err, out)
}

func TestPackage_Idempotent(t *testing.T) {
	fx := newFixture(t, map[string]string{"shapes.go": shapes})
	g := New(Options{Verify: true})

	_, err := g.Package(fx.load(t))
	require.NoError(t, err)
	res, err := g.Package(fx.load(t))
	require.NoError(t, err)
	assert.Empty(t, res.Written)
	assert.Equal(t, []string{fx.path("staticassert_shapes.go")}, res.Unchanged)
}

func TestPackage_Violation(t *testing.T) {
	fx := newFixture(t, map[string]string{"shapes.go": shapes + "\n//static:eq_size uint32, uint64\n"})
	g := New(Options{Verify: true})

	res, err := g.Package(fx.load(t))
	require.Error(t, err)
	var v *errors.ViolationsError
	require.True(t, stderrors.As(err, &v))
	require.Len(t, v.Errors, 1)
	assert.Equal(t, errors.KindViolated, v.Errors[0].Kind)
	assert.Contains(t, v.Errors[0].Pos, "shapes.go:")
	assert.True(t, res.Report.Failed())

	_, statErr := os.Stat(fx.path("staticassert_shapes.go"))
	assert.True(t, os.IsNotExist(statErr), "nothing is written when an assertion fails")
}

func TestPackage_UnverifiedViolationFailsTypeCheck(t *testing.T) {
	src := strings.Replace(shapes, "//static:eq_size [8]byte, Point, uint64\n", "//static:eq_size [8]byte, uint64\n", 1)
	src = strings.Replace(src, "//static:not_impl_any Point: io.Reader\n", "//static:eq_size int32, uint64\n", 1)
	fx := newFixture(t, map[string]string{"shapes.go": src})
	g := New(Options{Verify: false})

	_, err := g.Package(fx.load(t))
	require.NoError(t, err)

	_, err = fx.check(t, true)
	require.Error(t, err)
	var te types.Error
	require.True(t, stderrors.As(err, &te))
	pos := te.Fset.Position(te.Pos)
	assert.Equal(t, "shapes.go", filepath.Base(pos.Filename))
	assert.Equal(t, 12, pos.Line)
}

func TestPackage_UserImportsUnsafe(t *testing.T) {
	fx := newFixture(t, map[string]string{"shapes.go": `package shapes

import "unsafe"

//static:const unsafe.Sizeof(Point{}) == 8, unsafe.Alignof(Point{}.X) == 4
type Point struct {
	X, Y int32
}

var _ = unsafe.Sizeof(Point{})
`})
	res, err := New(Options{Verify: true}).Package(fx.load(t))
	require.NoError(t, err)
	require.Len(t, res.Written, 1)

	out := fx.read(t, "staticassert_shapes.go")
	assert.Contains(t, out, `"unsafe"`)
	_, err = fx.check(t, true)
	assert.NoError(t, err, out)
}

func TestPackage_NeedsVerifier(t *testing.T) {
	fx := newFixture(t, map[string]string{"shapes.go": shapes})
	_, err := New(Options{}).Package(fx.load(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseExpand, Kind: errors.KindUnsupported})
}

func TestPackage_Malformed(t *testing.T) {
	fx := newFixture(t, map[string]string{"shapes.go": shapes + "\n//static:eq_size uint32\n"})
	_, err := New(Options{Verify: true}).Package(fx.load(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindMalformed})
}

func TestPackage_CfgFiles(t *testing.T) {
	fx := newFixture(t, map[string]string{"shapes.go": `//go:build !windows

package shapes

//static:cfg "needs a 64-bit target" amd64 || arm64
//static:one_tag purego, asm
`})
	g := New(Options{Verify: true, GOOS: "linux", GOARCH: "386"})

	res, err := g.Package(fx.load(t))
	require.NoError(t, err)
	assert.Len(t, res.Warnings, 2)
	assert.Equal(t, []string{
		fx.path("staticassert_cfg1_shapes.go"),
		fx.path("staticassert_cfg2_shapes.go"),
		fx.path("staticassert_cfg3_shapes.go"),
	}, res.Written)

	cfg1 := fx.read(t, "staticassert_cfg1_shapes.go")
	assert.Contains(t, cfg1, "//go:build !staticassert_probe && !windows && !(amd64 || arm64)\n")
	assert.Contains(t, cfg1, `"static assertion failed: needs a 64-bit target"`)
	assert.Contains(t, fx.read(t, "staticassert_cfg2_shapes.go"), "&& !(purego || asm)\n")
	assert.Contains(t, fx.read(t, "staticassert_cfg3_shapes.go"), "&& purego && asm\n")

	_, err = os.Stat(fx.path("staticassert_shapes.go"))
	assert.True(t, os.IsNotExist(err), "no main file without declarations")
}

func TestPackage_RemovesStale(t *testing.T) {
	fx := newFixture(t, map[string]string{"shapes.go": shapes})
	g := New(Options{Verify: true})
	_, err := g.Package(fx.load(t))
	require.NoError(t, err)

	fx.write(t, "staticassert_gone.go", Header+"\n\npackage shapes\n")
	fx.write(t, "staticassert_manual.go", "package shapes\n")
	fx.write(t, "shapes.go", "package shapes\n\ntype Point struct{ X, Y int32 }\n")

	res, err := g.Package(fx.load(t))
	require.NoError(t, err)
	assert.Equal(t, []string{fx.path("staticassert_gone.go"), fx.path("staticassert_shapes.go")}, res.Removed)
	assert.FileExists(t, fx.path("staticassert_manual.go"))
}

func TestPackage_KeepsOutputOfUnloadedFiles(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"shapes.go":      "package shapes\n",
		"shapes_test.go": "package shapes\n",
	})
	fx.write(t, "staticassert_shapes_test.go", Header+"\n\npackage shapes\n")

	p := fx.load(t)
	p.Files = p.Files[:1]
	res, err := New(Options{Verify: true}).Package(p)
	require.NoError(t, err)
	assert.Empty(t, res.Removed)
	assert.FileExists(t, fx.path("staticassert_shapes_test.go"))
}

func TestPackage_Check(t *testing.T) {
	fx := newFixture(t, map[string]string{"shapes.go": shapes})
	_, err := New(Options{Verify: true}).Package(fx.load(t))
	require.NoError(t, err)
	before := fx.read(t, "staticassert_shapes.go")

	fx.write(t, "shapes.go", strings.Replace(shapes, "//static:const Version >= 2\n", "//static:const Version >= 1\n", 1))
	res, err := New(Options{Verify: true, Check: true}).Package(fx.load(t))
	require.NoError(t, err)
	assert.Equal(t, []string{fx.path("staticassert_shapes.go")}, res.Stale)
	assert.Empty(t, res.Written)
	assert.Equal(t, before, fx.read(t, "staticassert_shapes.go"))
}

func TestPackage_DryRun(t *testing.T) {
	fx := newFixture(t, map[string]string{"shapes.go": shapes})
	res, err := New(Options{Verify: true, DryRun: true}).Package(fx.load(t))
	require.NoError(t, err)
	assert.Len(t, res.Outputs, 1)
	assert.Empty(t, res.Written)
	_, err = os.Stat(fx.path("staticassert_shapes.go"))
	assert.True(t, os.IsNotExist(err))
}

func TestPackage_CustomPrefixes(t *testing.T) {
	src := strings.ReplaceAll(shapes, "//static:", "//check:")
	fx := newFixture(t, map[string]string{"shapes.go": src})
	res, err := New(Options{Verify: true, Prefix: "check", FilePrefix: "zz_"}).Package(fx.load(t))
	require.NoError(t, err)
	assert.Equal(t, 5, res.Directives)
	assert.Equal(t, []string{fx.path("zz_shapes.go")}, res.Written)
}

func TestOptionsFrom(t *testing.T) {
	cfg := config.Default()
	off := false
	cfg.Verify = &off
	cfg.Tags = []string{"purego"}
	opts := OptionsFrom(cfg)
	assert.False(t, opts.Verify)
	assert.Equal(t, "static", opts.Prefix)
	assert.Equal(t, config.DefaultFilePrefix, opts.FilePrefix)
	assert.Equal(t, []string{"purego"}, opts.Tags)
}

// TestRun loads a module through the go command.
func TestRun(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the go command")
	}
	fx := newFixture(t, map[string]string{
		"go.mod":    "module example.com/shapes\n\ngo 1.21\n",
		"shapes.go": shapes,
	})
	g := New(Options{Dir: fx.dir, Verify: true})

	res, err := g.Run(context.Background(), "./...")
	require.NoError(t, err)
	assert.Len(t, res.Written, 1)

	// A stale output that no longer compiles must not block regeneration.
	fx.write(t, "shapes.go", strings.Replace(shapes, "//static:fields Point: X, Y\n", "", 1))
	fx.write(t, "staticassert_shapes.go", Header+"\n\n//go:build !staticassert_probe\n\npackage shapes\n\nvar _ = undefined\n")
	res, err = g.Run(context.Background(), "./...")
	require.NoError(t, err)
	assert.Len(t, res.Written, 1)
	assert.NotContains(t, fx.read(t, "staticassert_shapes.go"), "undefined")
}
