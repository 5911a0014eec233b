package staticassert

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/staticassert/errors"
)

const pkg = `package frames

//static:eq_size Header, [16]byte
//static:field_offsets Header: Magic == 0, Length == 8
type Header struct {
	Magic  uint32
	Flags  uint32
	Length uint64
}
`

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["go.mod"] = "module example.com/frames\n\ngo 1.21\n"
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	return dir
}

func TestGenerateAndCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the go command")
	}
	dir := writeModule(t, map[string]string{"frames.go": pkg})

	err := Check(testContext(t), dir, "./...")
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseWrite, Kind: errors.KindStale})

	res, err := Generate(testContext(t), dir, "./...")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "staticassert_frames.go")}, res.Written)

	assert.NoError(t, Check(testContext(t), dir, "./..."))
}

func TestGenerate_Config(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the go command")
	}
	dir := writeModule(t, map[string]string{
		"frames.go":          pkg,
		".staticassert.yaml": "output:\n  file_prefix: zz_assert_\n",
	})

	res, err := Generate(testContext(t), dir, "./...")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "zz_assert_frames.go")}, res.Written)
}

func TestGenerate_Violation(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the go command")
	}
	dir := writeModule(t, map[string]string{"frames.go": pkg + "\n//static:ge_size Header, [32]byte\n"})

	_, err := Generate(testContext(t), dir, "./...")
	var v *errors.ViolationsError
	require.True(t, stderrors.As(err, &v), "%v", err)
	require.Len(t, v.Errors, 1)
	assert.Equal(t, errors.KindViolated, v.Errors[0].Kind)
	assert.Contains(t, v.Errors[0].Pos, "frames.go:11:")
}

func TestGenerate_BadConfig(t *testing.T) {
	dir := writeModule(t, map[string]string{".staticassert.yaml": "nosuchkey: 1\n"})
	_, err := Generate(testContext(t), dir)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindMalformed})
}
