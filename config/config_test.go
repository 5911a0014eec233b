package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/staticassert/errors"
)

func write(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := write(t, t.TempDir(), `
prefix: assert
tags: [purego, integration]
goarch: arm64
verify: false
log_level: debug
output:
  file_prefix: zz_assert_
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "assert", cfg.Prefix)
	assert.Equal(t, []string{"purego", "integration"}, cfg.Tags)
	assert.Equal(t, "arm64", cfg.GOARCH)
	assert.False(t, cfg.Verifies())
	assert.Equal(t, zapcore.DebugLevel, cfg.Level())
	assert.Equal(t, "zz_assert_", cfg.Output.FilePrefix)
	assert.NoError(t, cfg.Validate())
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := write(t, t.TempDir(), "tags: [purego]\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Prefix, cfg.Prefix)
	assert.Equal(t, DefaultFilePrefix, cfg.Output.FilePrefix)
	assert.True(t, cfg.Verifies())
}

func TestLoadEmpty(t *testing.T) {
	cfg, err := Load(write(t, t.TempDir(), ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindIO})

	_, err = Load(write(t, t.TempDir(), "prefx: typo\n"))
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindMalformed})

	_, err = Load(write(t, t.TempDir(), "tags: [unterminated\n"))
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindMalformed})
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, path, err := Discover(nested)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Default(), cfg)

	want := write(t, root, "prefix: check\n")
	cfg, path, err = Discover(nested)
	require.NoError(t, err)
	assert.Equal(t, want, path)
	assert.Equal(t, "check", cfg.Prefix)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"default", func(*Config) {}, ""},
		{"bad_prefix", func(c *Config) { c.Prefix = "my-prefix" }, "not an identifier"},
		{"reserved_prefix", func(c *Config) { c.Prefix = "go" }, "reserved"},
		{"reserved_line_prefix", func(c *Config) { c.Prefix = "line" }, "reserved"},
		{"empty_output", func(c *Config) { c.Output.FilePrefix = "" }, "must be set"},
		{"output_path", func(c *Config) { c.Output.FilePrefix = "gen/x_" }, "path separators"},
		{"output_ignored", func(c *Config) { c.Output.FilePrefix = "_gen_" }, "ignore"},
		{"goarch", func(c *Config) { c.GOARCH = "z80" }, "unknown goarch"},
		{"tag", func(c *Config) { c.Tags = []string{"a b"} }, "invalid build tag"},
		{"log_level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"version", func(c *Config) { c.Version = 2 }, "unsupported config version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindInvalidInput})
		})
	}
}

func TestLevelFallback(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "nonsense"
	assert.Equal(t, zapcore.InfoLevel, cfg.Level())
}
