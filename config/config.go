// Package config loads the optional .staticassert.yaml file that tunes the
// generator for a module or directory tree.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"go/token"
	"go/types"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/staticassert/directive"
	"github.com/wippyai/staticassert/errors"
)

// FileName is the configuration file looked up from the working directory
// towards the file system root.
const FileName = ".staticassert.yaml"

// DefaultFilePrefix starts the name of every generated file.
const DefaultFilePrefix = "staticassert_"

// OutputSection controls generated files.
type OutputSection struct {
	// FilePrefix is prepended to the source file name, so that suffixes
	// like _test, _linux or _amd64 keep their meaning.
	FilePrefix string `yaml:"file_prefix"`
}

// Config is the generator configuration.
type Config struct {
	// Version is the file format version (optional, currently always 1).
	Version int `yaml:"version,omitempty"`

	// Prefix selects directives of the form //<prefix>:<verb>.
	Prefix string `yaml:"prefix"`

	// Tags are extra build tags used when loading packages.
	Tags []string `yaml:"tags"`

	// GOOS and GOARCH override the target used for verification. Empty
	// means the environment's target.
	GOOS   string `yaml:"goos"`
	GOARCH string `yaml:"goarch"`

	// Verify enables generation-time verification. Nil means enabled.
	Verify *bool `yaml:"verify"`

	// LogLevel is a zap level name: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	Output OutputSection `yaml:"output"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Version:  1,
		Prefix:   directive.DefaultPrefix,
		LogLevel: "info",
		Output:   OutputSection{FilePrefix: DefaultFilePrefix},
	}
}

// Load reads a configuration file. Unset values keep their defaults and
// unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, errors.IO(errors.PhaseConfig, path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return cfg, errors.New(errors.PhaseConfig, errors.KindMalformed).
			Pos(path).
			Cause(err).
			Detail("failed to parse config file").
			Build()
	}
	return cfg, nil
}

// Find looks for FileName in dir and its parents and returns the first
// match.
func Find(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		path := filepath.Join(dir, FileName)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Discover loads the nearest configuration file above dir. It returns the
// defaults and an empty path when there is none.
func Discover(dir string) (Config, string, error) {
	path, ok := Find(dir)
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Verifies reports whether generation-time verification is enabled.
func (c Config) Verifies() bool {
	return c.Verify == nil || *c.Verify
}

// Level returns the parsed log level. Invalid names map to info.
func (c Config) Level() zapcore.Level {
	l, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// Validate checks the configuration.
//
// Ensures:
//   - Prefix is an identifier other than the reserved "go" and "line"
//   - the output prefix is a plain file name part that the go command does
//     not ignore
//   - GOARCH, if set, is known to the gc compiler
//   - LogLevel, if set, is a zap level
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf(format, args...))
	}

	if c.Version > 1 {
		return invalid("unsupported config version %d", c.Version)
	}
	if c.Prefix == "go" || c.Prefix == "line" {
		return invalid("prefix %q is reserved", c.Prefix)
	}
	if !token.IsIdentifier(c.Prefix) {
		return invalid("prefix %q is not an identifier", c.Prefix)
	}

	fp := c.Output.FilePrefix
	switch {
	case fp == "":
		return invalid("output.file_prefix must be set")
	case strings.ContainsAny(fp, `/\`):
		return invalid("output.file_prefix %q must not contain path separators", fp)
	case strings.HasPrefix(fp, "_") || strings.HasPrefix(fp, "."):
		return invalid("output.file_prefix %q would make the go command ignore generated files", fp)
	}

	if c.GOARCH != "" && types.SizesFor("gc", c.GOARCH) == nil {
		return invalid("unknown goarch %q", c.GOARCH)
	}
	for _, tag := range c.Tags {
		if tag == "" || strings.ContainsAny(tag, " ,") {
			return invalid("invalid build tag %q", tag)
		}
	}
	if c.LogLevel != "" {
		if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
			return invalid("log_level: %v", err)
		}
	}
	return nil
}
