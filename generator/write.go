package generator

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/staticassert/errors"
)

var cfgName = regexp.MustCompile(`^cfg[0-9]+_`)

// commit writes the planned outputs of p and removes generated files whose
// source no longer asks for them. In check mode it only records stale
// files; in dry-run mode it does nothing.
func (g *Generator) commit(p *Package, res *Result) error {
	if g.opts.DryRun {
		return nil
	}

	dirs := map[string]bool{}
	sources := map[string]bool{}
	for _, f := range p.Files {
		name := p.Fset.File(f.Pos()).Name()
		if g.isOutput(name, f) {
			continue
		}
		dirs[filepath.Dir(name)] = true
		sources[filepath.Clean(name)] = true
	}

	for target, data := range res.Outputs {
		old, err := os.ReadFile(target)
		switch {
		case err == nil && bytes.Equal(old, data):
			res.Unchanged = append(res.Unchanged, target)
		case g.opts.Check:
			res.Stale = append(res.Stale, target)
		default:
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return errors.IO(errors.PhaseWrite, target, err)
			}
			res.Written = append(res.Written, target)
			Logger().Info("wrote generated file", zap.String("file", target))
		}
	}

	for dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return errors.IO(errors.PhaseWrite, dir, err)
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if e.IsDir() || res.Outputs[path] != nil || !g.owned(path, sources) {
				continue
			}
			if g.opts.Check {
				res.Stale = append(res.Stale, path)
				continue
			}
			if err := os.Remove(path); err != nil {
				return errors.IO(errors.PhaseWrite, path, err)
			}
			res.Removed = append(res.Removed, path)
			Logger().Info("removed stale generated file", zap.String("file", path))
		}
	}
	return nil
}

// owned reports whether path is a generated file whose source was part of
// this package, or whose source is gone.
func (g *Generator) owned(path string, sources map[string]bool) bool {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, g.opts.FilePrefix) || !strings.HasSuffix(base, ".go") {
		return false
	}
	if !isGenerated(path) {
		return false
	}

	rest := strings.TrimPrefix(base, g.opts.FilePrefix)
	candidates := []string{rest}
	if loc := cfgName.FindStringIndex(rest); loc != nil {
		candidates = append(candidates, rest[loc[1]:])
	}

	dir := filepath.Dir(path)
	missing := 0
	for _, c := range candidates {
		src := filepath.Join(dir, c)
		if sources[src] {
			return true
		}
		if _, err := os.Stat(src); os.IsNotExist(err) {
			missing++
		}
	}
	return missing == len(candidates)
}

func isGenerated(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	buf := make([]byte, len(Header))
	n, _ := f.Read(buf)
	return string(buf[:n]) == Header
}
