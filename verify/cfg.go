package verify

import (
	"go/build"
	"slices"
	"strings"

	"github.com/wippyai/staticassert/errors"
)

var unixOS = map[string]bool{
	"aix": true, "android": true, "darwin": true, "dragonfly": true, "freebsd": true,
	"hurd": true, "illumos": true, "ios": true, "linux": true, "netbsd": true,
	"openbsd": true, "solaris": true,
}

// matcher reports whether a build tag is satisfied in ctx, following the
// rules the go command applies to //go:build lines. Keep in step with
// go/build.Context.matchTag.
func matcher(ctx *build.Context) func(string) bool {
	return func(tag string) bool {
		switch tag {
		case ctx.GOOS, ctx.GOARCH, ctx.Compiler:
			return true
		case "cgo":
			return ctx.CgoEnabled
		case "unix":
			return unixOS[ctx.GOOS]
		case "linux":
			return ctx.GOOS == "android"
		case "solaris":
			return ctx.GOOS == "illumos"
		case "darwin":
			return ctx.GOOS == "ios"
		}
		return slices.Contains(ctx.BuildTags, tag) ||
			slices.Contains(ctx.ToolTags, tag) ||
			slices.Contains(ctx.ReleaseTags, tag)
	}
}

func (r *run) cfg() {
	r.f.Warning = true
	if r.d.Constraint.Eval(matcher(&r.v.build)) {
		return
	}
	msg := r.d.Message
	if msg == "" {
		msg = r.d.Constraint.String() + " does not hold"
	}
	r.fail(0, "%s for %s/%s", msg, r.v.build.GOOS, r.v.build.GOARCH)
}

func (r *run) oneTag() {
	r.f.Warning = true
	match := matcher(&r.v.build)
	var set []string
	for _, a := range r.d.Args {
		if match(a.Name) {
			set = append(set, a.Name)
		}
	}
	switch len(set) {
	case 1:
	case 0:
		r.fail(errors.NoClause, "none of the build tags is set")
	default:
		r.fail(errors.NoClause, "more than one build tag is set: %s", strings.Join(set, ", "))
	}
}
