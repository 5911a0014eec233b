package directive

import (
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/wippyai/staticassert/directive/internal/lex"
	"github.com/wippyai/staticassert/errors"
)

// Match reports whether a comment is a directive for prefix and returns the
// text after "//prefix:".
func Match(text, prefix string) (string, bool) {
	lead := "//" + prefix + ":"
	if !strings.HasPrefix(text, lead) {
		return "", false
	}
	return text[len(lead):], true
}

// Parse parses the comment text of a single directive located at pos.
func Parse(text string, pos token.Position, prefix string) (*Directive, error) {
	rest, ok := Match(text, prefix)
	if !ok {
		return nil, errors.Malformed(pos.String(), "", fmt.Sprintf("not a //%s: directive", prefix))
	}
	head := len(text) - len(rest)
	rest = strings.TrimRight(rest, " \t\r")

	verb, args := rest, ""
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		verb, args = rest[:i], rest[i:]
	}
	v := Verb(verb)
	if verb == "" {
		return nil, errors.Malformed(pos.String(), "", "missing verb")
	}
	if !v.Known() {
		return nil, errors.Malformed(pos.String(), verb, fmt.Sprintf("unknown verb %q", verb))
	}

	p := &argParser{
		verb: v,
		pos:  pos,
		base: head + len(verb),
	}
	d := &Directive{
		Verb: v,
		Pos:  pos,
		Raw:  strings.TrimSpace(args),
	}

	f := forms[v]
	if f.arg == KindConstraint {
		if err := p.parseConstraint(d, args); err != nil {
			return nil, err
		}
		return d, nil
	}

	subj, segs, err := lex.Split(args, f.subject)
	if err != nil {
		return nil, p.errorf(0, "%v", err)
	}

	if subj != nil {
		if subj.Text == "" {
			return nil, p.errorf(subj.Offset, "missing subject before ':'")
		}
		a, err := p.parseArg(*subj, KindType)
		if err != nil {
			return nil, err
		}
		d.Subject = &a
	}

	n := len(segs)
	if n == 1 && segs[0].Text == "" {
		n = 0
	}
	if n < f.min {
		return nil, p.errorf(0, "expected at least %d argument(s), got %d", f.min, n)
	}
	if f.max > 0 && n > f.max {
		return nil, p.errorf(0, "expected at most %d argument(s), got %d", f.max, n)
	}

	for _, s := range segs {
		a, err := p.parseArg(s, f.arg)
		if err != nil {
			return nil, err
		}
		d.Args = append(d.Args, a)
	}
	return d, nil
}

type argParser struct {
	pos  token.Position
	verb Verb
	base int // offset of the argument text within the comment
}

func (p *argParser) at(off int) token.Position {
	q := p.pos
	q.Column += p.base + off
	if q.Offset >= 0 && q.IsValid() {
		q.Offset += p.base + off
	}
	return q
}

func (p *argParser) errorf(off int, format string, args ...any) error {
	return errors.Malformed(p.at(off).String(), string(p.verb), fmt.Sprintf(format, args...))
}

func (p *argParser) parseArg(s lex.Segment, kind ArgKind) (Arg, error) {
	a := Arg{Text: s.Text, Pos: p.at(s.Offset), Kind: kind}
	if s.Text == "" {
		return a, p.errorf(s.Offset, "empty argument")
	}

	switch kind {
	case KindType, KindExpr, KindTypeOrExpr:
		e, err := parser.ParseExpr(s.Text)
		if err != nil {
			return a, p.errorf(s.Offset, "cannot parse %q: %v", s.Text, err)
		}
		a.Expr = e

	case KindIdent:
		if !token.IsIdentifier(s.Text) {
			if _, err := strconv.Atoi(s.Text); err == nil {
				return a, p.errorf(s.Offset, "%s is a positional index; Go struct fields are named", s.Text)
			}
			return a, p.errorf(s.Offset, "%q is not a field name", s.Text)
		}
		a.Name = s.Text

	case KindOffset:
		e, err := parser.ParseExpr(s.Text)
		if err != nil {
			return a, p.errorf(s.Offset, "cannot parse %q: %v", s.Text, err)
		}
		bin, ok := e.(*ast.BinaryExpr)
		if !ok || bin.Op != token.EQL {
			return a, p.errorf(s.Offset, "expected \"field == offset\", got %q", s.Text)
		}
		id, ok := bin.X.(*ast.Ident)
		if !ok {
			return a, p.errorf(s.Offset, "expected a field name before ==, got %q", s.Text)
		}
		a.Name = id.Name
		a.Expr = bin.Y

	case KindTag:
		x, err := constraint.Parse("//go:build " + s.Text)
		if err != nil {
			return a, p.errorf(s.Offset, "invalid build tag %q: %v", s.Text, err)
		}
		tag, ok := x.(*constraint.TagExpr)
		if !ok {
			return a, p.errorf(s.Offset, "%q is an expression, expected a single build tag", s.Text)
		}
		a.Name = tag.Tag
	}
	return a, nil
}

func (p *argParser) parseConstraint(d *Directive, args string) error {
	off := len(args) - len(strings.TrimLeft(args, " \t"))
	rest := args[off:]

	if strings.HasPrefix(rest, `"`) || strings.HasPrefix(rest, "`") {
		lit, err := strconv.QuotedPrefix(rest)
		if err != nil {
			return p.errorf(off, "bad message literal: %v", err)
		}
		msg, err := strconv.Unquote(lit)
		if err != nil {
			return p.errorf(off, "bad message literal: %v", err)
		}
		d.Message = msg
		off += len(lit)
		rest = rest[len(lit):]

		trimmed := strings.TrimLeft(rest, " \t")
		off += len(rest) - len(trimmed)
		rest = trimmed
		if strings.HasPrefix(rest, ",") {
			rest = rest[1:]
			off++
			trimmed = strings.TrimLeft(rest, " \t")
			off += len(rest) - len(trimmed)
			rest = trimmed
		}
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return p.errorf(off, "missing build constraint")
	}
	x, err := constraint.Parse("//go:build " + rest)
	if err != nil {
		return p.errorf(off, "invalid build constraint %q: %v", rest, err)
	}
	d.Constraint = x
	d.Args = []Arg{{Text: rest, Pos: p.at(off), Kind: KindConstraint}}
	return nil
}

// Scan returns the directives found in a file's comments, in source order,
// and the grammar errors for the ones that could not be parsed.
func Scan(fset *token.FileSet, file *ast.File, prefix string) ([]*Directive, []error) {
	var (
		out  []*Directive
		errs []error
	)
	for _, group := range file.Comments {
		for _, c := range group.List {
			if _, ok := Match(c.Text, prefix); !ok {
				continue
			}
			d, err := Parse(c.Text, fset.Position(c.Slash), prefix)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			d.At = c.Slash
			out = append(out, d)
		}
	}
	return out, errs
}
