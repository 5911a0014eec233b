package emit

import (
	"bytes"
	"fmt"
	"go/token"
	"path/filepath"
	"strings"
)

// Emitter accumulates Go source text for generated assertions.
// Methods return the emitter so calls can be chained.
type Emitter struct {
	buf    bytes.Buffer
	depth  int
	unsafe bool
}

// NewEmitter returns an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Len returns the number of bytes emitted so far.
func (e *Emitter) Len() int {
	return e.buf.Len()
}

// Bytes returns the emitted source. The slice aliases the internal buffer.
func (e *Emitter) Bytes() []byte {
	return e.buf.Bytes()
}

// Copy returns a copy of the emitted source.
func (e *Emitter) Copy() []byte {
	return bytes.Clone(e.buf.Bytes())
}

// Reset discards everything emitted.
func (e *Emitter) Reset() {
	e.buf.Reset()
	e.depth = 0
	e.unsafe = false
}

// UsesUnsafe reports whether emitted code refers to package unsafe.
func (e *Emitter) UsesUnsafe() bool {
	return e.unsafe
}

// Line writes one indented line.
func (e *Emitter) Line(format string, args ...any) *Emitter {
	for i := 0; i < e.depth; i++ {
		e.buf.WriteByte('\t')
	}
	if len(args) > 0 {
		fmt.Fprintf(&e.buf, format, args...)
	} else {
		e.buf.WriteString(format)
	}
	e.buf.WriteByte('\n')
	return e
}

// Blank writes an empty line.
func (e *Emitter) Blank() *Emitter {
	e.buf.WriteByte('\n')
	return e
}

// Comment writes a line comment. Newlines in text are folded.
func (e *Emitter) Comment(text string) *Emitter {
	return e.Line("// %s", strings.ReplaceAll(text, "\n", " "))
}

// Open writes a line ending in "{" and indents what follows.
func (e *Emitter) Open(format string, args ...any) *Emitter {
	e.Line(format+" {", args...)
	e.depth++
	return e
}

// Close dedents and writes "}".
func (e *Emitter) Close() *Emitter {
	if e.depth > 0 {
		e.depth--
	}
	return e.Line("}")
}

// At returns a block line directive that attributes the token following it
// to pos. A single space is expected between the directive and the token,
// which is the layout gofmt produces, so the column is shifted left by one.
func At(pos token.Position) string {
	if !pos.IsValid() {
		return ""
	}
	col := pos.Column - 1
	if col < 1 {
		col = 1
	}
	return fmt.Sprintf("/*line %s:%d:%d*/", filepath.Base(pos.Filename), pos.Line, col)
}

// Sizeof returns an unsafe.Sizeof call on x.
func (e *Emitter) Sizeof(x string) string {
	e.unsafe = true
	return "unsafe.Sizeof(" + x + ")"
}

// Alignof returns an unsafe.Alignof call on x.
func (e *Emitter) Alignof(x string) string {
	e.unsafe = true
	return "unsafe.Alignof(" + x + ")"
}

// Offsetof returns an unsafe.Offsetof call on selector x.
func (e *Emitter) Offsetof(x string) string {
	e.unsafe = true
	return "unsafe.Offsetof(" + x + ")"
}

// Zero returns an expression of type t that is never evaluated when used as
// the operand of unsafe.Sizeof or unsafe.Alignof.
func Zero(t string) string {
	return "*(*" + t + ")(nil)"
}
