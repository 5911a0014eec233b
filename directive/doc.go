// Package directive parses staticassert comment directives.
//
// A directive is a line comment with no space after the slashes, a prefix, a
// colon and a verb, followed by the verb's arguments:
//
//	//static:eq_size [4]uint8, uint32
//	//static:impl_all *Buffer: io.Reader, io.Writer
//	//static:const MaxFrames > 0, MaxFrames <= 1<<16
//	//static:cfg "64-bit only" amd64 || arm64
//
// Arguments are separated by top-level commas. Forms that take a subject
// separate it from the list with a top-level colon. Semicolons are rejected.
// Types and expressions are parsed with go/parser; build constraints with
// go/build/constraint.
//
// The grammar enforces arity: equality forms need at least two elements,
// forms with a subject need at least one list element.
package directive
