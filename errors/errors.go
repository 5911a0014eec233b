package errors

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseConfig Phase = "config" // configuration loading
	PhaseLoad   Phase = "load"   // package loading and type checking
	PhaseScan   Phase = "scan"   // directive discovery
	PhaseParse  Phase = "parse"  // directive grammar
	PhaseVerify Phase = "verify" // go/types evaluation
	PhaseExpand Phase = "expand" // lowering to Go code shapes
	PhaseRender Phase = "render" // formatting generated files
	PhaseWrite  Phase = "write"  // writing generated files
)

// Kind categorizes the error
type Kind string

const (
	KindMalformed    Kind = "malformed"
	KindUnresolved   Kind = "unresolved"
	KindViolated     Kind = "violated"
	KindUnsupported  Kind = "unsupported"
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindIO           Kind = "io"
	KindStale        Kind = "stale"
)

// NoClause marks an error that is not attributed to a single clause.
const NoClause = -1

// Error is the structured error type used throughout staticassert
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Pos    string // file:line:col of the directive or clause
	Verb   string // directive verb, e.g. "eq_size"
	Detail string
	Clause int // zero-based clause index, or NoClause
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Pos != "" {
		b.WriteString(e.Pos)
		b.WriteString(": ")
	}

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Verb != "" {
		b.WriteString(" in ")
		b.WriteString(e.Verb)
		if e.Clause >= 0 {
			b.WriteString(" clause ")
			b.WriteString(strconv.Itoa(e.Clause + 1))
		}
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Clause: NoClause,
		},
	}
}

// Pos sets the source position
func (b *Builder) Pos(pos string) *Builder {
	b.err.Pos = pos
	return b
}

// Verb sets the directive verb
func (b *Builder) Verb(verb string) *Builder {
	b.err.Verb = verb
	return b
}

// Clause sets the failing clause index
func (b *Builder) Clause(i int) *Builder {
	b.err.Clause = i
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Malformed creates a directive grammar error
func Malformed(pos, verb, detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindMalformed,
		Pos:    pos,
		Verb:   verb,
		Detail: detail,
		Clause: NoClause,
	}
}

// Unresolved creates an error for an argument that does not resolve in file scope
func Unresolved(pos, verb string, clause int, cause error) *Error {
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindUnresolved,
		Pos:    pos,
		Verb:   verb,
		Clause: clause,
		Cause:  cause,
	}
}

// Violated creates an error for an invariant that does not hold
func Violated(pos, verb string, clause int, detail string) *Error {
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindViolated,
		Pos:    pos,
		Verb:   verb,
		Clause: clause,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, pos, verb, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Pos:    pos,
		Verb:   verb,
		Detail: what,
		Clause: NoClause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
		Clause: NoClause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
		Clause: NoClause,
	}
}

// IO wraps a filesystem error
func IO(phase Phase, path string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIO,
		Pos:    path,
		Cause:  cause,
		Clause: NoClause,
	}
}

// Stale creates an error for a generated file that does not match its directives
func Stale(path string) *Error {
	return &Error{
		Phase:  PhaseWrite,
		Kind:   KindStale,
		Pos:    path,
		Detail: "generated file is out of date, run go generate",
		Clause: NoClause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
		Clause: NoClause,
	}
}

// ViolationsError is returned when one or more directives fail
type ViolationsError struct {
	Errors []*Error
}

// NewViolationsError collects errors into a ViolationsError
func NewViolationsError(errs []*Error) *ViolationsError {
	return &ViolationsError{Errors: errs}
}

// fileOf extracts the file part of a "file:line:col" position
func fileOf(pos string) string {
	// Windows drive letters contain a colon, so strip from the right.
	s := pos
	for i := 0; i < 2; i++ {
		j := strings.LastIndexByte(s, ':')
		if j < 0 {
			break
		}
		if _, err := strconv.Atoi(s[j+1:]); err != nil {
			break
		}
		s = s[:j]
	}
	return s
}

func (e *ViolationsError) Error() string {
	if len(e.Errors) == 0 {
		return "[verify] violated: no errors specified"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d static assertion(s) failed:\n", len(e.Errors)))

	// Group by file for cleaner output
	byFile := make(map[string][]*Error)
	var fileOrder []string
	for _, err := range e.Errors {
		f := fileOf(err.Pos)
		if _, exists := byFile[f]; !exists {
			fileOrder = append(fileOrder, f)
		}
		byFile[f] = append(byFile[f], err)
	}
	sort.Strings(fileOrder)

	for _, f := range fileOrder {
		b.WriteString("\n  ")
		if f == "" {
			b.WriteString("(no file)")
		} else {
			b.WriteString(f)
		}
		b.WriteString(":\n")
		for _, err := range byFile[f] {
			b.WriteString("    - ")
			b.WriteString(err.Error())
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Unwrap exposes the individual errors to errors.Is/As
func (e *ViolationsError) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err
	}
	return out
}

// Is reports whether target matches this error type
func (e *ViolationsError) Is(target error) bool {
	_, ok := target.(*ViolationsError)
	return ok
}
