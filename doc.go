// Package staticassert checks invariants about Go types and constants at
// compile time.
//
// Invariants are written as comment directives next to the code they
// describe:
//
//	//static:eq_size Header, [16]byte
//	//static:impl_all *Buffer: io.Reader, io.Writer
//	//static:not_impl_any Point: fmt.Stringer
//	//static:field_offsets Header: Magic == 0, Length == 8
//	//static:const MaxFrame <= 1<<20
//	//static:cfg "needs a 64-bit target" amd64 || arm64
//
// A generator, run through go generate, turns each directive into Go code
// that compiles only while the invariant holds. Builds therefore fail, at
// the directive's line, as soon as a change breaks one. The generator also
// evaluates every directive with go/types and reports violations before
// writing anything.
//
// # Architecture Overview
//
//	staticassert/        Root package with Generate and Check helpers
//	├── directive/       Directive grammar, parsing and scanning
//	├── expand/          Lowering of directives into Go code shapes
//	├── verify/          go/types evaluation of directives
//	├── generator/       Package loading, rendering and file management
//	├── analyzer/        go/analysis pass reporting failed directives
//	├── config/          .staticassert.yaml configuration
//	├── errors/          Structured error types
//	└── cmd/
//	    ├── staticassert/      go generate entry point
//	    └── staticassert-vet/  vet tool
//
// # Quick Start
//
// Add a go:generate line to the package and run go generate:
//
//	//go:generate go run github.com/wippyai/staticassert/cmd/staticassert
//
// Or generate from Go code:
//
//	res, err := staticassert.Generate(ctx, "./pkg", "./...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Written)
//
// # Verbs
//
// Size and alignment:
//
//   - eq_size, eq_size_val, eq_size_ptr: equal sizes of types, values or pointees
//   - lt_size, le_size, gt_size, ge_size: the first size against every other
//   - eq_align, ne_align: alignments
//   - lt_align, le_align, gt_align, ge_align: the first alignment against every other
//
// Operands that could name either a type or a value need type information,
// which verification provides. With verification off, use eq_size_val for
// values or spell types so that only a type can match.
//
// Types and interfaces:
//
//   - impl_all, impl_any: a type implements all, or at least one, interface
//   - not_impl_all, not_impl_any: the negations
//   - super_iface: an interface embeds the method sets of others
//   - super_iface_all: every listed interface extends the subject interface
//   - sub_iface_any: the subject interface extends at least one listed interface
//   - obj_safe: an interface can be used as a variable type
//   - eq_type, ne_type: type identity
//
// Structs and constants:
//
//   - fields: a struct has the named fields
//   - field_offsets: fields sit at the given byte offsets
//   - const, const_eq, const_ne: constant conditions
//
// Build configuration:
//
//   - cfg: the build constraint holds for every build of the file
//   - one_tag: exactly one of the listed build tags is set
//
// # Generated Files
//
// For a source file shapes.go the generator writes staticassert_shapes.go
// and, for build constraint checks, staticassert_cfg<N>_shapes.go. The
// prefix keeps _test, GOOS and GOARCH suffixes meaningful. Generated files
// carry the build constraint of their source file and are removed when
// their directives go away.
package staticassert
