// Package errors provides structured error types for staticassert.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the source position of the directive, the directive verb,
// the index of the failing clause and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseVerify, errors.KindViolated).
//		Pos("types.go:12:2").
//		Verb("eq_size").
//		Clause(1).
//		Detail("size of [4]uint8 (4) != size of uint16 (2)").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Malformed(pos, "eq_size", "expected at least 2 types, got 1")
//	err := errors.Violated(pos, "const", 2, "1 == 2 is false")
//
// Many errors are aggregated into a ViolationsError, which groups them by file.
// All errors implement the standard error interface and support errors.Is/As.
package errors
