// Package expand lowers parsed directives into Go code that only type-checks
// when the asserted invariant holds.
//
// Every shape is built from a small catalog of constructs the Go type checker
// already has to verify:
//
//   - the constant gate: a map literal with keys false and C has a duplicate
//     constant key exactly when C is false
//   - assignability: var _ I = v fails unless v's type implements I
//   - pointer identity: *A is assignable to *B only when A and B are identical
//   - duplicate type-switch cases: two identical case types are rejected
//   - selector ambiguity: x.M on struct{ T; absent_M } is ambiguous once T has M
//   - dead-code selectors: &v.f in a function body that is never called
//   - build constraints: a file that holds a compile error and is only built
//     when a constraint does not hold
//
// All declarations use the blank identifier, so the same assertion may be
// declared any number of times. Every clause is preceded by a block line
// directive pointing at the clause in the directive comment, so compiler
// diagnostics name the user's source position.
package expand
