// Package verify evaluates directives against a type-checked package.
//
// The verifier answers the same questions the generated code asks the
// compiler, using go/types directly, so a violated invariant is reported with
// its clause position while the generator runs. It also produces the facts
// the expander cannot derive from syntax alone: which operands of a size
// comparison are types, which interface witnesses impl_any, and which absent
// methods can guard a negative implementation check.
//
// Build constraint checks (cfg, one_tag) are evaluated against the build
// context the package was loaded with and are reported as warnings, since
// the real target is only known when the package is compiled.
package verify
