// Package generator writes the compile-time assertion files for a package.
//
// For every source file that carries directives the generator writes
// <prefix><file>, holding the code shapes of all type, size and constant
// checks, and one <prefix>cfg<N>_<file> per build constraint shape. Each
// generated file repeats the source file's //go:build expression and is
// excluded while the package is loaded for generation, so a stale or
// failing output never blocks a rerun.
//
// A typical run loads packages through go/packages:
//
//	g := generator.New(generator.Options{Verify: true})
//	res, err := g.Run(ctx, "./...")
//	if err != nil {
//	    // *errors.ViolationsError lists every failed directive
//	}
//	fmt.Println(res.Written)
//
// Check mode compares the output with the files on disk and reports the
// ones that are out of date without touching them.
package generator
