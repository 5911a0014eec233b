// Command staticassert-vet reports failed static assertions without
// generating any code. It runs standalone or as a vet tool:
//
//	go vet -vettool=$(which staticassert-vet) ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/wippyai/staticassert/analyzer"
)

func main() {
	singlechecker.Main(analyzer.Analyzer)
}
