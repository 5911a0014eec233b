//go:build go1.22

package generator

import (
	"go/ast"
	"go/types"
)

func pkgNameOf(info *types.Info, imp *ast.ImportSpec) *types.PkgName { return info.PkgNameOf(imp) }
