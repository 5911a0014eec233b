//go:build !go1.22

package generator

import (
	"go/ast"
	"go/types"
)

// pkgNameOf mirrors types.Info.PkgNameOf, which was added in Go 1.22.
func pkgNameOf(info *types.Info, imp *ast.ImportSpec) *types.PkgName {
	var obj types.Object
	if imp.Name != nil {
		obj = info.Defs[imp.Name]
	} else {
		obj = info.Implicits[imp]
	}
	pkgname, _ := obj.(*types.PkgName)
	return pkgname
}
