//go:build !go1.22

package verify

import "go/types"

// Before Go 1.22, go/types has no alias nodes, so types.Unalias is the identity.
func unalias(t types.Type) types.Type { return t }
