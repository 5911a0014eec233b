//go:build go1.24

package main

import (
	"context"
	"testing"
)

func testContext(t *testing.T) context.Context { return t.Context() }
