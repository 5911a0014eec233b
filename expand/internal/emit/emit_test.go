package emit

import (
	"go/token"
	"testing"
)

func TestEmitter_NewAndBytes(t *testing.T) {
	e := NewEmitter()
	if e.Len() != 0 {
		t.Errorf("new emitter should be empty, got len %d", e.Len())
	}

	e.Line("var _ = %d", 1)
	if e.Len() == 0 {
		t.Error("emitter should have content after Line")
	}
	if got := string(e.Bytes()); got != "var _ = 1\n" {
		t.Errorf("Bytes() = %q", got)
	}
}

func TestEmitter_Reset(t *testing.T) {
	e := NewEmitter()
	e.Open("func _()").Line("_ = %s", e.Sizeof("x"))

	if !e.UsesUnsafe() {
		t.Fatal("Sizeof should mark unsafe as used")
	}

	e.Reset()
	if e.Len() != 0 {
		t.Errorf("emitter should be empty after reset, got len %d", e.Len())
	}
	if e.UsesUnsafe() {
		t.Error("Reset should clear unsafe use")
	}
	e.Line("x")
	if got := string(e.Bytes()); got != "x\n" {
		t.Errorf("Reset should clear indentation, got %q", got)
	}
}

func TestEmitter_Copy(t *testing.T) {
	e := NewEmitter()
	e.Line("a")

	copy1 := e.Copy()
	e.Line("b")
	copy2 := e.Bytes()

	if len(copy1) == len(copy2) {
		t.Error("Copy should be independent of further emitter operations")
	}
}

func TestEmitter_Blocks(t *testing.T) {
	e := NewEmitter()
	e.Comment("types.go:3:1: const\nx").
		Open("func _()").
		Open("switch v.(type)").
		Line("case int:").
		Close().
		Close().
		Blank()

	want := "// types.go:3:1: const x\n" +
		"func _() {\n" +
		"\tswitch v.(type) {\n" +
		"\t\tcase int:\n" +
		"\t}\n" +
		"}\n\n"
	if got := string(e.Bytes()); got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestEmitter_CloseUnderflow(t *testing.T) {
	e := NewEmitter()
	e.Close().Line("x")
	if got := string(e.Bytes()); got != "}\nx\n" {
		t.Errorf("got %q", got)
	}
}

func TestAt(t *testing.T) {
	tests := []struct {
		pos  token.Position
		want string
	}{
		{token.Position{Filename: "/src/p/types.go", Line: 12, Column: 16}, "/*line types.go:12:15*/"},
		{token.Position{Filename: "types.go", Line: 1, Column: 1}, "/*line types.go:1:1*/"},
		{token.Position{}, ""},
	}
	for _, tt := range tests {
		if got := At(tt.pos); got != tt.want {
			t.Errorf("At(%v) = %q, want %q", tt.pos, got, tt.want)
		}
	}
}

func TestHelpers(t *testing.T) {
	e := NewEmitter()
	if got := e.Alignof(Zero("[4]uint8")); got != "unsafe.Alignof(*(*[4]uint8)(nil))" {
		t.Errorf("Alignof = %q", got)
	}
	if got := e.Offsetof("v.f"); got != "unsafe.Offsetof(v.f)" {
		t.Errorf("Offsetof = %q", got)
	}
	if !e.UsesUnsafe() {
		t.Error("expected unsafe use")
	}
}
