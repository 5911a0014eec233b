package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseVerify,
				Kind:   KindViolated,
				Pos:    "types.go:12:16",
				Verb:   "eq_size",
				Clause: 1,
				Detail: "size of [4]uint8 (4) != size of uint16 (2)",
			},
			contains: []string{"types.go:12:16", "[verify]", "violated", "eq_size clause 2", "uint16 (2)"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase:  PhaseParse,
				Kind:   KindMalformed,
				Clause: NoClause,
			},
			contains: []string{"[parse]", "malformed"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseWrite,
				Kind:   KindIO,
				Detail: "write output",
				Cause:  errors.New("disk full"),
				Clause: NoClause,
			},
			contains: []string{"[write]", "io", "write output", "caused by", "disk full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_NoClauseOmitted(t *testing.T) {
	err := Malformed("a.go:1:1", "fields", "expected ':' after subject")
	if strings.Contains(err.Error(), "clause") {
		t.Errorf("unexpected clause in %q", err.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Unresolved("a.go:3:14", "impl_all", 0, cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause")
	}
}

func TestError_Is(t *testing.T) {
	err := Violated("a.go:1:1", "const", 2, "1 == 2 is false")

	if !errors.Is(err, &Error{Phase: PhaseVerify, Kind: KindViolated}) {
		t.Error("expected match on phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseVerify, Kind: KindMalformed}) {
		t.Error("unexpected match on different kind")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("boom")
	err := New(PhaseExpand, KindUnsupported).
		Pos("x.go:4:2").
		Verb("not_impl_any").
		Clause(0).
		Detail("cannot embed %s", "[]int").
		Cause(cause).
		Build()

	if err.Phase != PhaseExpand || err.Kind != KindUnsupported {
		t.Errorf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
	if err.Detail != "cannot embed []int" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Clause != 0 || err.Verb != "not_impl_any" || err.Pos != "x.go:4:2" {
		t.Errorf("unexpected fields: %+v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not attached")
	}
}

func TestBuilder_DefaultsToNoClause(t *testing.T) {
	err := New(PhaseParse, KindMalformed).Build()
	if err.Clause != NoClause {
		t.Errorf("Clause = %d, want NoClause", err.Clause)
	}
}

func TestFileOf(t *testing.T) {
	tests := []struct {
		pos  string
		want string
	}{
		{"a.go:1:2", "a.go"},
		{"dir/b.go:10", "dir/b.go"},
		{`C:\src\c.go:3:4`, `C:\src\c.go`},
		{"", ""},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := fileOf(tt.pos); got != tt.want {
			t.Errorf("fileOf(%q) = %q, want %q", tt.pos, got, tt.want)
		}
	}
}

func TestViolationsError(t *testing.T) {
	err := NewViolationsError([]*Error{
		Violated("b.go:2:1", "eq_type", 0, "int != uint"),
		Violated("a.go:7:1", "const", 1, "false"),
		Malformed("b.go:9:1", "fields", "no fields"),
	})

	msg := err.Error()
	if !strings.HasPrefix(msg, "3 static assertion(s) failed") {
		t.Errorf("unexpected header: %q", msg)
	}
	ai := strings.Index(msg, "a.go:\n")
	bi := strings.Index(msg, "b.go:\n")
	if ai < 0 || bi < 0 || ai > bi {
		t.Errorf("files not grouped in order: %q", msg)
	}
	if strings.Count(msg, "b.go:") != 3 {
		t.Errorf("expected b.go header plus two entries: %q", msg)
	}

	if !errors.Is(err, &ViolationsError{}) {
		t.Error("errors.Is should match ViolationsError")
	}
	if !errors.Is(err, &Error{Phase: PhaseParse, Kind: KindMalformed}) {
		t.Error("errors.Is should see wrapped malformed error")
	}

	var target *Error
	if !errors.As(err, &target) {
		t.Error("errors.As should find an *Error")
	}
}

func TestViolationsError_Single(t *testing.T) {
	inner := Violated("a.go:1:1", "const", 0, "false")
	err := NewViolationsError([]*Error{inner})
	if err.Error() != inner.Error() {
		t.Errorf("single error should print as-is, got %q", err.Error())
	}
}

func TestViolationsError_Empty(t *testing.T) {
	err := NewViolationsError(nil)
	if !strings.Contains(err.Error(), "no errors") {
		t.Errorf("unexpected message %q", err.Error())
	}
}
