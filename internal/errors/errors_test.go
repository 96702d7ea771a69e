package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIsByCode(t *testing.T) {
	err := InvalidInput("character name is required")
	if !stderrors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input match")
	}
	if stderrors.Is(err, ErrValidationFailure) {
		t.Fatalf("expected no validation failure match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := fmt.Errorf("saving series: %w", Wrap(CodePersistenceFailure, "writing temp file", cause))

	if !stderrors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("expected persistence failure through wrapping")
	}
	if !stderrors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if got := err.Error(); got != "saving series: writing temp file: disk full" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCodeOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{name: "coded", err: New(CodeNotFound, "missing"), want: CodeNotFound},
		{name: "wrapped", err: fmt.Errorf("outer: %w", New(CodeRecoveryExhausted, "x")), want: CodeRecoveryExhausted},
		{name: "plain", err: fmt.Errorf("plain"), want: CodeUnknown},
		{name: "nil", err: nil, want: CodeUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CodeOf(tc.err); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
