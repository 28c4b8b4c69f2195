package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindSurvivesWrapping(t *testing.T) {
	errTooShort := New(ErrInvalidInput, "registrar: name too short")
	wrapped := fmt.Errorf("register %q: %w", "ab", errTooShort)

	if !errors.Is(wrapped, errTooShort) {
		t.Fatalf("sentinel lost through wrapping")
	}
	if !errors.Is(wrapped, ErrInvalidInput) {
		t.Fatalf("kind lost through wrapping")
	}
	if errors.Is(wrapped, ErrNotAuthorized) {
		t.Fatalf("unexpected kind match")
	}
	if got := Kind(wrapped); got != ErrInvalidInput {
		t.Fatalf("Kind: have %v want %v", got, ErrInvalidInput)
	}
	if errTooShort.Error() != "registrar: name too short" {
		t.Fatalf("message mangled: %q", errTooShort.Error())
	}
}

func TestKindUnclassified(t *testing.T) {
	if k := Kind(errors.New("boom")); k != nil {
		t.Fatalf("want nil kind, got %v", k)
	}
}
