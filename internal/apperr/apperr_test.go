package apperr

import (
	"errors"
	"testing"
)

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindUnknown {
		t.Fatalf("KindOf(plain) = %v, want KindUnknown", got)
	}
}

func TestNewAndKindOf(t *testing.T) {
	err := New(KindValidation, "bad fen")
	if !Is(err, KindValidation) {
		t.Fatalf("Is(err, KindValidation) = false")
	}
	if err.Error() != "bad fen" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestWrapPreservesCauseAndKind(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindStoreIO, "flush segment", cause)
	if !Is(err, KindStoreIO) {
		t.Fatalf("Is(err, KindStoreIO) = false")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false, want true")
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(KindStoreIO, "x", nil) != nil {
		t.Fatalf("Wrap(nil) should return nil")
	}
}

func TestKindOfNotInheritedByUnwrappedCopy(t *testing.T) {
	inner := New(KindDecode, "corrupt entry")
	outer := errors.New("outer: " + inner.Error())
	if KindOf(outer) != KindUnknown {
		t.Fatalf("a freshly-built errors.New should not inherit a kind")
	}
	if KindOf(inner) != KindDecode {
		t.Fatalf("KindOf(inner) = %v, want KindDecode", KindOf(inner))
	}
}
