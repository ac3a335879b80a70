package apperr

import (
	"errors"
	"testing"
)

func TestIsMatchesByKind(t *testing.T) {
	err := DefineAlreadyExists("deadbeef")
	if !errors.Is(err, KindSentinel(KindPreconditionMissing)) {
		t.Fatal("expected DefineAlreadyExists to match KindPreconditionMissing")
	}
	if errors.Is(err, KindSentinel(KindStoreIO)) {
		t.Fatal("did not expect a PreconditionMissing error to match KindStoreIO")
	}
}

func TestAsUnwrapsFields(t *testing.T) {
	err := InsufficientTotal("deadbeef", 5, 3, 4)
	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected errors.As to unwrap to *Error")
	}
	if appErr.Kind != KindPreconditionMissing {
		t.Fatalf("unexpected kind: %v", appErr.Kind)
	}
}

func TestKindStringIsStable(t *testing.T) {
	cases := map[Kind]string{
		KindRequestShape:        "RequestShape",
		KindPreconditionMissing: "PreconditionMissing",
		KindEncoding:            "Encoding",
		KindSMTProofError:       "SMTProofError",
		KindStoreCorruption:     "StoreCorruption",
		KindStoreIO:             "StoreIO",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
