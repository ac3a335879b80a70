package obslog

import "testing"

func TestNewProduction(t *testing.T) {
	log, err := New(false)
	if err != nil {
		t.Fatalf("new production logger: %v", err)
	}
	if log == nil {
		t.Fatal("expected non-nil logger")
	}
	defer log.Sync() //nolint:errcheck
}

func TestNewDevelopment(t *testing.T) {
	log, err := New(true)
	if err != nil {
		t.Fatalf("new development logger: %v", err)
	}
	if log == nil {
		t.Fatal("expected non-nil logger")
	}
	defer log.Sync() //nolint:errcheck
}
