package tracker

import (
	"testing"
)

func TestNewWithoutDSNIsNoop(t *testing.T) {
	tr, err := New(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := tr.(Noop); !ok {
		t.Fatalf("expected Noop tracker, got %T", tr)
	}
	if !tr.Flush(0) {
		t.Fatalf("noop flush should report success")
	}
}

func TestNewRejectsInvalidDSN(t *testing.T) {
	if _, err := New(Config{DSN: "not a dsn"}); err == nil {
		t.Fatalf("expected error for invalid dsn")
	}
}
