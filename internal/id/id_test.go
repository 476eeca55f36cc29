package id

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	got, err := Generate("loan")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(got, "loan-") {
		t.Errorf("expected loan- prefix, got %q", got)
	}
	// Default NanoID is 21 characters after the prefix and dash.
	if len(got) != len("loan-")+21 {
		t.Errorf("unexpected length %d for %q", len(got), got)
	}
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := MustGenerate("book")
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}
