package postgres

import "testing"

func TestNullIfEmpty(t *testing.T) {
	if nullIfEmpty("") != nil {
		t.Error("empty string should map to nil")
	}
	got := nullIfEmpty("gpt-4o-mini")
	if got == nil || *got != "gpt-4o-mini" {
		t.Errorf("expected pointer to %q, got %v", "gpt-4o-mini", got)
	}
}
