package validation

import "testing"

func TestRequired(t *testing.T) {
	v := make(Violations)
	Required("libelle", "   ", v)
	if v["libelle"] != "required" {
		t.Fatalf("expected required, got %q", v["libelle"])
	}
	v = make(Violations)
	Required("libelle", "Essence", v)
	if !v.Empty() {
		t.Fatalf("expected no violation, got %v", v)
	}
}

func TestMaxLength(t *testing.T) {
	v := make(Violations)
	MaxLength("code", "ÉÉÉ", 3, v)
	if !v.Empty() {
		t.Fatalf("3 runes should fit in 3: %v", v)
	}
	MaxLength("code", "ABCD", 3, v)
	if v["code"] != "too_long" {
		t.Fatalf("expected too_long, got %v", v)
	}
	v = make(Violations)
	MaxLength("code", "ABCD", 0, v)
	if !v.Empty() {
		t.Fatalf("max 0 disables the check: %v", v)
	}
}

func TestEmailAndInteger(t *testing.T) {
	v := make(Violations)
	Email("email", "", v)
	Integer("cv", "", v)
	if !v.Empty() {
		t.Fatalf("empty values are not checked: %v", v)
	}
	Email("email", "pas-un-mail", v)
	Integer("cv", "douze", v)
	if v["email"] != "invalid_email" || v["cv"] != "invalid_value" {
		t.Fatalf("unexpected violations: %v", v)
	}
}
