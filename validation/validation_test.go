package validation

import (
	"regexp"
	"testing"
)

func TestRequiredAndMaxLen(t *testing.T) {
	v := make(Violations)
	Required("name", "   ", v)
	MaxLen("name", "this is long", 3, v)
	if v["name"] != "required" {
		t.Fatalf("first violation must win, got %q", v["name"])
	}
	MaxLen("sku", "ñññ", 3, v)
	if _, ok := v["sku"]; ok {
		t.Fatalf("MaxLen must count runes, not bytes")
	}
	MaxLen("sku", "abcd", 3, v)
	if v["sku"] != "too_long" {
		t.Fatalf("expected too_long, got %q", v["sku"])
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"", true},
		{"ventas@empresa.mx", true},
		{"no-at-sign", false},
		{"Name <a@b.mx>", false},
	}
	for _, tt := range tests {
		v := make(Violations)
		Email("email", tt.in, v)
		if v.Empty() != tt.valid {
			t.Errorf("Email(%q) valid=%v, want %v", tt.in, v.Empty(), tt.valid)
		}
	}
}

func TestPattern(t *testing.T) {
	re := regexp.MustCompile(`^[0-9]+$`)
	v := make(Violations)
	Pattern("phone", "", re, v)
	Pattern("phone", "12a", re, v)
	if v["phone"] != "invalid_format" {
		t.Fatalf("expected invalid_format, got %v", v)
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		in   string
		min  int
		want int
		code string
	}{
		{"", 0, 0, ""},
		{"5", 0, 5, ""},
		{"-1", 0, -1, "must_be_non_negative"},
		{"0", 1, 0, "must_be_positive"},
		{"1.5", 1, 9, "invalid_number"},
	}
	for _, tt := range tests {
		v := make(Violations)
		got := Int("n", tt.in, tt.min, 9, v)
		if tt.in == "" {
			if got != 9 {
				t.Errorf("blank input should return default, got %d", got)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("Int(%q) = %d, want %d", tt.in, got, tt.want)
		}
		if v["n"] != tt.code {
			t.Errorf("Int(%q) code = %q, want %q", tt.in, v["n"], tt.code)
		}
	}
}

func TestID(t *testing.T) {
	v := make(Violations)
	if ID("a", "", v) != 0 || v["a"] != "required" {
		t.Errorf("blank id should be required")
	}
	if ID("b", "x", v) != 0 || v["b"] != "not_found" {
		t.Errorf("garbage id should be not_found")
	}
	if got := ID("c", "42", v); got != 42 {
		t.Errorf("ID() = %d, want 42", got)
	}
}

func TestFirst(t *testing.T) {
	v := Violations{"b": "x", "a": "y", "c": "z"}
	if f, _, _ := v.First("c"); f != "c" {
		t.Errorf("order should be honoured, got %s", f)
	}
	if f, _, _ := v.First(); f != "a" {
		t.Errorf("fallback should be alphabetical, got %s", f)
	}
	if _, _, ok := (Violations{}).First(); ok {
		t.Errorf("empty violations should report ok=false")
	}
}
