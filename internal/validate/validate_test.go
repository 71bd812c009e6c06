package validate_test

import (
	"testing"

	"velora/internal/validate"
)

func TestEmail(t *testing.T) {
	if _, ok := validate.Email("user@example.com"); !ok {
		t.Fatal("valid email rejected")
	}
	for _, bad := range []string{"", "nope", "a@b", "a b@c.com"} {
		if _, ok := validate.Email(bad); ok {
			t.Fatalf("accepted %q", bad)
		}
	}
}

func TestQtyClamped(t *testing.T) {
	if got := validate.Qty("3"); got != 3 {
		t.Fatalf("want 3, got %d", got)
	}
	if got := validate.Qty("-2"); got != -2 {
		t.Fatalf("want -2, got %d", got)
	}
	if got := validate.Qty("9999"); got != 50 {
		t.Fatalf("want clamp to 50, got %d", got)
	}
	if got := validate.Qty("junk"); got != 0 {
		t.Fatalf("want 0 for junk, got %d", got)
	}
}

func TestPassword(t *testing.T) {
	if !validate.Password("Abcdef12") {
		t.Fatal("valid password rejected")
	}
	for _, bad := range []string{"short1A", "alllowercase1", "ALLUPPER1", "NoDigitsHere"} {
		if validate.Password(bad) {
			t.Fatalf("accepted %q", bad)
		}
	}
}

func TestSlug(t *testing.T) {
	if s, ok := validate.Slug("  Face-Care "); !ok || s != "face-care" {
		t.Fatalf("want normalized slug, got %q ok=%v", s, ok)
	}
	if _, ok := validate.Slug("no spaces"); ok {
		t.Fatal("accepted slug with spaces")
	}
}
