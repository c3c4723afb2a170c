package allowlist

import "testing"

func TestNormalizeBareDigits(t *testing.T) {
	if got := Normalize("15551234567"); got != "15551234567@c.us" {
		t.Errorf("expected 15551234567@c.us, got %s", got)
	}
}

func TestNormalizeStripsFormatting(t *testing.T) {
	cases := map[string]string{
		"+1 (555) 123-4567": "15551234567@c.us",
		"+49 170 1234567":   "491701234567@c.us",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeQualifiedPassthrough(t *testing.T) {
	for _, id := range []string{"123@c.us", "456-789@g.us"} {
		if got := Normalize(id); got != id {
			t.Errorf("Normalize(%q) = %q, want unchanged", id, got)
		}
	}
}

func TestNormalizeFoldsServerJID(t *testing.T) {
	if got := Normalize("123@s.whatsapp.net"); got != "123@c.us" {
		t.Errorf("expected 123@c.us, got %s", got)
	}
	if got := Normalize("999@lid"); got != "999@c.us" {
		t.Errorf("expected 999@c.us, got %s", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"15551234567",
		"+1 555 123 4567",
		"123@c.us",
		"456@g.us",
		"123@s.whatsapp.net",
		"",
		"not-a-number",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
