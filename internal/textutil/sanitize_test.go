package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"diffuse":        "diffuse",
		"hero/diffuse":   "hero-diffuse",
		"what?":          "what",
		"  spaced  ":     "spaced",
		`a\b:c*d`:        "a-b-c-d",
		"<angles>|pipes": "anglespipes",
	}
	for input, want := range cases {
		if got := SanitizeFileName(input); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := map[string]string{
		"Mari Texture": "mari_texture",
		"":             "unknown",
		"___":          "unknown",
		"geo-cache_01": "geo-cache_01",
	}
	for input, want := range cases {
		if got := SanitizeToken(input); got != want {
			t.Fatalf("SanitizeToken(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("Truncate short = %q", got)
	}
	if got := Truncate("a long error message", 10); got != "a long ..." {
		t.Fatalf("Truncate long = %q", got)
	}
	if got := Truncate("abcdef", 2); got != "ab" {
		t.Fatalf("Truncate tiny = %q", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Fatalf("Truncate zero = %q", got)
	}
}
