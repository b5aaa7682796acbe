package schema

import (
	"strings"
	"testing"
)

// FuzzSlug fuzzes Slug with arbitrary names.
func FuzzSlug(f *testing.F) {
	seeds := []string{
		"GPU Suite (nightly)",
		"  leading and trailing  ",
		"ÄÖÜ unicode",
		"---",
		"",
		"already-a-slug",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		got := Slug(input)
		if strings.HasPrefix(got, "-") || strings.HasSuffix(got, "-") || strings.Contains(got, "--") {
			t.Errorf("Slug(%q) = %q has stray hyphens", input, got)
		}
		for _, r := range got {
			if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
				t.Errorf("Slug(%q) = %q contains %q", input, got, r)
			}
		}
		if Slug(got) != got {
			t.Errorf("Slug is not idempotent for %q", input)
		}
	})
}
