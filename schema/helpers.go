package schema

import "strings"

// Slug lowercases s and replaces every run of characters outside [a-z0-9]
// with a single hyphen, trimming hyphens at both ends.
// "GPU Suite (nightly)" becomes "gpu-suite-nightly".
func Slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
