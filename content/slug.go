// Package content derives presentation data from stored post HTML: slugs,
// heading anchors, reading time, sanitized markup, and FAQ blocks.
package content

import (
	"strconv"
	"strings"
	"time"
)

// Slugify converts text to a URL-safe slug. Every run of characters outside
// [a-z0-9] becomes a single hyphen and the result never starts or ends with one.
func Slugify(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// SlugSuffix returns t as base-36 unix milliseconds, appended to generated
// post slugs so two posts with the same title do not collide.
func SlugSuffix(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 36)
}
