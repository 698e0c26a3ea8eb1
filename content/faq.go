package content

import (
	"encoding/json"
	"strings"
)

// FAQ is one question/answer pair shown under a post.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ParseFAQs decodes a JSON array of FAQ pairs. It reports false when raw is
// blank, malformed, not an array, or holds no usable pair. Pairs where both
// fields are blank are dropped.
func ParseFAQs(raw string) ([]FAQ, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw[0] != '[' {
		return nil, false
	}
	var items []FAQ
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false
	}
	items = CleanFAQs(items)
	return items, len(items) > 0
}

// CleanFAQs trims every pair and removes the ones left empty.
func CleanFAQs(items []FAQ) []FAQ {
	out := items[:0]
	for _, f := range items {
		f.Question = strings.TrimSpace(f.Question)
		f.Answer = strings.TrimSpace(f.Answer)
		if f.Question == "" && f.Answer == "" {
			continue
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
