package views

import (
	"encoding/json"
	"html/template"
	"strings"
	"time"

	"github.com/eringen/insighthub"
	"github.com/eringen/insighthub/content"
)

// FuncMap returns the helpers available to every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatDate": insighthub.FormatDate,
		"isoDate":    func(t time.Time) string { return t.Format(time.RFC3339) },
		"listURL":    insighthub.ListURL,
		"categoryQuery": func(slug string) insighthub.ListQuery {
			return insighthub.ListQuery{Category: slug}
		},
		"add":       func(a, b int) int { return a + b },
		"sub":       func(a, b int) int { return a - b },
		"year":      func() int { return time.Now().Year() },
		"tocOffset": func() int { return content.TOCScrollOffset },

		// Post bodies are sanitized before they are stored.
		"trustedHTML": func(s string) template.HTML { return template.HTML(s) },
		// JSON-LD strings come from json.Marshal.
		"jsonLD": func(s string) template.JS { return template.JS(s) },
		"toJSON": toJSON,
		"websiteJSONLD": func(cfg insighthub.SiteConfig) template.JS {
			return template.JS(insighthub.WebsiteJsonLD(cfg))
		},

		"excerpt": truncate,
		"initial": initial,
	}
}

func toJSON(v any) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

// truncate shortens s to at most n runes, ending with an ellipsis when cut.
func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

// initial is the avatar letter shown next to a comment.
func initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return strings.ToUpper(string(r))
	}
	return "?"
}
