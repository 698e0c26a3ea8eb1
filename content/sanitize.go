package content

import (
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy

	reCodeClass = regexp.MustCompile(`^language-[a-zA-Z0-9_+-]+$`)
	reAnchorID  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)
)

// blockTags end a run of words. Inline tags such as <b> join their text to
// the neighbouring text.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true, "figure": true,
	"footer": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "img": true, "li": true, "ol": true, "p": true, "pre": true,
	"script": true, "section": true, "style": true, "table": true, "td": true, "th": true,
	"tr": true, "ul": true,
}

func postPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("id").Matching(reAnchorID).OnElements("h2", "h3")
		p.AllowAttrs("class").Matching(reCodeClass).OnElements("code", "pre")
		p.AllowAttrs("loading").Matching(regexp.MustCompile(`^lazy$`)).OnElements("img")
		p.RequireNoFollowOnLinks(false)
		policy = p
	})
	return policy
}

// Sanitize filters post markup through an allow-list of tags and attributes.
// Scripts, event handlers, and style attributes are removed.
func Sanitize(doc string) string {
	return postPolicy().Sanitize(doc)
}

// StripTags returns the text content of doc with all markup removed,
// entities decoded, and whitespace collapsed. Block elements separate words;
// inline elements do not. Text inside script and style elements is dropped.
func StripTags(doc string) string {
	if !strings.ContainsAny(doc, "<&") {
		return collapseSpace(doc)
	}
	var b strings.Builder
	b.Grow(len(doc))
	skip := 0
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch tt := z.Next(); tt {
		case html.ErrorToken:
			return collapseSpace(b.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if isRawText(name) && tt == html.StartTagToken {
				skip++
			}
			if blockTags[string(name)] {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if isRawText(name) && skip > 0 {
				skip--
			}
			if blockTags[string(name)] {
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRawText(name []byte) bool {
	n := string(name)
	return n == "script" || n == "style"
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
