package content

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TOCScrollOffset is the pixel offset applied when scrolling to a heading
// anchor so the target is not hidden under the sticky header.
const TOCScrollOffset = 100

// minTOCHeadings is the smallest heading count worth a navigation panel.
const minTOCHeadings = 2

// Heading is one entry of a post's table of contents.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// ExtractHeadings returns the h2 and h3 headings of doc in document order.
// An explicit id attribute is reused; otherwise the id is the slug of the
// visible text. Headings without visible text are skipped. Identical texts
// yield identical ids.
func ExtractHeadings(doc string) []Heading {
	var out []Heading
	for _, h := range scanHeadings(doc) {
		if h.Text == "" {
			continue
		}
		out = append(out, h)
	}
	return out
}

// ShowTOC reports whether headings justify rendering a table of contents.
func ShowTOC(headings []Heading) bool {
	return len(headings) >= minTOCHeadings
}

// AddHeadingIDs injects derived ids into h2/h3 tags that have none so the
// anchors built by ExtractHeadings resolve. Everything else is copied byte
// for byte.
func AddHeadingIDs(doc string) string {
	headings := scanHeadings(doc)
	if len(headings) == 0 {
		return doc
	}

	var buf bytes.Buffer
	buf.Grow(len(doc) + 16*len(headings))
	z := html.NewTokenizer(strings.NewReader(doc))
	i := 0
	open := false
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				break
			}
			return doc
		}
		// Token lowercases names inside the tokenizer buffer, so copy first.
		raw := append([]byte(nil), z.Raw()...)
		switch tt {
		case html.StartTagToken:
			tok := z.Token()
			if isHeading(tok.DataAtom) && !open && i < len(headings) {
				h := headings[i]
				i++
				open = true
				if _, ok := attr(tok, "id"); !ok && h.ID != "" {
					tok.Attr = append([]html.Attribute{{Key: "id", Val: h.ID}}, tok.Attr...)
					buf.WriteString(tok.String())
					continue
				}
			}
		case html.EndTagToken:
			if tok := z.Token(); isHeading(tok.DataAtom) {
				open = false
			}
		}
		buf.Write(raw)
	}
	return buf.String()
}

// scanHeadings walks every h2/h3 including those with empty text, so
// AddHeadingIDs can pair start tags with results by position.
func scanHeadings(doc string) []Heading {
	var (
		out     []Heading
		current *Heading
		text    strings.Builder
	)
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if current != nil {
				out = append(out, finishHeading(*current, text.String()))
			}
			return out
		case html.StartTagToken:
			tok := z.Token()
			if !isHeading(tok.DataAtom) || current != nil {
				continue
			}
			current = &Heading{Level: headingLevel(tok.DataAtom)}
			if id, ok := attr(tok, "id"); ok {
				current.ID = id
			}
			text.Reset()
		case html.EndTagToken:
			tok := z.Token()
			if current != nil && isHeading(tok.DataAtom) {
				out = append(out, finishHeading(*current, text.String()))
				current = nil
			}
		case html.TextToken:
			if current != nil {
				text.Write(z.Text())
			}
		}
	}
}

func finishHeading(h Heading, text string) Heading {
	h.Text = strings.Join(strings.Fields(text), " ")
	if h.ID == "" {
		h.ID = Slugify(h.Text)
	}
	return h
}

func isHeading(a atom.Atom) bool {
	return a == atom.H2 || a == atom.H3
}

func headingLevel(a atom.Atom) int {
	if a == atom.H3 {
		return 3
	}
	return 2
}

func attr(tok html.Token, key string) (string, bool) {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
