package insighthub

import (
	"encoding/xml"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// buildSitemap lists the home page, the listing, every category filter, the
// informational pages, and every published post.
func buildSitemap(base string, posts []Post, cats []Category) sitemapURLSet {
	urls := []sitemapURL{
		{Loc: BuildURL(base), ChangeFreq: "daily", Priority: "1.0"},
		{Loc: BuildURL(base, "blog"), ChangeFreq: "daily", Priority: "0.9"},
	}
	for _, c := range cats {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, "blog") + "?category=" + url.QueryEscape(c.Slug),
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}
	for _, page := range []string{"contact", "about", "privacy-policy", "terms-of-service"} {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, page), ChangeFreq: "monthly", Priority: "0.3"})
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, "blog", p.Slug),
			LastMod:    p.UpdatedAt.Format(time.DateOnly),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func (a *App) renderSitemap(c echo.Context, posts []Post, cats []Category) error {
	return writeXML(c, "application/xml; charset=utf-8", buildSitemap(a.Config.URL, posts, cats))
}
