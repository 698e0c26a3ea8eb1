package insighthub

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/insighthub/content"
)

const feedSize = 20

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description"`
	Category    string        `xml:"category,omitempty"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
	PubDate     string        `xml:"pubDate"`
	GUID        rssGUID       `xml:"guid"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

type rssEnclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

func buildFeed(cfg SiteConfig, posts []Post) rssXML {
	items := make([]rssItem, 0, len(posts))
	var lastBuild string
	for i, p := range posts {
		if i == 0 {
			lastBuild = p.UpdatedAt.Format(time.RFC1123Z)
		}
		postURL := BuildURL(cfg.URL, "blog", p.Slug)
		item := rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: content.StripTags(p.Excerpt),
			Category:    p.CategoryName,
			PubDate:     p.CreatedAt.Format(time.RFC1123Z),
			GUID:        rssGUID{Value: postURL, IsPermaLink: true},
		}
		if p.FeaturedImg != "" {
			item.Enclosure = &rssEnclosure{URL: AbsoluteURL(cfg.URL, p.FeaturedImg), Type: "image/jpeg"}
		}
		items = append(items, item)
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:         cfg.Name,
			Link:          BuildURL(cfg.URL),
			Description:   cfg.Description,
			Language:      "en",
			LastBuildDate: lastBuild,
			Items:         items,
		},
	}
}

func (a *App) renderRSS(c echo.Context, posts []Post) error {
	return writeXML(c, "application/rss+xml; charset=utf-8", buildFeed(a.Config, posts))
}

func writeXML(c echo.Context, contentType string, v any) error {
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(v)
}
