package insighthub

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/insighthub/content"
)

const (
	homeLatestCount = 6
	relatedCount    = 3
)

func (a *App) handleHome(c echo.Context) error {
	latest, err := a.Store.LatestPosts(c.Request().Context(), homeLatestCount)
	if err != nil {
		return err
	}
	site := a.site(c, PageMeta{})
	return Render(c, a.Views.Home(HomePage{Site: site, Latest: latest}))
}

func (a *App) handleListing(c echo.Context) error {
	ctx := c.Request().Context()
	page, _ := strconv.Atoi(c.QueryParam("page"))
	q := ListQuery{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Page:     page,
	}
	result, err := a.Store.ListPosts(ctx, q)
	if err != nil {
		return err
	}

	meta := PageMeta{Title: "All Articles", URL: "blog"}
	var cat *Category
	if q.Category != "" {
		found, err := a.Store.CategoryBySlug(ctx, q.Category)
		switch {
		case err == nil:
			cat = &found
			meta.Title = found.Name + " Articles"
		case !IsNotFound(err):
			return err
		}
	}
	if q.Search != "" {
		meta.Title = fmt.Sprintf("Search results for %q", q.Search)
	}

	return Render(c, a.Views.Listing(ListingPage{
		Site:       a.site(c, meta),
		Query:      q,
		Result:     result,
		Pagination: NewPagination(result.TotalCount, result.CurrentPage, ListPageSize),
		Category:   cat,
		TooShort:   q.Search != "" && len([]rune(q.Search)) < minSearchRunes,
	}))
}

func (a *App) handleArticle(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Store.ReadPost(ctx, c.Param("slug"))
	if IsNotFound(err) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}
	postViewsTotal.Inc()

	related, err := a.Store.RelatedPosts(ctx, post, relatedCount)
	if err != nil {
		return err
	}
	comments, err := a.Store.ListComments(ctx, post.ID)
	if err != nil {
		return err
	}

	body := content.AddHeadingIDs(post.Content)
	headings := content.ExtractHeadings(body)
	jsonLD := []string{BlogPostingJsonLD(post, a.Config)}
	if faq := FAQPageJsonLD(post); faq != "" {
		jsonLD = append(jsonLD, faq)
	}

	meta := PageMeta{
		Title:       post.Title,
		Description: post.Excerpt,
		URL:         post.Link(),
		OGType:      "article",
		Image:       AbsoluteURL(a.Config.URL, post.FeaturedImg),
	}
	return Render(c, a.Views.Article(ArticlePage{
		Site:        a.site(c, meta),
		Post:        post,
		Body:        body,
		Headings:    headings,
		ShowTOC:     content.ShowTOC(headings),
		ReadingTime: content.ReadingTime(post.Content),
		Related:     related,
		Comments:    comments,
		JSONLD:      jsonLD,
	}))
}

func (a *App) handleContact(c echo.Context) error {
	site := a.site(c, PageMeta{Title: "Contact Us", URL: "contact"})
	return Render(c, a.Views.Contact(ContactPage{Site: site, Sent: c.QueryParam("sent") == "1"}))
}

func (a *App) handleContactSubmit(c echo.Context) error {
	var in ContactInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	_, err := a.Store.CreateContactMessage(c.Request().Context(), in)
	var ve *ValidationError
	if errors.As(err, &ve) {
		site := a.site(c, PageMeta{Title: "Contact Us", URL: "contact"})
		return RenderStatus(c, http.StatusBadRequest, a.Views.Contact(ContactPage{Site: site, Form: in, Error: ve.Message}))
	}
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/contact/?sent=1")
}

func (a *App) handleStatic(kind, title string) echo.HandlerFunc {
	return func(c echo.Context) error {
		site := a.site(c, PageMeta{Title: title, URL: strings.Trim(c.Path(), "/")})
		return Render(c, a.Views.Static(StaticPage{Site: site, Kind: kind}))
	}
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Store.PublishedPosts(ctx)
	if err != nil {
		return err
	}
	cats, err := a.Store.ListCategories(ctx)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, cats)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Store.LatestPosts(c.Request().Context(), feedSize)
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(filepath.Join(a.Config.StaticDir, "favicon.svg"))
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /admin/\nDisallow: /api/\n\nSitemap: " +
		strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) handleHealth(c echo.Context) error {
	if err := a.Store.Ping(c.Request().Context()); err != nil {
		a.Log.Errorw("health check failed", "err", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	path := c.Request().URL.Path
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound && !strings.HasPrefix(path, "/api/") {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.logServerError(c, err)
		if strings.HasPrefix(path, "/api/") {
			_ = c.JSON(code, errorBody{Error: "Internal server error"})
			return
		}
		page := ErrorPage{Site: Site{Config: a.Config, Meta: PageMeta{Title: "Server error - " + a.Config.Name}}, Code: code}
		_ = RenderStatus(c, code, a.Views.ServerError(page))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
