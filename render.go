package insighthub

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/insighthub/content"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// Site is the per-request chrome shared by every public page.
type Site struct {
	Config  SiteConfig
	Meta    PageMeta
	Sidebar Sidebar
	CSRF    string
	Admin   bool
}

// HomePage is the data for "/".
type HomePage struct {
	Site
	Latest []Post
}

// ListingPage is the data for "/blog/".
type ListingPage struct {
	Site
	Query      ListQuery
	Result     PostPage
	Pagination Pagination
	Category   *Category
	// TooShort is set when the search term was ignored for being one character.
	TooShort bool
}

// ArticlePage is the data for "/blog/:slug/".
type ArticlePage struct {
	Site
	Post        Post
	Body        string // sanitized content with heading ids
	Headings    []content.Heading
	ShowTOC     bool
	ReadingTime int
	Related     []Post
	Comments    []Comment
	JSONLD      []string
}

// ContactPage is the data for "/contact/".
type ContactPage struct {
	Site
	Form  ContactInput
	Sent  bool
	Error string
}

// StaticPage is an informational page such as about or privacy policy.
type StaticPage struct {
	Site
	Kind string // "about", "privacy", or "terms"
}

// ErrorPage is the data for the 404 and 500 pages.
type ErrorPage struct {
	Site
	Code int
}

// AdminLoginPage is the data for the admin login form.
type AdminLoginPage struct {
	CSRF      string
	ShowError bool
	Email     string
}

// AdminDashboardPage is the data for the admin overview.
type AdminDashboardPage struct {
	CSRF        string
	Email       string
	Message     string
	Stats       Stats
	Posts       []Post
	Categories  []Category
	Messages    []ContactMessage
	Subscribers []Subscriber
}

// AdminPostForm is the data for the post editor.
type AdminPostForm struct {
	CSRF       string
	ID         string // empty for a new post
	Input      PostInput
	FAQsJSON   string
	Categories []Category
	Error      string
	DraftKey   string
}

// AdminImagesPage is the data for the image library.
type AdminImagesPage struct {
	CSRF    string
	Images  []Image
	Message string
}

// ViewFuncs holds the templ components the App calls when rendering pages.
// The views package provides the default set.
type ViewFuncs struct {
	Home           func(HomePage) templ.Component
	Listing        func(ListingPage) templ.Component
	Article        func(ArticlePage) templ.Component
	Contact        func(ContactPage) templ.Component
	Static         func(StaticPage) templ.Component
	NotFound       func(ErrorPage) templ.Component
	ServerError    func(ErrorPage) templ.Component
	AdminLogin     func(AdminLoginPage) templ.Component
	AdminDashboard func(AdminDashboardPage) templ.Component
	AdminPostForm  func(AdminPostForm) templ.Component
	AdminImages    func(AdminImagesPage) templ.Component
}

// site assembles the shared chrome. A failing sidebar load degrades to an
// empty sidebar so the page itself still renders.
func (a *App) site(c echo.Context, meta PageMeta) Site {
	sb, err := a.Sidebar.Get(c.Request().Context())
	if err != nil {
		a.Log.Warnw("sidebar load failed", "err", err)
	}
	if meta.Title == "" {
		meta.Title = a.Config.Name
	} else {
		meta.Title += " - " + a.Config.Name
	}
	if meta.Description == "" {
		meta.Description = a.Config.Description
	}
	if meta.OGType == "" {
		meta.OGType = "website"
	}
	meta.URL = BuildURL(a.Config.URL, meta.URL)
	return Site{
		Config:  a.Config,
		Meta:    meta,
		Sidebar: sb,
		CSRF:    CsrfToken(c),
		Admin:   IsAdmin(c),
	}
}

func (a *App) renderNotFound(c echo.Context) error {
	page := ErrorPage{Site: a.site(c, PageMeta{Title: "Page not found"}), Code: http.StatusNotFound}
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(page))
}
