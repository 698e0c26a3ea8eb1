// Package views is the default set of page templates for an insighthub site.
//
// Pages are html/template files embedded in the binary. Each page is parsed
// together with its layout into its own template set and exposed to the
// App as a templ.Component through Funcs.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/insighthub"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	publicLayout = "templates/layout.html"
	adminLayout  = "templates/admin_layout.html"
)

// pages maps a page template to the layout it renders inside.
var pages = map[string]string{
	"home.html":            publicLayout,
	"listing.html":         publicLayout,
	"article.html":         publicLayout,
	"contact.html":         publicLayout,
	"static.html":          publicLayout,
	"error.html":           publicLayout,
	"admin_login.html":     adminLayout,
	"admin_dashboard.html": adminLayout,
	"admin_post_form.html": adminLayout,
	"admin_images.html":    adminLayout,
}

// Set holds the parsed page templates.
type Set struct {
	pages map[string]*template.Template
}

// Parse loads every page template with its layout and the shared partials.
func Parse() (*Set, error) {
	s := &Set{pages: make(map[string]*template.Template, len(pages))}
	for page, layout := range pages {
		t, err := template.New(page).Funcs(FuncMap()).ParseFS(templateFS,
			layout, "templates/partials.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		s.pages[page] = t
	}
	return s, nil
}

// MustParse is Parse that panics on error. Templates are embedded, so a
// failure here is a build defect.
func MustParse() *Set {
	s, err := Parse()
	if err != nil {
		panic(err)
	}
	return s
}

// component renders the layout of page with data.
func (s *Set) component(page string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := s.pages[page]
		if !ok {
			return fmt.Errorf("views: unknown page %q", page)
		}
		return t.ExecuteTemplate(w, "layout", data)
	})
}

// Funcs returns the ViewFuncs backed by this set.
func (s *Set) Funcs() insighthub.ViewFuncs {
	return insighthub.ViewFuncs{
		Home: func(p insighthub.HomePage) templ.Component {
			return s.component("home.html", p)
		},
		Listing: func(p insighthub.ListingPage) templ.Component {
			return s.component("listing.html", p)
		},
		Article: func(p insighthub.ArticlePage) templ.Component {
			return s.component("article.html", p)
		},
		Contact: func(p insighthub.ContactPage) templ.Component {
			return s.component("contact.html", p)
		},
		Static: func(p insighthub.StaticPage) templ.Component {
			return s.component("static.html", p)
		},
		NotFound: func(p insighthub.ErrorPage) templ.Component {
			return s.component("error.html", p)
		},
		ServerError: func(p insighthub.ErrorPage) templ.Component {
			return s.component("error.html", p)
		},
		AdminLogin: func(p insighthub.AdminLoginPage) templ.Component {
			return s.component("admin_login.html", p)
		},
		AdminDashboard: func(p insighthub.AdminDashboardPage) templ.Component {
			return s.component("admin_dashboard.html", p)
		},
		AdminPostForm: func(p insighthub.AdminPostForm) templ.Component {
			return s.component("admin_post_form.html", p)
		},
		AdminImages: func(p insighthub.AdminImagesPage) templ.Component {
			return s.component("admin_images.html", p)
		},
	}
}

// Funcs parses the embedded templates and returns the default ViewFuncs.
func Funcs() insighthub.ViewFuncs {
	return MustParse().Funcs()
}
