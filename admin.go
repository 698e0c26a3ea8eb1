package insighthub

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/insighthub/content"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(AdminLoginPage{CSRF: CsrfToken(c)}))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	email := strings.TrimSpace(c.FormValue("email"))
	ok, err := a.Store.Authenticate(c.Request().Context(), email, c.FormValue("password"))
	if err != nil {
		return err
	}
	if !ok {
		a.loginLimiter.Record(ip)
		a.Log.Warnw("admin login failed", "email", email, "ip", ip)
		return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(AdminLoginPage{
			CSRF:      CsrfToken(c),
			ShowError: true,
			Email:     email,
		}))
	}
	a.loginLimiter.Reset(ip)
	if err := setAdminSession(c, normalizeEmail(email)); err != nil {
		return err
	}
	a.Log.Infow("admin login", "email", email, "ip", ip)
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	ctx := c.Request().Context()
	stats, err := a.Store.Stats(ctx)
	if err != nil {
		return err
	}
	posts, err := a.Store.ListAllPosts(ctx)
	if err != nil {
		return err
	}
	cats, err := a.Store.ListCategories(ctx)
	if err != nil {
		return err
	}
	msgs, err := a.Store.ListContactMessages(ctx)
	if err != nil {
		return err
	}
	subs, err := a.Store.ListSubscribers(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(AdminDashboardPage{
		CSRF:        CsrfToken(c),
		Email:       AdminEmail(c),
		Message:     msg,
		Stats:       stats,
		Posts:       posts,
		Categories:  cats,
		Messages:    msgs,
		Subscribers: subs,
	}))
}

func (a *App) handleAdminNewPost(c echo.Context) error {
	return a.renderPostForm(c, http.StatusOK, AdminPostForm{})
}

func (a *App) handleAdminEditPost(c echo.Context) error {
	post, err := a.Store.PostByID(c.Request().Context(), c.Param("id"))
	if IsNotFound(err) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}
	form := AdminPostForm{
		ID: post.ID,
		Input: PostInput{
			Title:       post.Title,
			Slug:        post.Slug,
			Excerpt:     post.Excerpt,
			Content:     post.Content,
			Tags:        post.Tags,
			FeaturedImg: post.FeaturedImg,
			Published:   post.Published,
			FAQs:        post.FAQs,
		},
	}
	if post.CategoryID != nil {
		form.Input.CategoryID = *post.CategoryID
	}
	return a.renderPostForm(c, http.StatusOK, form)
}

func (a *App) renderPostForm(c echo.Context, code int, form AdminPostForm) error {
	cats, err := a.Store.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	form.CSRF = CsrfToken(c)
	form.Categories = cats
	form.DraftKey = "insighthub-draft-new"
	if form.ID != "" {
		form.DraftKey = "insighthub-draft-" + form.ID
	}
	if form.FAQsJSON == "" && form.Input.FAQs.Valid {
		b, _ := form.Input.FAQs.MarshalJSON()
		form.FAQsJSON = string(b)
	}
	return RenderStatus(c, code, a.Views.AdminPostForm(form))
}

func (a *App) handleAdminSavePost(c echo.Context) error {
	var in PostInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	id := strings.TrimSpace(c.FormValue("id"))
	faqsRaw := c.FormValue("faqs")
	if items, ok := content.ParseFAQs(faqsRaw); ok {
		in.FAQs = NewFAQList(items)
	}

	ctx := c.Request().Context()
	var err error
	if id == "" {
		_, err = a.Store.CreatePost(ctx, in)
	} else {
		_, err = a.Store.UpdatePost(ctx, id, in)
	}
	if IsValidation(err) {
		return a.renderPostForm(c, http.StatusBadRequest, AdminPostForm{
			ID:       id,
			Input:    in,
			FAQsJSON: faqsRaw,
			Error:    err.Error(),
		})
	}
	if IsNotFound(err) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}
	a.Sidebar.Invalidate()
	return adminRedirect(c, "Post saved.")
}

func (a *App) handleAdminDeletePost(c echo.Context) error {
	err := a.Store.DeletePost(c.Request().Context(), c.Param("id"))
	if err != nil && !IsNotFound(err) {
		return err
	}
	a.Sidebar.Invalidate()
	return adminRedirect(c, "Post deleted.")
}

func (a *App) handleAdminCreateCategory(c echo.Context) error {
	var in CategoryInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	_, err := a.Store.CreateCategory(c.Request().Context(), in)
	if IsValidation(err) {
		return adminRedirect(c, err.Error())
	}
	if err != nil {
		return err
	}
	a.Sidebar.Invalidate()
	return adminRedirect(c, "Category created.")
}

func (a *App) handleAdminDeleteCategory(c echo.Context) error {
	err := a.Store.DeleteCategory(c.Request().Context(), c.Param("id"))
	if err != nil && !IsNotFound(err) {
		return err
	}
	a.Sidebar.Invalidate()
	return adminRedirect(c, "Category deleted.")
}
