package insighthub

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// apiError maps store errors onto JSON responses: validation failures are
// 400, missing records 404, and everything else a logged 500.
func (a *App) apiError(c echo.Context, err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, errorBody{Error: ve.Message})
	case IsNotFound(err):
		return c.JSON(http.StatusNotFound, errorBody{Error: "Not found"})
	}
	a.logServerError(c, err)
	return c.JSON(http.StatusInternalServerError, errorBody{Error: "Something went wrong. Please try again."})
}

func (a *App) logServerError(c echo.Context, err error) {
	op := "unknown"
	var se *StoreError
	if errors.As(err, &se) {
		op = se.Op
	}
	storeErrorsTotal.WithLabelValues(op).Inc()
	a.Log.Errorw("request failed", "method", c.Request().Method, "path", c.Request().URL.Path, "op", op, "err", err)
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid request body"})
}

func (a *App) apiListPosts(c echo.Context) error {
	posts, err := a.Store.ListAllPosts(c.Request().Context())
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) apiGetPost(c echo.Context) error {
	post, err := a.Store.PostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) apiCreatePost(c echo.Context) error {
	var in PostInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	post, err := a.Store.CreatePost(c.Request().Context(), in)
	if err != nil {
		return a.apiError(c, err)
	}
	a.Sidebar.Invalidate()
	return c.JSON(http.StatusCreated, post)
}

func (a *App) apiUpdatePost(c echo.Context) error {
	var in PostInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	post, err := a.Store.UpdatePost(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return a.apiError(c, err)
	}
	a.Sidebar.Invalidate()
	return c.JSON(http.StatusOK, post)
}

func (a *App) apiDeletePost(c echo.Context) error {
	if err := a.Store.DeletePost(c.Request().Context(), c.Param("id")); err != nil {
		return a.apiError(c, err)
	}
	a.Sidebar.Invalidate()
	return c.NoContent(http.StatusNoContent)
}

func (a *App) apiSearch(c echo.Context) error {
	results, err := a.Store.QuickSearch(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}

func (a *App) apiListCategories(c echo.Context) error {
	cats, err := a.Store.ListCategories(c.Request().Context())
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (a *App) apiCreateCategory(c echo.Context) error {
	var in CategoryInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	cat, err := a.Store.CreateCategory(c.Request().Context(), in)
	if err != nil {
		return a.apiError(c, err)
	}
	a.Sidebar.Invalidate()
	return c.JSON(http.StatusCreated, cat)
}

func (a *App) apiDeleteCategory(c echo.Context) error {
	if err := a.Store.DeleteCategory(c.Request().Context(), c.Param("id")); err != nil {
		return a.apiError(c, err)
	}
	a.Sidebar.Invalidate()
	return c.NoContent(http.StatusNoContent)
}

func (a *App) apiListComments(c echo.Context) error {
	postID := c.QueryParam("postId")
	if postID == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Post ID is required"})
	}
	comments, err := a.Store.ListComments(c.Request().Context(), postID)
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}

func (a *App) apiCreateComment(c echo.Context) error {
	var in CommentInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	comment, err := a.Store.CreateComment(c.Request().Context(), in)
	if IsNotFound(err) {
		return c.JSON(http.StatusNotFound, errorBody{Error: "Post not found"})
	}
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusCreated, comment)
}

func (a *App) apiSubscribe(c echo.Context) error {
	var in SubscribeInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	result, err := a.Store.Subscribe(c.Request().Context(), in)
	if err != nil {
		return a.apiError(c, err)
	}
	msg := "Thank you for subscribing!"
	if result == Reactivated {
		msg = "Welcome back! Your subscription has been reactivated."
	}
	return c.JSON(http.StatusOK, messageBody{Message: msg})
}

func (a *App) apiUnsubscribe(c echo.Context) error {
	var in SubscribeInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	if in.Email == "" {
		in.Email = c.QueryParam("email")
	}
	if err := a.Store.Unsubscribe(c.Request().Context(), in); err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, messageBody{Message: "You have been unsubscribed."})
}

func (a *App) apiListSubscribers(c echo.Context) error {
	subs, err := a.Store.ListSubscribers(c.Request().Context())
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, subs)
}

func (a *App) apiCreateContact(c echo.Context) error {
	var in ContactInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	msg, err := a.Store.CreateContactMessage(c.Request().Context(), in)
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, messageBody{
		Message: "Thank you for your message! We will get back to you soon.",
		ID:      msg.ID,
	})
}

func (a *App) apiListContact(c echo.Context) error {
	msgs, err := a.Store.ListContactMessages(c.Request().Context())
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, msgs)
}

func (a *App) apiStats(c echo.Context) error {
	st, err := a.Store.Stats(c.Request().Context())
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (a *App) apiUpload(c echo.Context) error {
	img, err := a.upload(c, "file")
	if err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": img.URL(), "filename": img.Filename})
}
