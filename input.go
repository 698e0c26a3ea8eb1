package insighthub

import (
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eringen/insighthub/content"
)

var (
	reEmail  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json names so error messages match the request fields.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return reEmail.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("imgref", func(fl validator.FieldLevel) bool {
		return isImageRef(fl.Field().String())
	})
	return v
}

// isImageRef accepts an absolute http(s) URL or a site path starting with "/".
func isImageRef(s string) bool {
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func validateInput(in any) error {
	if err := validate.Struct(in); err != nil {
		return validationFromTags(err)
	}
	return nil
}

// PostInput is the editable part of a post, shared by the JSON API and the
// admin form. Content is sanitized by normalize, so a body made only of
// disallowed markup fails the required check.
type PostInput struct {
	Title       string  `json:"title" form:"title" validate:"required,max=200"`
	Slug        string  `json:"slug" form:"slug"`
	Excerpt     string  `json:"excerpt" form:"excerpt" validate:"required,max=500"`
	Content     string  `json:"content" form:"content" validate:"required"`
	CategoryID  string  `json:"categoryId" form:"categoryId" validate:"required"`
	Tags        string  `json:"tags" form:"tags"`
	FeaturedImg string  `json:"featuredImg" form:"featuredImg" validate:"omitempty,imgref"`
	Published   bool    `json:"published" form:"published"`
	FAQs        FAQList `json:"faqs" form:"-"`
}

func (in *PostInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	in.Content = strings.TrimSpace(content.Sanitize(in.Content))
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	in.Tags = strings.Join(ParseTags(in.Tags), ", ")
	in.FeaturedImg = strings.TrimSpace(in.FeaturedImg)
	in.FAQs = NewFAQList(in.FAQs.Items)
}

// CategoryInput names a new category.
type CategoryInput struct {
	Name string `json:"name" form:"name" validate:"required,max=80"`
}

// CommentInput is a reader comment submission.
type CommentInput struct {
	PostID  string `json:"postId" form:"postId" validate:"required"`
	Name    string `json:"name" form:"name" validate:"required,max=100"`
	Email   string `json:"email" form:"email" validate:"required,mailbox"`
	Content string `json:"content" form:"content" validate:"required,max=5000"`
}

func (in *CommentInput) normalize() {
	in.PostID = strings.TrimSpace(in.PostID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Content = strings.TrimSpace(in.Content)
}

// ContactInput is a contact form submission. Every field is required.
type ContactInput struct {
	Name    string `json:"name" form:"name" validate:"required,max=100"`
	Email   string `json:"email" form:"email" validate:"required,mailbox"`
	Subject string `json:"subject" form:"subject" validate:"required,max=200"`
	Message string `json:"message" form:"message" validate:"required,max=10000"`
}

func (in *ContactInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
}

// SubscribeInput is a newsletter signup or removal.
type SubscribeInput struct {
	Email string `json:"email" form:"email" validate:"required,mailbox"`
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
