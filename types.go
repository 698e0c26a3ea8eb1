package insighthub

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eringen/insighthub/content"
)

// Post is the core content type stored in SQLite and rendered by templates.
type Post struct {
	ID           string    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Slug         string    `db:"slug" json:"slug"`
	Excerpt      string    `db:"excerpt" json:"excerpt"`
	Content      string    `db:"content" json:"content"`
	CategoryID   *string   `db:"category_id" json:"categoryId"`
	CategoryName string    `db:"category_name" json:"categoryName,omitempty"`
	CategorySlug string    `db:"category_slug" json:"categorySlug,omitempty"`
	Tags         string    `db:"tags" json:"tags"`
	FeaturedImg  string    `db:"featured_img" json:"featuredImg"`
	Published    bool      `db:"published" json:"published"`
	Views        int64     `db:"views" json:"views"`
	FAQs         FAQList   `db:"faqs" json:"faqs"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Link returns the canonical site path of the post.
func (p Post) Link() string {
	return "/blog/" + p.Slug + "/"
}

// TagList splits the comma-separated tag column.
func (p Post) TagList() []string {
	return ParseTags(p.Tags)
}

// Category groups posts. PostCount is filled by listing queries only.
type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	PostCount int       `db:"post_count" json:"postCount"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Comment is a reader comment attached to a post.
type Comment struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"postId"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"-"`
	Content   string    `db:"content" json:"content"`
	Approved  bool      `db:"approved" json:"approved"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Subscriber is a newsletter signup.
type Subscriber struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ContactMessage is a write-once message from the contact form.
type ContactMessage struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Subject   string    `db:"subject" json:"subject"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Image is metadata about an uploaded image stored under the static dir.
type Image struct {
	Filename     string    `db:"filename" json:"filename"`
	OriginalName string    `db:"original_name" json:"originalName"`
	Width        int       `db:"width" json:"width"`
	Height       int       `db:"height" json:"height"`
	Size         int       `db:"size" json:"size"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploadedAt"`
}

// URL returns the public path of the image.
func (i Image) URL() string {
	return "/public/" + uploadsSubdir + "/" + i.Filename
}

// Admin is a dashboard account.
type Admin struct {
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// SearchResult is the lightweight post summary returned by quick search.
type SearchResult struct {
	ID           string `db:"id" json:"id"`
	Title        string `db:"title" json:"title"`
	Slug         string `db:"slug" json:"slug"`
	Excerpt      string `db:"excerpt" json:"excerpt"`
	FeaturedImg  string `db:"featured_img" json:"featuredImg"`
	CategoryName string `db:"category_name" json:"categoryName"`
}

// ListQuery selects a page of published posts.
type ListQuery struct {
	Category string
	Search   string
	Page     int
}

// PostPage is one page of a listing plus pagination metadata.
type PostPage struct {
	Posts       []Post `json:"posts"`
	TotalCount  int    `json:"totalCount"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
}

// Stats are the dashboard counters.
type Stats struct {
	TotalPosts      int   `json:"totalPosts"`
	PublishedPosts  int   `json:"publishedPosts"`
	TotalViews      int64 `json:"totalViews"`
	TotalCategories int   `json:"totalCategories"`
}

// SubscribeResult tells a subscriber whether a row was created or revived.
type SubscribeResult int

const (
	Subscribed SubscribeResult = iota
	Reactivated
)

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// FAQList is the typed faqs column. Valid is false when the column is NULL
// or does not decode as a non-empty JSON array of pairs.
type FAQList struct {
	Items []content.FAQ
	Valid bool
}

// NewFAQList builds a list from items, marking it absent when none survive cleaning.
func NewFAQList(items []content.FAQ) FAQList {
	items = content.CleanFAQs(items)
	return FAQList{Items: items, Valid: len(items) > 0}
}

// Scan implements sql.Scanner. Undecodable values become an absent list.
func (f *FAQList) Scan(src any) error {
	*f = FAQList{}
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		f.Items, f.Valid = content.ParseFAQs(v)
	case []byte:
		f.Items, f.Valid = content.ParseFAQs(string(v))
	default:
		return fmt.Errorf("faqs: unsupported column type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (f FAQList) Value() (driver.Value, error) {
	if !f.Valid || len(f.Items) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(f.Items)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// MarshalJSON encodes an absent list as null.
func (f FAQList) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Items)
}

// UnmarshalJSON accepts an array of pairs, a string holding one, or null.
func (f *FAQList) UnmarshalJSON(b []byte) error {
	*f = FAQList{}
	raw := strings.TrimSpace(string(b))
	if raw == "null" || raw == "" {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f.Items, f.Valid = content.ParseFAQs(s)
		return nil
	}
	var items []content.FAQ
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*f = NewFAQList(items)
	return nil
}

// ParseTags splits a comma-delimited tag string into trimmed, non-empty tags.
func ParseTags(tagString string) []string {
	return FilterEmpty(strings.Split(tagString, ","))
}
