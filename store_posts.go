package insighthub

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/insighthub/content"
)

const (
	// ListPageSize is the number of posts on one listing page.
	ListPageSize = 9
	// QuickSearchLimit caps quick search results.
	QuickSearchLimit = 10
	minSearchRunes   = 2
)

const postSelect = `SELECT p.id, p.title, p.slug, p.excerpt, p.content, p.category_id,
       COALESCE(c.name, '') AS category_name, COALESCE(c.slug, '') AS category_slug,
       p.tags, p.featured_img, p.published, p.views, p.faqs, p.created_at, p.updated_at
FROM posts p LEFT JOIN categories c ON c.id = p.category_id`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// CreatePost validates in and inserts a new post. Without an explicit slug
// the slug is derived from the title plus a base-36 timestamp suffix.
func (s *Store) CreatePost(ctx context.Context, in PostInput) (Post, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return Post{}, err
	}
	now := s.now()
	slug, err := explicitSlug(in.Slug)
	if err != nil {
		return Post{}, err
	}
	if slug == "" {
		base := content.Slugify(in.Title)
		if base == "" {
			base = "post"
		}
		slug = base + "-" + content.SlugSuffix(now)
	}

	id := newID()
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		if err := checkSlugFree(ctx, tx, slug, ""); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO posts
(id, title, slug, excerpt, content, category_id, tags, featured_img, published, views, faqs, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
			id, in.Title, slug, in.Excerpt, in.Content, in.CategoryID,
			in.Tags, in.FeaturedImg, in.Published, in.FAQs, now, now)
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return err
	})
	if err != nil {
		return Post{}, storeErr("create post", err)
	}
	return s.PostByID(ctx, id)
}

// UpdatePost replaces the editable fields of post id. An empty slug keeps
// the current one.
func (s *Store) UpdatePost(ctx context.Context, id string, in PostInput) (Post, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return Post{}, err
	}
	slug, err := explicitSlug(in.Slug)
	if err != nil {
		return Post{}, err
	}
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		var current string
		if err := tx.GetContext(ctx, &current, `SELECT slug FROM posts WHERE id = ?`, id); err != nil {
			return err
		}
		if slug == "" {
			slug = current
		}
		if err := checkCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		if slug != current {
			if err := checkSlugFree(ctx, tx, slug, id); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `UPDATE posts SET
title = ?, slug = ?, excerpt = ?, content = ?, category_id = ?, tags = ?,
featured_img = ?, published = ?, faqs = ?, updated_at = ?
WHERE id = ?`,
			in.Title, slug, in.Excerpt, in.Content, in.CategoryID, in.Tags,
			in.FeaturedImg, in.Published, in.FAQs, s.now(), id)
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return err
	})
	if err != nil {
		return Post{}, storeErr("update post", err)
	}
	return s.PostByID(ctx, id)
}

// explicitSlug normalizes a caller supplied slug. It returns "" when none
// was given and a ValidationError when one was given but has no usable
// characters.
func explicitSlug(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	slug := content.Slugify(raw)
	if slug == "" {
		return "", invalid("slug", "slug must contain letters or digits")
	}
	return slug, nil
}

func checkCategory(ctx context.Context, tx *sqlx.Tx, id string) error {
	var n int
	if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories WHERE id = ?`, id); err != nil {
		return err
	}
	if n == 0 {
		return invalid("categoryId", "category does not exist")
	}
	return nil
}

func checkSlugFree(ctx context.Context, tx *sqlx.Tx, slug, exceptID string) error {
	var n int
	if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM posts WHERE slug = ? AND id <> ?`, slug, exceptID); err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicateSlug
	}
	return nil
}

// DeletePost removes a post and, by cascade, its comments.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete post", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// PostByID returns a post regardless of published status (for admin).
func (s *Store) PostByID(ctx context.Context, id string) (Post, error) {
	var p Post
	if err := s.db.GetContext(ctx, &p, postSelect+` WHERE p.id = ?`, id); err != nil {
		return Post{}, storeErr("post by id", err)
	}
	return p, nil
}

// ListAllPosts returns every post (published and drafts), newest first.
func (s *Store) ListAllPosts(ctx context.Context) ([]Post, error) {
	posts := []Post{}
	if err := s.db.SelectContext(ctx, &posts, postSelect+` ORDER BY p.created_at DESC`); err != nil {
		return nil, storeErr("list all posts", err)
	}
	return posts, nil
}

// ListPosts returns one page of published posts filtered by category slug
// and free-text search. Rows and the total count are fetched concurrently.
func (s *Store) ListPosts(ctx context.Context, q ListQuery) (PostPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	search := strings.TrimSpace(q.Search)
	if search != "" && utf8.RuneCountInString(search) < minSearchRunes {
		return PostPage{Posts: []Post{}, CurrentPage: page}, nil
	}
	where, args := listFilter(strings.TrimSpace(q.Category), search)

	posts := []Post{}
	var total int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rowArgs := append(append([]any{}, args...), ListPageSize, (page-1)*ListPageSize)
		return s.db.SelectContext(gctx, &posts,
			postSelect+where+` ORDER BY p.created_at DESC LIMIT ? OFFSET ?`, rowArgs...)
	})
	g.Go(func() error {
		return s.db.GetContext(gctx, &total,
			`SELECT COUNT(*) FROM posts p LEFT JOIN categories c ON c.id = p.category_id`+where, args...)
	})
	if err := g.Wait(); err != nil {
		return PostPage{}, storeErr("list posts", err)
	}
	return PostPage{
		Posts:       posts,
		TotalCount:  total,
		TotalPages:  pageCount(total, ListPageSize),
		CurrentPage: page,
	}, nil
}

func listFilter(category, search string) (string, []any) {
	clauses := []string{"p.published = 1"}
	var args []any
	if category != "" {
		clauses = append(clauses, "c.slug = ?")
		args = append(args, category)
	}
	if search != "" {
		pat := likePattern(search)
		clauses = append(clauses, `(p.title LIKE ? ESCAPE '\' OR p.excerpt LIKE ? ESCAPE '\' OR p.content LIKE ? ESCAPE '\' OR p.tags LIKE ? ESCAPE '\')`)
		args = append(args, pat, pat, pat, pat)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// QuickSearch returns up to QuickSearchLimit published post summaries whose
// title, excerpt, content, or tags contain q. Queries shorter than two
// characters return an empty result without touching the database.
func (s *Store) QuickSearch(ctx context.Context, q string) ([]SearchResult, error) {
	q = strings.TrimSpace(q)
	results := []SearchResult{}
	if utf8.RuneCountInString(q) < minSearchRunes {
		return results, nil
	}
	pat := likePattern(q)
	err := s.db.SelectContext(ctx, &results, `SELECT p.id, p.title, p.slug, p.excerpt, p.featured_img,
       COALESCE(c.name, '') AS category_name
FROM posts p LEFT JOIN categories c ON c.id = p.category_id
WHERE p.published = 1
  AND (p.title LIKE ? ESCAPE '\' OR p.excerpt LIKE ? ESCAPE '\' OR p.content LIKE ? ESCAPE '\' OR p.tags LIKE ? ESCAPE '\')
ORDER BY p.created_at DESC
LIMIT ?`, pat, pat, pat, pat, QuickSearchLimit)
	if err != nil {
		return nil, storeErr("quick search", err)
	}
	return results, nil
}

// ReadPost returns the published post with slug and counts the read. The
// increment is a single UPDATE so concurrent readers never lose a view.
// Unknown and unpublished slugs both yield ErrNotFound.
func (s *Store) ReadPost(ctx context.Context, slug string) (Post, error) {
	var p Post
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var id string
		if err := tx.GetContext(ctx, &id,
			`UPDATE posts SET views = views + 1 WHERE slug = ? AND published = 1 RETURNING id`, slug); err != nil {
			return err
		}
		return tx.GetContext(ctx, &p, postSelect+` WHERE p.id = ?`, id)
	})
	if err != nil {
		return Post{}, storeErr("read post", err)
	}
	return p, nil
}

// LatestPosts returns the n newest published posts.
func (s *Store) LatestPosts(ctx context.Context, n int) ([]Post, error) {
	posts := []Post{}
	err := s.db.SelectContext(ctx, &posts,
		postSelect+` WHERE p.published = 1 ORDER BY p.created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, storeErr("latest posts", err)
	}
	return posts, nil
}

// TrendingPosts returns the n most viewed published posts.
func (s *Store) TrendingPosts(ctx context.Context, n int) ([]Post, error) {
	posts := []Post{}
	err := s.db.SelectContext(ctx, &posts,
		postSelect+` WHERE p.published = 1 ORDER BY p.views DESC, p.created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, storeErr("trending posts", err)
	}
	return posts, nil
}

// RelatedPosts returns up to n other published posts from the same category.
func (s *Store) RelatedPosts(ctx context.Context, post Post, n int) ([]Post, error) {
	posts := []Post{}
	if post.CategoryID == nil {
		return posts, nil
	}
	err := s.db.SelectContext(ctx, &posts,
		postSelect+` WHERE p.published = 1 AND p.category_id = ? AND p.id <> ? ORDER BY p.created_at DESC LIMIT ?`,
		*post.CategoryID, post.ID, n)
	if err != nil {
		return nil, storeErr("related posts", err)
	}
	return posts, nil
}

// PublishedPosts lists every published post, newest first,
// for the sitemap and feed.
func (s *Store) PublishedPosts(ctx context.Context) ([]Post, error) {
	posts := []Post{}
	err := s.db.SelectContext(ctx, &posts, postSelect+` WHERE p.published = 1 ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, storeErr("published posts", err)
	}
	return posts, nil
}

// Stats computes the dashboard counters concurrently.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.GetContext(gctx, &st.TotalPosts, `SELECT COUNT(*) FROM posts`)
	})
	g.Go(func() error {
		return s.db.GetContext(gctx, &st.PublishedPosts, `SELECT COUNT(*) FROM posts WHERE published = 1`)
	})
	g.Go(func() error {
		return s.db.GetContext(gctx, &st.TotalViews, `SELECT COALESCE(SUM(views), 0) FROM posts`)
	})
	g.Go(func() error {
		return s.db.GetContext(gctx, &st.TotalCategories, `SELECT COUNT(*) FROM categories`)
	})
	if err := g.Wait(); err != nil {
		return Stats{}, storeErr("stats", err)
	}
	return st, nil
}
