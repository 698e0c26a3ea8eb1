package insighthub

import (
	"context"
	"strings"

	"github.com/eringen/insighthub/content"
)

const categorySelect = `SELECT c.id, c.name, c.slug, c.created_at, COUNT(p.id) AS post_count
FROM categories c LEFT JOIN posts p ON p.category_id = c.id AND p.published = 1`

// ListCategories returns all categories by name with their published post counts.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	cats := []Category{}
	if err := s.db.SelectContext(ctx, &cats, categorySelect+` GROUP BY c.id ORDER BY c.name ASC`); err != nil {
		return nil, storeErr("list categories", err)
	}
	return cats, nil
}

// CategoryBySlug looks up one category.
func (s *Store) CategoryBySlug(ctx context.Context, slug string) (Category, error) {
	var c Category
	if err := s.db.GetContext(ctx, &c, categorySelect+` WHERE c.slug = ? GROUP BY c.id`, slug); err != nil {
		return Category{}, storeErr("category by slug", err)
	}
	return c, nil
}

// CreateCategory adds a category whose slug is derived from its name.
func (s *Store) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return Category{}, err
	}
	slug := content.Slugify(in.Name)
	if slug == "" {
		return Category{}, invalid("name", "name must contain letters or digits")
	}
	c := Category{ID: newID(), Name: in.Name, Slug: slug, CreatedAt: s.now()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, slug, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.CreatedAt)
	if isUniqueViolation(err) {
		return Category{}, ErrDuplicateSlug
	}
	if err != nil {
		return Category{}, storeErr("create category", err)
	}
	return c, nil
}

// DeleteCategory removes a category. Its posts stay and become uncategorized.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete category", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
