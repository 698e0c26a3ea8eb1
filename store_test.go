package insighthub

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/insighthub/content"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	// Advance one second per call so created_at ordering is deterministic.
	var mu sync.Mutex
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func mustCategory(t *testing.T, s *Store, name string) Category {
	t.Helper()
	c, err := s.CreateCategory(context.Background(), CategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func postInput(title, categoryID string) PostInput {
	return PostInput{
		Title:      title,
		Excerpt:    "Excerpt of " + title,
		Content:    "<h2>Intro</h2><p>Body of " + title + "</p>",
		CategoryID: categoryID,
		Tags:       "go,  testing ,",
		Published:  true,
	}
}

func mustPost(t *testing.T, s *Store, in PostInput) Post {
	t.Helper()
	p, err := s.CreatePost(context.Background(), in)
	require.NoError(t, err)
	return p
}

func TestNewStoreCreatesDirectory(t *testing.T) {
	s := setupTestStore(t)
	require.NotNil(t, s.db)
	require.NoError(t, s.Ping(context.Background()))
}

func TestCreatePostDerivesSlugWithSuffix(t *testing.T) {
	s := setupTestStore(t)
	cat := mustCategory(t, s, "Technology")

	p := mustPost(t, s, postInput("Hello, World!", cat.ID))

	assert.Regexp(t, `^hello-world-[0-9a-z]+$`, p.Slug)
	assert.Equal(t, "Technology", p.CategoryName)
	assert.Equal(t, "technology", p.CategorySlug)
	assert.Equal(t, "go, testing", p.Tags)
	assert.Equal(t, []string{"go", "testing"}, p.TagList())
	assert.Zero(t, p.Views)
	assert.False(t, p.FAQs.Valid)
	assert.Equal(t, "/blog/"+p.Slug+"/", p.Link())
}

func TestCreatePostExplicitSlugAndDuplicate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	cat := mustCategory(t, s, "Technology")

	in := postInput("First", cat.ID)
	in.Slug = "My Custom Slug"
	p := mustPost(t, s, in)
	assert.Equal(t, "my-custom-slug", p.Slug)

	dup := postInput("Second", cat.ID)
	dup.Slug = "my-custom-slug"
	_, err := s.CreatePost(ctx, dup)
	require.ErrorIs(t, err, ErrDuplicateSlug)

	all, err := s.ListAllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "First", all[0].Title)
}

func TestCreatePostValidation(t *testing.T) {
	s := setupTestStore(t)
	cat := mustCategory(t, s, "Technology")

	tests := []struct {
		name  string
		edit  func(*PostInput)
		field string
	}{
		{"missing title", func(in *PostInput) { in.Title = "  " }, "title"},
		{"missing excerpt", func(in *PostInput) { in.Excerpt = "" }, "excerpt"},
		{"missing content", func(in *PostInput) { in.Content = "" }, "content"},
		{"missing category", func(in *PostInput) { in.CategoryID = "" }, "categoryId"},
		{"unknown category", func(in *PostInput) { in.CategoryID = "nope" }, "categoryId"},
		{"relative image", func(in *PostInput) { in.FeaturedImg = "uploads/a.jpg" }, "featuredImg"},
		{"protocol relative image", func(in *PostInput) { in.FeaturedImg = "//evil.example/a.jpg" }, "featuredImg"},
		{"unusable slug", func(in *PostInput) { in.Slug = "!!!" }, "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := postInput("Valid", cat.ID)
			tt.edit(&in)
			_, err := s.CreatePost(context.Background(), in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestCreatePostAcceptsImageRefs(t *testing.T) {
	s := setupTestStore(t)
	cat := mustCategory(t, s, "Technology")

	for _, ref := range []string{"/public/uploads/a.jpg", "https://cdn.example.com/a.png", ""} {
		in := postInput("Image "+ref, cat.ID)
		in.FeaturedImg = ref
		p := mustPost(t, s, in)
		assert.Equal(t, ref, p.FeaturedImg)
	}
}

func TestCreatePostSanitizesContentAndKeepsFAQs(t *testing.T) {
	s := setupTestStore(t)
	cat := mustCategory(t, s, "Technology")

	in := postInput("Safe", cat.ID)
	in.Content = `<h2 id="start">Start</h2><p onclick="x()">hi</p><script>alert(1)</script>`
	in.FAQs = NewFAQList([]content.FAQ{{Question: " Q1 ", Answer: "A1"}, {Question: " ", Answer: " "}})
	p := mustPost(t, s, in)

	assert.Contains(t, p.Content, `<h2 id="start">Start</h2>`)
	assert.NotContains(t, p.Content, "onclick")
	assert.NotContains(t, p.Content, "<script>")
	require.True(t, p.FAQs.Valid)
	assert.Equal(t, []content.FAQ{{Question: "Q1", Answer: "A1"}}, p.FAQs.Items)
}

func TestPostContentEmptyAfterSanitizingIsRejected(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	cat := mustCategory(t, s, "Technology")
	p := mustPost(t, s, postInput("Kept", cat.ID))

	in := postInput("Scripted", cat.ID)
	in.Content = `<script>alert(1)</script> <style>p{}</style>`
	_, err := s.CreatePost(ctx, in)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "content is required", ve.Message)

	_, err = s.UpdatePost(ctx, p.ID, in)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "content", ve.Field)

	all, err := s.ListAllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, p.Content, all[0].Content)
}

func TestUpdatePost(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	tech := mustCategory(t, s, "Technology")
	life := mustCategory(t, s, "Lifestyle")

	p := mustPost(t, s, postInput("Original", tech.ID))
	other := mustPost(t, s, postInput("Other", tech.ID))

	in := postInput("Renamed", life.ID)
	in.Published = false
	up, err := s.UpdatePost(ctx, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, p.Slug, up.Slug, "empty slug keeps the current one")
	assert.Equal(t, "Renamed", up.Title)
	assert.Equal(t, "Lifestyle", up.CategoryName)
	assert.False(t, up.Published)
	assert.True(t, up.UpdatedAt.After(p.UpdatedAt))

	in.Slug = other.Slug
	_, err = s.UpdatePost(ctx, p.ID, in)
	require.ErrorIs(t, err, ErrDuplicateSlug)

	_, err = s.UpdatePost(ctx, "missing", postInput("X", tech.ID))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePostCascadesComments(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	cat := mustCategory(t, s, "Technology")
	p := mustPost(t, s, postInput("Doomed", cat.ID))

	_, err := s.CreateComment(ctx, CommentInput{PostID: p.ID, Name: "Ann", Email: "ann@example.com", Content: "Nice"})
	require.NoError(t, err)

	require.NoError(t, s.DeletePost(ctx, p.ID))
	require.ErrorIs(t, s.DeletePost(ctx, p.ID), ErrNotFound)

	comments, err := s.ListComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestListPostsPagination(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	cat := mustCategory(t, s, "Technology")
	for i := 1; i <= 20; i++ {
		mustPost(t, s, postInput(fmt.Sprintf("Post %02d", i), cat.ID))
	}
	draft := postInput("Draft", cat.ID)
	draft.Published = false
	mustPost(t, s, draft)

	first, err := s.ListPosts(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 20, first.TotalCount)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, 1, first.CurrentPage)
	require.Len(t, first.Posts, ListPageSize)
	assert.Equal(t, "Post 20", first.Posts[0].Title, "newest first")

	last, err := s.ListPosts(ctx, ListQuery{Page: 3})
	require.NoError(t, err)
	require.Len(t, last.Posts, 2)
	assert.Equal(t, "Post 01", last.Posts[1].Title)

	beyond, err := s.ListPosts(ctx, ListQuery{Page: 7})
	require.NoError(t, err)
	assert.Empty(t, beyond.Posts)
	assert.Equal(t, 7, beyond.CurrentPage)

	neg, err := s.ListPosts(ctx, ListQuery{Page: -2})
	require.NoError(t, err)
	assert.Equal(t, 1, neg.CurrentPage)
}

func TestListPostsFilters(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	tech := mustCategory(t, s, "Technology")
	life := mustCategory(t, s, "Lifestyle")

	mustPost(t, s, postInput("Remote work tips", tech.ID))
	mustPost(t, s, postInput("Morning habits", life.ID))
	pct := postInput("100% effort", life.ID)
	mustPost(t, s, pct)

	page, err := s.ListPosts(ctx, ListQuery{Category: "lifestyle"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)

	page, err = s.ListPosts(ctx, ListQuery{Search: "REMOTE"})
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalCount)
	assert.Equal(t, "Remote work tips", page.Posts[0].Title)

	page, err = s.ListPosts(ctx, ListQuery{Search: "0%"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount, "LIKE wildcards in the term are literal")

	page, err = s.ListPosts(ctx, ListQuery{Category: "technology", Search: "habits"})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)

	page, err = s.ListPosts(ctx, ListQuery{Search: "r"})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
	assert.Empty(t, page.Posts)

	page, err = s.ListPosts(ctx, ListQuery{Category: "no-such-category"})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
}

func TestQuickSearch(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	cat := mustCategory(t, s, "Business")

	in := postInput("10 Essential Tips for Productive Remote Work", cat.ID)
	in.Tags = "remote work, productivity"
	mustPost(t, s, in)
	hidden := postInput("Remote draft", cat.ID)
	hidden.Published = false
	mustPost(t, s, hidden)
	for i := 0; i < 12; i++ {
		mustPost(t, s, postInput(fmt.Sprintf("Filler %d", i), cat.ID))
	}

	results, err := s.QuickSearch(ctx, "remote")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Business", results[0].CategoryName)

	results, err = s.QuickSearch(ctx, "Filler")
	require.NoError(t, err)
	assert.Len(t, results, QuickSearchLimit)

	results, err = s.QuickSearch(ctx, " r ")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestReadPostCountsViews(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	cat := mustCategory(t, s, "Technology")
	p := mustPost(t, s, postInput("Popular", cat.ID))

	const readers = 10
	var wg sync.WaitGroup
	errs := make(chan error, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ReadPost(ctx, p.Slug)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.ReadPost(ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, int64(readers+1), got.Views)
	assert.Equal(t, "Technology", got.CategoryName)
}

func TestReadPostHidesDrafts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	cat := mustCategory(t, s, "Technology")
	in := postInput("Draft", cat.ID)
	in.Published = false
	p := mustPost(t, s, in)

	_, err := s.ReadPost(ctx, p.Slug)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.ReadPost(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	got, err := s.PostByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Views)
}

func TestRelatedLatestTrending(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	tech := mustCategory(t, s, "Technology")
	life := mustCategory(t, s, "Lifestyle")

	a := mustPost(t, s, postInput("A", tech.ID))
	b := mustPost(t, s, postInput("B", tech.ID))
	mustPost(t, s, postInput("C", life.ID))
	d := mustPost(t, s, postInput("D", tech.ID))

	for i := 0; i < 3; i++ {
		_, err := s.ReadPost(ctx, b.Slug)
		require.NoError(t, err)
	}

	related, err := s.RelatedPosts(ctx, a, 3)
	require.NoError(t, err)
	require.Len(t, related, 2)
	assert.Equal(t, d.ID, related[0].ID)
	assert.Equal(t, b.ID, related[1].ID)

	latest, err := s.LatestPosts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, d.ID, latest[0].ID)

	trending, err := s.TrendingPosts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, trending, 1)
	assert.Equal(t, b.ID, trending[0].ID)
}

func TestStats(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)

	cat := mustCategory(t, s, "Technology")
	mustCategory(t, s, "Travel")
	p := mustPost(t, s, postInput("One", cat.ID))
	draft := postInput("Two", cat.ID)
	draft.Published = false
	mustPost(t, s, draft)
	_, err = s.ReadPost(ctx, p.Slug)
	require.NoError(t, err)

	st, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalPosts: 2, PublishedPosts: 1, TotalViews: 1, TotalCategories: 2}, st)
}

func TestCategories(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tech := mustCategory(t, s, "Technology")
	mustCategory(t, s, "Business")
	_, err := s.CreateCategory(ctx, CategoryInput{Name: "technology"})
	require.ErrorIs(t, err, ErrDuplicateSlug)
	_, err = s.CreateCategory(ctx, CategoryInput{Name: "  "})
	require.True(t, IsValidation(err))
	_, err = s.CreateCategory(ctx, CategoryInput{Name: "***"})
	require.True(t, IsValidation(err))

	mustPost(t, s, postInput("Published", tech.ID))
	draft := postInput("Draft", tech.ID)
	draft.Published = false
	mustPost(t, s, draft)

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Business", cats[0].Name)
	assert.Equal(t, 0, cats[0].PostCount)
	assert.Equal(t, 1, cats[1].PostCount, "drafts are not counted")

	got, err := s.CategoryBySlug(ctx, "technology")
	require.NoError(t, err)
	assert.Equal(t, tech.ID, got.ID)
	_, err = s.CategoryBySlug(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCategoryOrphansPosts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	cat := mustCategory(t, s, "Technology")
	p := mustPost(t, s, postInput("Orphan", cat.ID))

	require.NoError(t, s.DeleteCategory(ctx, cat.ID))
	require.ErrorIs(t, s.DeleteCategory(ctx, cat.ID), ErrNotFound)

	got, err := s.PostByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Empty(t, got.CategoryName)

	related, err := s.RelatedPosts(ctx, got, 3)
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestComments(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	cat := mustCategory(t, s, "Technology")
	p := mustPost(t, s, postInput("Discussed", cat.ID))
	draft := postInput("Hidden", cat.ID)
	draft.Published = false
	hidden := mustPost(t, s, draft)

	c, err := s.CreateComment(ctx, CommentInput{
		PostID:  p.ID,
		Name:    " Ann ",
		Email:   "ANN@Example.com",
		Content: "<b>Great</b> post",
	})
	require.NoError(t, err)
	assert.True(t, c.Approved)
	assert.Equal(t, "Ann", c.Name)
	assert.Equal(t, "Great post", c.Content)

	_, err = s.CreateComment(ctx, CommentInput{PostID: p.ID, Name: "Bob", Email: "bob@example.com", Content: "Second"})
	require.NoError(t, err)

	_, err = s.CreateComment(ctx, CommentInput{PostID: hidden.ID, Name: "Eve", Email: "eve@example.com", Content: "x"})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.CreateComment(ctx, CommentInput{PostID: "missing", Name: "Eve", Email: "eve@example.com", Content: "x"})
	require.ErrorIs(t, err, ErrNotFound)

	var ve *ValidationError
	_, err = s.CreateComment(ctx, CommentInput{PostID: p.ID, Name: "Eve", Email: "not-an-email", Content: "x"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Invalid email format", ve.Message)

	_, err = s.CreateComment(ctx, CommentInput{PostID: p.ID, Name: "Eve", Email: "eve@example.com", Content: "<p></p>"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "content", ve.Field)

	comments, err := s.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Bob", comments[0].Name)
}

func TestSubscribeLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	res, err := s.Subscribe(ctx, SubscribeInput{Email: " Reader@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, Subscribed, res)

	_, err = s.Subscribe(ctx, SubscribeInput{Email: "reader@example.com"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "You are already subscribed!", ve.Message)

	require.NoError(t, s.Unsubscribe(ctx, SubscribeInput{Email: "reader@example.com"}))
	require.ErrorIs(t, s.Unsubscribe(ctx, SubscribeInput{Email: "reader@example.com"}), ErrNotFound)

	subs, err := s.ListSubscribers(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)

	res, err = s.Subscribe(ctx, SubscribeInput{Email: "reader@example.com"})
	require.NoError(t, err)
	assert.Equal(t, Reactivated, res)

	subs, err = s.ListSubscribers(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "reader@example.com", subs[0].Email)

	_, err = s.Subscribe(ctx, SubscribeInput{Email: "bad"})
	require.True(t, IsValidation(err))
}

func TestContactMessages(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.CreateContactMessage(ctx, ContactInput{Name: "Ann", Email: "ann@example.com", Subject: "", Message: "Hi"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "subject", ve.Field)

	m, err := s.CreateContactMessage(ctx, ContactInput{Name: "Ann", Email: "ann@example.com", Subject: "Hello", Message: "Hi there"})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)

	msgs, err := s.ListContactMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Hello", msgs[0].Subject)
}

func TestImages(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	img := Image{Filename: "cat-abc.jpg", OriginalName: "cat.png", Width: 800, Height: 600, Size: 1234}
	require.NoError(t, s.SaveImage(ctx, img))
	require.True(t, IsValidation(s.SaveImage(ctx, img)))

	ok, err := s.ImageExists(ctx, "cat-abc.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	images, err := s.ListImages(ctx)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "/public/uploads/cat-abc.jpg", images[0].URL())

	require.NoError(t, s.DeleteImage(ctx, "cat-abc.jpg"))
	require.ErrorIs(t, s.DeleteImage(ctx, "cat-abc.jpg"), ErrNotFound)
}

func TestAdminAuthentication(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NoError(t, s.EnsureAdmin(ctx, "Admin@Example.com", hash))

	ok, err := s.Authenticate(ctx, "admin@example.com", "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Authenticate(ctx, "admin@example.com", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Authenticate(ctx, "nobody@example.com", "s3cret")
	require.NoError(t, err)
	assert.False(t, ok)

	newHash, err := HashPassword("rotated")
	require.NoError(t, err)
	require.NoError(t, s.EnsureAdmin(ctx, "admin@example.com", newHash))
	ok, err = s.Authenticate(ctx, "admin@example.com", "rotated")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = HashPassword("")
	require.True(t, IsValidation(err))
}

func TestSeedIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rep, err := Seed(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Categories: 5, Posts: 3}, rep)

	rep, err = Seed(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{}, rep)

	page, err := s.ListPosts(ctx, ListQuery{Category: "business"})
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "essential-tips-productive-remote-work", page.Posts[0].Slug)
	assert.True(t, content.ShowTOC(content.ExtractHeadings(page.Posts[0].Content)))
}
