package insighthub

import (
	"net/url"
	"strconv"
)

// Pagination describes the position of one listing page.
type Pagination struct {
	TotalItems  int
	PageSize    int
	TotalPages  int
	CurrentPage int
	HasPrev     bool
	HasNext     bool
}

// PageLink is one entry of the page selector: a page number or an ellipsis.
type PageLink struct {
	Number   int
	Current  bool
	Ellipsis bool
}

func pageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// NewPagination clamps page into [1, max(1, TotalPages)].
func NewPagination(total, page, size int) Pagination {
	pages := pageCount(total, size)
	if page < 1 {
		page = 1
	}
	if last := max(1, pages); page > last {
		page = last
	}
	return Pagination{
		TotalItems:  total,
		PageSize:    size,
		TotalPages:  pages,
		CurrentPage: page,
		HasPrev:     page > 1,
		HasNext:     page < pages,
	}
}

// Links lists the first and last pages and the neighbours of the current
// page. Pages two away from the current one collapse into an ellipsis.
func (p Pagination) Links() []PageLink {
	var links []PageLink
	for n := 1; n <= p.TotalPages; n++ {
		d := n - p.CurrentPage
		if d < 0 {
			d = -d
		}
		switch {
		case n == 1 || n == p.TotalPages || d <= 1:
			links = append(links, PageLink{Number: n, Current: n == p.CurrentPage})
		case d == 2:
			links = append(links, PageLink{Ellipsis: true})
		}
	}
	return links
}

// ListURL builds the listing link for page n, keeping the category and
// search filters of q.
func ListURL(q ListQuery, n int) string {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if n > 1 {
		v.Set("page", strconv.Itoa(n))
	}
	if len(v) == 0 {
		return "/blog/"
	}
	return "/blog/?" + v.Encode()
}
