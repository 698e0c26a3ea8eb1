package insighthub

import (
	"context"
	"sync"
	"time"
)

// SidebarTrendingCount is the number of trending posts kept in the sidebar.
const SidebarTrendingCount = 5

// Sidebar is the data shown next to every public page.
type Sidebar struct {
	Categories []Category
	Trending   []Post
}

// SidebarCache is an in-memory cache of categories and trending posts with TTL.
type SidebarCache struct {
	mu      sync.RWMutex
	data    *Sidebar
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewSidebarCache creates a SidebarCache backed by the given Store.
func NewSidebarCache(s *Store, ttl time.Duration) *SidebarCache {
	return &SidebarCache{store: s, ttl: ttl}
}

func (c *SidebarCache) valid() bool {
	return c.data != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *SidebarCache) Invalidate() {
	c.mu.Lock()
	c.data = nil
	c.mu.Unlock()
}

func (c *SidebarCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	cats, err := c.store.ListCategories(ctx)
	if err != nil {
		return err
	}
	trending, err := c.store.TrendingPosts(ctx, SidebarTrendingCount)
	if err != nil {
		return err
	}
	c.data = &Sidebar{Categories: cats, Trending: trending}
	c.fetched = time.Now()
	return nil
}

// Get returns the cached sidebar after ensuring it is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *SidebarCache) Get(ctx context.Context) (Sidebar, error) {
	c.mu.RLock()
	if c.valid() {
		data := *c.data
		c.mu.RUnlock()
		return data, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return Sidebar{}, err
	}
	return *c.data, nil
}
