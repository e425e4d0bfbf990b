package derive

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/lilblessings/White-River-Basin/internal/domain"
)

// CacheKey builds a view-cache key from the station, its store revision, and
// the interval. Any ingest bumps the revision, so stale entries become
// unreachable and age out of the LRU; the full-recomputation model holds.
func CacheKey(station string, revision uint64, interval domain.Interval) string {
	return fmt.Sprintf("%s|%d|%s|%s",
		station, revision,
		interval.Start.UTC().Format(time.RFC3339),
		interval.End.UTC().Format(time.RFC3339),
	)
}

// ViewCache is a thread-safe LRU cache of derived views.
type ViewCache struct {
	maxEntries int

	mu    sync.Mutex
	index map[string]*list.Element
	order *list.List // front is most recently used
}

type cacheEntry struct {
	key  string
	view View
}

// NewViewCache creates a ViewCache holding at most maxEntries views.
func NewViewCache(maxEntries int) *ViewCache {
	return &ViewCache{
		maxEntries: maxEntries,
		index:      make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Get returns the cached view for key, marking it most recently used.
func (c *ViewCache) Get(key string) (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		return View{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).view, true
}

// Put stores a view under key, evicting the least recently used entry when
// the cache is full.
func (c *ViewCache) Put(key string, view View) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		el.Value.(*cacheEntry).view = view
		c.order.MoveToFront(el)
		return
	}

	c.index[key] = c.order.PushFront(&cacheEntry{key: key, view: view})

	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(*cacheEntry).key)
	}
}
