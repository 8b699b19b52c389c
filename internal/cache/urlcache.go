package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// URLCache is the bounded URL -> quiz id recency cache. Lookups and
// insertions both refresh recency; when the capacity is exceeded the
// least-recently-used entry is evicted. Safe for concurrent use.
type URLCache struct {
	entries *lru.Cache[string, int64]
}

// NewURLCache creates a URLCache holding at most capacity entries.
func NewURLCache(capacity int) (*URLCache, error) {
	entries, err := lru.New[string, int64](capacity)
	if err != nil {
		return nil, err
	}
	return &URLCache{entries: entries}, nil
}

// Get returns the quiz id cached for url, refreshing its recency.
func (c *URLCache) Get(url string) (int64, bool) {
	return c.entries.Get(url)
}

// Add maps url to quizID, evicting the least-recently-used entry when
// the cache is full.
func (c *URLCache) Add(url string, quizID int64) {
	c.entries.Add(url, quizID)
}

// Remove drops a stale mapping, e.g. when the persisted row is gone.
func (c *URLCache) Remove(url string) {
	c.entries.Remove(url)
}

// Len returns the number of cached mappings.
func (c *URLCache) Len() int {
	return c.entries.Len()
}
