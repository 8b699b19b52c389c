package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLCacheBasicOperations(t *testing.T) {
	c, err := NewURLCache(10)
	require.NoError(t, err)

	_, ok := c.Get("https://en.wikipedia.org/wiki/Go")
	assert.False(t, ok)

	c.Add("https://en.wikipedia.org/wiki/Go", 42)
	id, ok := c.Get("https://en.wikipedia.org/wiki/Go")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, 1, c.Len())

	c.Remove("https://en.wikipedia.org/wiki/Go")
	_, ok = c.Get("https://en.wikipedia.org/wiki/Go")
	assert.False(t, ok)
}

func TestURLCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewURLCache(3)
	require.NoError(t, err)

	url := func(i int) string { return fmt.Sprintf("https://en.wikipedia.org/wiki/Article_%d", i) }

	c.Add(url(1), 1)
	c.Add(url(2), 2)
	c.Add(url(3), 3)

	// Overflow evicts the oldest entry first.
	c.Add(url(4), 4)
	_, ok := c.Get(url(1))
	assert.False(t, ok)
	assert.Equal(t, 3, c.Len())

	for i := 2; i <= 4; i++ {
		_, ok := c.Get(url(i))
		assert.True(t, ok, "entry %d should survive", i)
	}
}

func TestURLCacheGetProtectsFromEviction(t *testing.T) {
	c, err := NewURLCache(3)
	require.NoError(t, err)

	url := func(i int) string { return fmt.Sprintf("https://en.wikipedia.org/wiki/Article_%d", i) }

	c.Add(url(1), 1)
	c.Add(url(2), 2)
	c.Add(url(3), 3)

	// Touching entry 1 makes entry 2 the eviction candidate.
	_, ok := c.Get(url(1))
	require.True(t, ok)

	c.Add(url(4), 4)

	_, ok = c.Get(url(1))
	assert.True(t, ok)
	_, ok = c.Get(url(2))
	assert.False(t, ok)
}
