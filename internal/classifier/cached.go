package classifier

import (
	"crypto/sha256"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached memoizes another classifier. Snippets are keyed by their SHA-256
// so large blocks are not retained.
type Cached struct {
	next  Classifier
	cache *lru.Cache[[sha256.Size]byte, Category]
}

func NewCached(next Classifier, size int) (*Cached, error) {
	cache, err := lru.New[[sha256.Size]byte, Category](size)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Classify(snippet string) Category {
	key := sha256.Sum256([]byte(snippet))
	if cat, ok := c.cache.Get(key); ok {
		return cat
	}
	cat := c.next.Classify(snippet)
	c.cache.Add(key, cat)
	return cat
}

func (c *Cached) Len() int {
	return c.cache.Len()
}
