package dashboard

import "sync"

// responseCache memoizes rendered JSON responses keyed by view and
// filter combination. The store is rebuilt only between runs, so
// entries never need invalidation within a server's lifetime.
type responseCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newResponseCache() *responseCache {
	return &responseCache{entries: make(map[string][]byte)}
}

func (c *responseCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	body, ok := c.entries[key]
	return body, ok
}

func (c *responseCache) put(key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = body
}
