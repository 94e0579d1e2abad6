package client

import "sync"

type pageKey struct {
	scope string
	page  int
}

// PageCache remembers pages by (scope, page). Paginators run without one unless given.
type PageCache[R any] struct {
	mu    sync.RWMutex
	pages map[pageKey]R
}

func NewPageCache[R any]() *PageCache[R] {
	return &PageCache[R]{pages: make(map[pageKey]R)}
}

func (c *PageCache[R]) Get(scope string, page int) (R, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.pages[pageKey{scope, page}]
	return r, ok
}

func (c *PageCache[R]) Put(scope string, page int, r R) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[pageKey{scope, page}] = r
}

// Invalidate drops every page of scope
func (c *PageCache[R]) Invalidate(scope string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.pages {
		if k.scope == scope {
			delete(c.pages, k)
		}
	}
}

func (c *PageCache[R]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = make(map[pageKey]R)
}
