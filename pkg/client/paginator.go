package client

import (
	"context"
	"sync"
)

const (
	AdminPageSize    = 10
	EmployeePageSize = 10
)

// Listing is a page of rows that knows its position
type Listing interface {
	PageNumber() int
	PageCount() int
}

// Fetcher loads one page of a parent's children
type Fetcher[R Listing] func(ctx context.Context, parent string, page, size int) (R, error)

// Paginator walks the pages of one parent at a time.
// Every fetch takes a sequence number; a response that is not the latest issued is dropped.
type Paginator[R Listing] struct {
	fetch Fetcher[R]
	size  int
	cache *PageCache[R]

	mu      sync.Mutex
	open    bool
	parent  string
	page    int
	current R
	loaded  bool
	seq     uint64
	err     error
}

func NewPaginator[R Listing](fetch Fetcher[R], size int) *Paginator[R] {
	if size < 1 {
		size = AdminPageSize
	}
	return &Paginator[R]{fetch: fetch, size: size}
}

// WithCache serves repeated (parent, page) requests from c
func (p *Paginator[R]) WithCache(c *PageCache[R]) *Paginator[R] {
	p.cache = c
	return p
}

// Open switches to parent at page 1. Rows of the previous parent are gone before the fetch resolves.
func (p *Paginator[R]) Open(ctx context.Context, parent string) error {
	return p.Restore(ctx, parent, 1)
}

// Restore opens parent directly at page, for callers that carry paginator state across requests
func (p *Paginator[R]) Restore(ctx context.Context, parent string, page int) error {
	if page < 1 {
		page = 1
	}
	p.mu.Lock()
	p.open, p.parent, p.page = true, parent, page
	p.clearRows()
	seq := p.next()
	p.mu.Unlock()
	return p.load(ctx, seq, parent, page)
}

// Goto replaces the current page in place. Page only moves once the fetch succeeds;
// on failure the previous page stays loaded and Err reports why.
func (p *Paginator[R]) Goto(ctx context.Context, page int) error {
	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return nil
	}
	if page < 1 {
		page = 1
	}
	parent := p.parent
	seq := p.next()
	p.mu.Unlock()
	return p.load(ctx, seq, parent, page)
}

func (p *Paginator[R]) Next(ctx context.Context) error {
	if !p.HasNext() {
		return nil
	}
	return p.Goto(ctx, p.Page()+1)
}

func (p *Paginator[R]) Prev(ctx context.Context) error {
	if !p.HasPrev() {
		return nil
	}
	return p.Goto(ctx, p.Page()-1)
}

// Reload fetches the current page again, bypassing the cache
func (p *Paginator[R]) Reload(ctx context.Context) error {
	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return nil
	}
	if p.cache != nil {
		p.cache.Invalidate(p.parent)
	}
	parent, page := p.parent, p.page
	seq := p.next()
	p.mu.Unlock()
	return p.load(ctx, seq, parent, page)
}

// Close drops the parent and its rows. In-flight responses are discarded.
func (p *Paginator[R]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open, p.parent, p.page = false, "", 0
	p.clearRows()
	p.next()
}

func (p *Paginator[R]) load(ctx context.Context, seq uint64, parent string, page int) error {
	var (
		rows R
		err  error
		hit  bool
	)
	if p.cache != nil {
		rows, hit = p.cache.Get(parent, page)
	}
	if !hit {
		rows, err = p.fetch(ctx, parent, page, p.size)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		return nil
	}
	if err != nil {
		p.err = err
		return err
	}
	if p.cache != nil && !hit {
		p.cache.Put(parent, page, rows)
	}
	p.current, p.loaded, p.err = rows, true, nil
	p.page = rows.PageNumber()
	return nil
}

func (p *Paginator[R]) next() uint64 {
	p.seq++
	return p.seq
}

func (p *Paginator[R]) clearRows() {
	var zero R
	p.current, p.loaded, p.err = zero, false, nil
}

func (p *Paginator[R]) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

func (p *Paginator[R]) Parent() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.parent
}

func (p *Paginator[R]) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// Pages is the backend-reported page count, 0 until a page has loaded
func (p *Paginator[R]) Pages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		return 0
	}
	return p.current.PageCount()
}

// Current returns the loaded page, if any
func (p *Paginator[R]) Current() (R, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.loaded
}

func (p *Paginator[R]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Paginator[R]) HasPrev() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded && p.page > 1
}

func (p *Paginator[R]) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded && p.page < p.current.PageCount()
}
