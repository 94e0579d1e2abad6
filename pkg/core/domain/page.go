package domain

// Page carries one page of a listing plus the numbers needed to render a pager
type Page[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Paging normalizes a page request against a known total.
// An empty scope reports a single empty page; pages past the end clamp to the last one.
type Paging struct {
	Page  int
	Limit int
	Pages int
}

func NewPaging(page, limit int, total int64) Paging {
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	return Paging{Page: page, Limit: limit, Pages: pages}
}

func (p Paging) Offset() int {
	return (p.Page - 1) * p.Limit
}
