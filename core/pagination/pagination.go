// Package pagination implements page math and page URL building for
// collection resources.
package pagination

import (
	"net/url"
	"strconv"
)

// Query parameter names.
const (
	PageParam    = "page"
	PerPageParam = "per_page"
)

// Default and maximum page sizes used when none are configured.
const (
	DefaultPerPage = 30
	MaxPerPage     = 100
)

// Params are the requested page number and size, both at least 1.
type Params struct {
	Page    int
	PerPage int
}

// Offset returns the offset for store queries.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Limit returns the limit for store queries.
func (p Params) Limit() int {
	return p.PerPage
}

// Page is one bounded slice of a collection.
type Page[T any] struct {
	Items        []T
	TotalCount   int
	ItemsPerPage int
	PageNumber   int
}

// New builds a page from a slice of items and the request parameters.
func New[T any](items []T, total int, p Params) Page[T] {
	return Page[T]{
		Items:        items,
		TotalCount:   total,
		ItemsPerPage: p.PerPage,
		PageNumber:   p.Page,
	}
}

// LastPageNumber returns ceil(TotalCount / ItemsPerPage), minimum 1.
func (p Page[T]) LastPageNumber() int {
	if p.TotalCount <= 0 || p.ItemsPerPage <= 0 {
		return 1
	}
	pages := (p.TotalCount + p.ItemsPerPage - 1) / p.ItemsPerPage
	if pages < 1 {
		pages = 1
	}
	return pages
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool {
	return p.PageNumber < p.LastPageNumber()
}

// HasPrevious reports whether a page precedes this one.
func (p Page[T]) HasPrevious() bool {
	return p.PageNumber > 1
}

// Erase converts the page to a Page[any] for the page writer.
func (p Page[T]) Erase() Page[any] {
	items := make([]any, len(p.Items))
	for i, item := range p.Items {
		items[i] = item
	}
	return Page[any]{
		Items:        items,
		TotalCount:   p.TotalCount,
		ItemsPerPage: p.ItemsPerPage,
		PageNumber:   p.PageNumber,
	}
}

// Links are the navigation URLs of one page. Next and Previous are empty
// when the page has no such neighbour.
type Links struct {
	Self     string
	First    string
	Last     string
	Next     string
	Previous string
}

// Links computes the page URLs against the collection URL base.
func (p Page[T]) Links(base string) Links {
	links := Links{
		Self:  BuildURL(base, p.PageNumber, p.ItemsPerPage),
		First: BuildURL(base, 1, p.ItemsPerPage),
		Last:  BuildURL(base, p.LastPageNumber(), p.ItemsPerPage),
	}
	if p.HasNext() {
		links.Next = BuildURL(base, p.PageNumber+1, p.ItemsPerPage)
	}
	if p.HasPrevious() {
		links.Previous = BuildURL(base, p.PageNumber-1, p.ItemsPerPage)
	}
	return links
}

// BuildURL appends the page and per_page parameters to base, keeping any
// query parameters already present.
func BuildURL(base string, page, perPage int) string {
	if base == "" {
		return ""
	}

	u, err := url.Parse(base)
	if err != nil {
		return base
	}

	q := u.Query()
	q.Set(PageParam, strconv.Itoa(page))
	q.Set(PerPageParam, strconv.Itoa(perPage))
	u.RawQuery = q.Encode()

	return u.String()
}

// ParseParams extracts pagination parameters from a URL query. Missing or
// invalid values fall back to page 1 and defaultPerPage; per_page is capped
// at maxPerPage.
func ParseParams(query url.Values, defaultPerPage, maxPerPage int) Params {
	if defaultPerPage < 1 {
		defaultPerPage = DefaultPerPage
	}
	if maxPerPage < 1 {
		maxPerPage = MaxPerPage
	}

	p := Params{Page: 1, PerPage: defaultPerPage}

	if v := query.Get(PageParam); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := query.Get(PerPageParam); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.PerPage = n
		}
	}

	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}
