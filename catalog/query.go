package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SortField names a catalog column the server can order by.
type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortPrice     SortField = "price"
	SortName      SortField = "name"
	SortStock     SortField = "stock"
)

// SortDirection is the order applied to the sort field.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Query is the full set of catalog selections: pagination, filters and
// sort. It is a pure value; Apply and WithPage return modified copies. The
// zero Query is not usable — start from DefaultQuery.
type Query struct {
	Page     int
	PageSize int
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
	SortBy   SortField
	SortDir  SortDirection
}

// DefaultQuery is the first page of the unfiltered catalog, newest first.
func DefaultQuery(pageSize int) Query {
	return Query{
		Page:     1,
		PageSize: pageSize,
		SortBy:   SortCreatedAt,
		SortDir:  SortDesc,
	}
}

// Filter is a partial update to a Query; nil fields are left untouched.
// Price bounds are set through MinPrice/MaxPrice and dropped through
// ClearPriceRange.
type Filter struct {
	Search          *string
	Category        *string
	MinPrice        *float64
	MaxPrice        *float64
	ClearPriceRange bool
	SortBy          *SortField
	SortDir         *SortDirection
}

// Apply merges the filter into the query. Changing the search text, the
// category or either price bound resets the page to 1; changing the sort
// keeps the page. Page navigation goes through WithPage, never through a
// Filter.
func (q Query) Apply(f Filter) Query {
	next := q
	resetPage := false

	if f.Search != nil && *f.Search != q.Search {
		next.Search = *f.Search
		resetPage = true
	}
	if f.Category != nil && *f.Category != q.Category {
		next.Category = *f.Category
		resetPage = true
	}
	if f.ClearPriceRange {
		if q.MinPrice != nil || q.MaxPrice != nil {
			resetPage = true
		}
		next.MinPrice = nil
		next.MaxPrice = nil
	}
	if f.MinPrice != nil {
		next.MinPrice = f.MinPrice
		resetPage = true
	}
	if f.MaxPrice != nil {
		next.MaxPrice = f.MaxPrice
		resetPage = true
	}
	if f.SortBy != nil {
		next.SortBy = *f.SortBy
	}
	if f.SortDir != nil {
		next.SortDir = *f.SortDir
	}

	if resetPage {
		next.Page = 1
	}
	return next
}

// WithPage is explicit page navigation: it changes the page and nothing
// else.
func (q Query) WithPage(page int) Query {
	if page < 1 {
		page = 1
	}
	next := q
	next.Page = page
	return next
}

// Params serializes the query in the order the API expects: page and page
// size first, then the sort pair, then whichever optional filters are set.
// url.Values would re-sort the keys alphabetically, so the string is built
// by hand.
func (q Query) Params() string {
	var b strings.Builder
	fmt.Fprintf(&b, "page=%d&page_size=%d&sort_by=%s&sort_dir=%s", q.Page, q.PageSize, q.SortBy, q.SortDir)
	if q.Search != "" {
		b.WriteString("&search=" + url.QueryEscape(q.Search))
	}
	if q.Category != "" {
		b.WriteString("&category=" + url.QueryEscape(q.Category))
	}
	if q.MinPrice != nil {
		b.WriteString("&min_price=" + strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		b.WriteString("&max_price=" + strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	return b.String()
}
