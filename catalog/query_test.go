package catalog_test

import (
	"testing"

	"github.com/flamertt/go-storefront-client/catalog"
	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string                     { return &s }
func floatPtr(f float64) *float64                    { return &f }
func sortPtr(s catalog.SortField) *catalog.SortField { return &s }

func TestApplySearchResetsPage(t *testing.T) {
	q := catalog.DefaultQuery(12).WithPage(5)

	next := q.Apply(catalog.Filter{Search: stringPtr("x")})
	require.Equal(t, 1, next.Page)
	require.Equal(t, "x", next.Search)
	require.Equal(t, q.PageSize, next.PageSize)
	require.Equal(t, q.SortBy, next.SortBy)
}

func TestApplyCategoryAndPriceBoundsResetPage(t *testing.T) {
	q := catalog.DefaultQuery(12).WithPage(3)

	require.Equal(t, 1, q.Apply(catalog.Filter{Category: stringPtr("bivalves")}).Page)
	require.Equal(t, 1, q.Apply(catalog.Filter{MinPrice: floatPtr(2)}).Page)
	require.Equal(t, 1, q.Apply(catalog.Filter{MaxPrice: floatPtr(9)}).Page)
}

func TestApplySortKeepsPage(t *testing.T) {
	q := catalog.DefaultQuery(12).WithPage(4)

	dir := catalog.SortAsc
	next := q.Apply(catalog.Filter{SortBy: sortPtr(catalog.SortPrice), SortDir: &dir})
	require.Equal(t, 4, next.Page)
	require.Equal(t, catalog.SortPrice, next.SortBy)
	require.Equal(t, catalog.SortAsc, next.SortDir)
}

func TestApplyUnchangedSearchKeepsPage(t *testing.T) {
	q := catalog.DefaultQuery(12).Apply(catalog.Filter{Search: stringPtr("clam")}).WithPage(2)

	next := q.Apply(catalog.Filter{Search: stringPtr("clam")})
	require.Equal(t, 2, next.Page)
}

func TestWithPagePreservesFilters(t *testing.T) {
	q := catalog.DefaultQuery(12).Apply(catalog.Filter{
		Search:   stringPtr("clam"),
		Category: stringPtr("bivalves"),
		MinPrice: floatPtr(1.5),
	})

	next := q.WithPage(2)
	require.Equal(t, 2, next.Page)
	require.Equal(t, "clam", next.Search)
	require.Equal(t, "bivalves", next.Category)
	require.NotNil(t, next.MinPrice)
	require.Equal(t, 1.5, *next.MinPrice)
}

func TestClearPriceRange(t *testing.T) {
	q := catalog.DefaultQuery(12).
		Apply(catalog.Filter{MinPrice: floatPtr(1), MaxPrice: floatPtr(5)}).
		WithPage(3)

	next := q.Apply(catalog.Filter{ClearPriceRange: true})
	require.Nil(t, next.MinPrice)
	require.Nil(t, next.MaxPrice)
	require.Equal(t, 1, next.Page)
}

func TestParamsAreOrdered(t *testing.T) {
	dir := catalog.SortAsc
	q := catalog.DefaultQuery(12).Apply(catalog.Filter{
		Search:   stringPtr("giant clam"),
		Category: stringPtr("bivalves"),
		MinPrice: floatPtr(1.5),
		MaxPrice: floatPtr(9),
		SortBy:   sortPtr(catalog.SortPrice),
		SortDir:  &dir,
	}).WithPage(2)

	require.Equal(t,
		"page=2&page_size=12&sort_by=price&sort_dir=asc&search=giant+clam&category=bivalves&min_price=1.5&max_price=9",
		q.Params())
}

func TestParamsOmitUnsetFilters(t *testing.T) {
	q := catalog.DefaultQuery(20)
	require.Equal(t, "page=1&page_size=20&sort_by=created_at&sort_dir=desc", q.Params())
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name       string
		current    int
		totalPages int
		want       []int
	}{
		{"centred mid-range", 7, 12, []int{5, 6, 7, 8, 9}},
		{"clamped at the start", 1, 12, []int{1, 2, 3, 4, 5}},
		{"clamped near the start", 2, 12, []int{1, 2, 3, 4, 5}},
		{"clamped at the end", 12, 12, []int{8, 9, 10, 11, 12}},
		{"fewer pages than the window", 2, 3, []int{1, 2, 3}},
		{"single page", 1, 1, []int{1}},
		{"current beyond range", 99, 4, []int{1, 2, 3, 4}},
		{"zero total pages", 1, 0, []int{1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, catalog.PageWindow(tc.current, tc.totalPages))
		})
	}
}

func TestStockLevel(t *testing.T) {
	require.Equal(t, catalog.StockOut, catalog.Product{StockQuantity: 0}.StockLevel())
	require.Equal(t, catalog.StockLow, catalog.Product{StockQuantity: 10}.StockLevel())
	require.Equal(t, catalog.StockIn, catalog.Product{StockQuantity: 11}.StockLevel())
}
