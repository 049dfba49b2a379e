package catalog

// Product is an immutable snapshot as returned by a catalog fetch. A new
// fetch supersedes the previous snapshot wholesale; fields are never merged.
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
}

// StockLevel classifies a product's availability for display.
type StockLevel string

const (
	StockOut StockLevel = "out-of-stock"
	StockLow StockLevel = "low-stock"
	StockIn  StockLevel = "in-stock"
)

const lowStockThreshold = 10

// StockLevel returns the display classification of the snapshot's stock.
func (p Product) StockLevel() StockLevel {
	switch {
	case p.StockQuantity <= 0:
		return StockOut
	case p.StockQuantity <= lowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

// Page is one fetched window of the catalog.
type Page struct {
	Items      []Product `json:"data"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalItems int       `json:"total"`
	TotalPages int       `json:"total_pages"`
}

// EmptyPage is what callers fall back to when a fetch fails: nothing to
// show rather than products whose stock can no longer be queried.
func EmptyPage(q Query) Page {
	return Page{
		Items:      []Product{},
		Page:       1,
		PageSize:   q.PageSize,
		TotalItems: 0,
		TotalPages: 1,
	}
}

const windowSize = 5

// PageWindow returns the contiguous run of at most five navigable page
// numbers centred on current and clamped to [1, totalPages]. First/last
// page shortcuts are rendered separately and are always reachable.
func PageWindow(current, totalPages int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	lo := current - windowSize/2
	hi := current + windowSize/2
	if lo < 1 {
		hi += 1 - lo
		lo = 1
	}
	if hi > totalPages {
		lo -= hi - totalPages
		hi = totalPages
	}
	if lo < 1 {
		lo = 1
	}

	pages := make([]int, 0, hi-lo+1)
	for p := lo; p <= hi; p++ {
		pages = append(pages, p)
	}
	return pages
}
