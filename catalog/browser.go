package catalog

import (
	"context"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/flamertt/go-storefront-client/rest"
)

// ErrUnavailable reports that the catalog could not be fetched; the browser
// has already installed the empty page in its place.
var ErrUnavailable = errors.New("catalog unavailable")

// Doer issues a JSON request against the storefront API. Satisfied by
// *rest.Client.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// Browser owns the active catalog query and the page it produced. Every
// query change starts a new fetch generation; a response is applied only if
// the generation that produced it is still the active one, so a slow fetch
// for a superseded query can never overwrite a newer page. There is no
// cancel API — staleness is detected at apply time.
type Browser struct {
	api Doer

	mu    sync.Mutex
	query Query
	page  Page
	epoch uint64
}

// NewBrowser starts on the default query with an empty page; call Refresh
// to populate it.
func NewBrowser(api Doer, pageSize int) *Browser {
	q := DefaultQuery(pageSize)
	return &Browser{
		api:   api,
		query: q,
		page:  EmptyPage(q),
	}
}

// Query returns the active query.
func (b *Browser) Query() Query {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// Page returns the currently displayed page.
func (b *Browser) Page() Page {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

// Window returns the navigable page numbers for the current page.
func (b *Browser) Window() []int {
	page := b.Page()
	return PageWindow(page.Page, page.TotalPages)
}

// SetFilter merges the filter into the active query and fetches the result.
func (b *Browser) SetFilter(ctx context.Context, f Filter) (Page, error) {
	b.mu.Lock()
	b.query = b.query.Apply(f)
	b.mu.Unlock()
	return b.Refresh(ctx)
}

// GoToPage navigates to the given page, leaving all other selections alone.
func (b *Browser) GoToPage(ctx context.Context, page int) (Page, error) {
	b.mu.Lock()
	b.query = b.query.WithPage(page)
	b.mu.Unlock()
	return b.Refresh(ctx)
}

// Refresh re-fetches the active query. On unavailability the empty page is
// installed and returned alongside ErrUnavailable. An unauthorized response
// aborts without touching the displayed page; the transport's hook has
// already torn the session down.
func (b *Browser) Refresh(ctx context.Context) (Page, error) {
	b.mu.Lock()
	b.epoch++
	epoch, query := b.epoch, b.query
	b.mu.Unlock()

	page, err := b.fetch(ctx, query)

	b.mu.Lock()
	defer b.mu.Unlock()
	if epoch != b.epoch {
		log.Debug().Int("page", query.Page).Msg("discarding stale catalog response")
		return b.page, nil
	}
	if err != nil {
		if errors.Is(err, rest.ErrUnauthorized) {
			return b.page, err
		}
		b.page = EmptyPage(query)
		return b.page, err
	}
	b.page = page
	return b.page, nil
}

func (b *Browser) fetch(ctx context.Context, query Query) (Page, error) {
	var page Page
	if err := b.api.Do(ctx, http.MethodGet, "/products?"+query.Params(), nil, &page); err != nil {
		if errors.Is(err, rest.ErrUnauthorized) {
			return Page{}, err
		}
		return Page{}, errors.Wrap(ErrUnavailable, err.Error())
	}
	if page.Items == nil {
		page.Items = []Product{}
	}
	if page.TotalPages < 1 {
		page.TotalPages = 1
	}
	return page, nil
}
