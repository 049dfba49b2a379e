package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/flamertt/go-storefront-client/catalog"
	"github.com/flamertt/go-storefront-client/rest"
)

func TestRefreshFetchesThePage(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/products", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "1", r.URL.Query().Get("page"))
		require.Equal(t, "12", r.URL.Query().Get("page_size"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "p1", "name": "Razor Clam", "price": 4.5, "stock_quantity": 7},
			},
			"page":        1,
			"page_size":   12,
			"total":       1,
			"total_pages": 1,
		})
	}).Methods(http.MethodGet)
	server := httptest.NewServer(router)
	defer server.Close()

	browser := catalog.NewBrowser(rest.NewClient(server.URL), 12)
	page, err := browser.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "Razor Clam", page.Items[0].Name)
	require.Equal(t, 1, page.TotalItems)
}

func TestUnavailableInstallsTheEmptyPage(t *testing.T) {
	failing := false
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/products", func(w http.ResponseWriter, r *http.Request) {
		if failing {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":        []map[string]any{{"id": "p1", "name": "Razor Clam", "stock_quantity": 7}},
			"page":        1,
			"page_size":   12,
			"total":       1,
			"total_pages": 3,
		})
	}).Methods(http.MethodGet)
	server := httptest.NewServer(router)
	defer server.Close()

	browser := catalog.NewBrowser(rest.NewClient(server.URL), 12)
	_, err := browser.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, browser.Page().Items, 1)

	failing = true
	page, err := browser.Refresh(context.Background())
	require.ErrorIs(t, err, catalog.ErrUnavailable)
	require.Empty(t, page.Items, "stale products must not survive a failed fetch")
	require.Equal(t, 0, page.TotalItems)
	require.Equal(t, 1, page.TotalPages)
	require.Equal(t, page, browser.Page())
}

// scriptedDoer lets a test drive the browser without a live server and
// interleave calls from inside a fetch.
type scriptedDoer struct {
	onCall func(call int, path string, out any) error
	calls  int
}

func (d *scriptedDoer) Do(ctx context.Context, method, path string, body, out any) error {
	d.calls++
	return d.onCall(d.calls, path, out)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	pageFor := func(n int) catalog.Page {
		return catalog.Page{
			Items:      []catalog.Product{{ID: "p", Name: "Clam"}},
			Page:       n,
			PageSize:   12,
			TotalItems: 30,
			TotalPages: 3,
		}
	}

	var browser *catalog.Browser
	doer := &scriptedDoer{}
	doer.onCall = func(call int, path string, out any) error {
		if call == 1 {
			// A newer navigation completes while this fetch is still in
			// flight; its response must win.
			_, err := browser.GoToPage(context.Background(), 2)
			require.NoError(t, err)
			*(out.(*catalog.Page)) = pageFor(1)
			return nil
		}
		*(out.(*catalog.Page)) = pageFor(2)
		return nil
	}
	browser = catalog.NewBrowser(doer, 12)

	page, err := browser.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, page.Page, "the superseded response must not be applied")
	require.Equal(t, 2, browser.Page().Page)
	require.Equal(t, 2, doer.calls)
}

func TestWindowTracksTheCurrentPage(t *testing.T) {
	doer := &scriptedDoer{}
	doer.onCall = func(call int, path string, out any) error {
		*(out.(*catalog.Page)) = catalog.Page{Page: 7, PageSize: 12, TotalItems: 140, TotalPages: 12}
		return nil
	}
	browser := catalog.NewBrowser(doer, 12)

	_, err := browser.GoToPage(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, []int{5, 6, 7, 8, 9}, browser.Window())
}
