package storefront_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/flamertt/go-storefront-client/catalog"
	"github.com/flamertt/go-storefront-client/orders"
	"github.com/flamertt/go-storefront-client/session/repofake"
	"github.com/flamertt/go-storefront-client/storefront"
)

const (
	testEmail    = "jane.doe@example.com"
	testPassword = "password123"
	testToken    = "access-token-1"
)

// fakeGateway is a scripted stand-in for the storefront backend.
type fakeGateway struct {
	mu            sync.Mutex
	products      []catalog.Product
	orders        []orders.Order
	nextOrderID   string
	rejectOrders  int // status code to answer POST /orders with, 0 = accept
	productsCalls int
}

func (g *fakeGateway) router(t *testing.T) *mux.Router {
	t.Helper()
	router := mux.NewRouter()

	router.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["email"] != testEmail || req["password"] != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"user": map[string]string{
					"id": "user-1", "email": testEmail,
					"first_name": "Jane", "last_name": "Doe", "role": "customer",
				},
				"access_token":  testToken,
				"refresh_token": "refresh-1",
			},
		})
	}).Methods(http.MethodPost)

	router.HandleFunc("/api/v1/products", func(w http.ResponseWriter, r *http.Request) {
		if !g.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		g.mu.Lock()
		g.productsCalls++
		products := append([]catalog.Product(nil), g.products...)
		g.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": products, "page": 1, "page_size": 12,
			"total": len(products), "total_pages": 1,
		})
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		if !g.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.rejectOrders != 0 {
			w.WriteHeader(g.rejectOrders)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "insufficient stock"})
			return
		}
		var req struct {
			UserID      string        `json:"user_id"`
			Items       []orders.Item `json:"items"`
			TotalAmount float64       `json:"total_amount"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		order := orders.Order{
			ID:          g.nextOrderID,
			UserID:      req.UserID,
			TotalAmount: req.TotalAmount,
			Status:      orders.StatusCreated,
			Items:       req.Items,
		}
		g.orders = append(g.orders, order)
		_ = json.NewEncoder(w).Encode(order)
	}).Methods(http.MethodPost)

	router.HandleFunc("/api/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		if !g.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		g.mu.Lock()
		defer g.mu.Unlock()
		_ = json.NewEncoder(w).Encode(g.orders)
	}).Methods(http.MethodGet)

	return router
}

func (g *fakeGateway) authorized(r *http.Request) bool {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ") == testToken
}

func setupEngine(t *testing.T, gateway *fakeGateway) *storefront.Engine {
	t.Helper()
	server := httptest.NewServer(gateway.router(t))
	t.Cleanup(server.Close)

	engine, err := storefront.New(storefront.Config{
		BaseURL: server.URL,
		Repo:    repofake.NewFakeCredentialRepo(),
	})
	require.NoError(t, err)
	return engine
}

func TestCheckoutFlow(t *testing.T) {
	gateway := &fakeGateway{
		products: []catalog.Product{
			{ID: "p1", Name: "Razor Clam", Price: 4.5, StockQuantity: 5},
			{ID: "p2", Name: "Geoduck", Price: 22, StockQuantity: 2},
		},
		nextOrderID: "order-1",
	}
	engine := setupEngine(t, gateway)
	ctx := context.Background()

	require.NoError(t, engine.SignIn(ctx, testEmail, testPassword))
	require.True(t, engine.Sessions().IsAuthenticated())

	page := engine.Catalog().Page()
	require.Len(t, page.Items, 2)

	engine.Cart().Add(page.Items[0])
	engine.Cart().Add(page.Items[0])
	engine.Cart().Add(page.Items[1])
	require.InDelta(t, 31, engine.Cart().Total(), 1e-9)

	fetchesBeforeCheckout := gateway.productsCalls
	ack, err := engine.Checkout(ctx)
	require.NoError(t, err)
	require.Equal(t, "order-1", ack.ID)

	require.Zero(t, engine.Cart().Len())
	list := engine.Orders().List()
	require.Len(t, list, 1)
	require.Equal(t, "order-1", list[0].ID)
	require.Equal(t, orders.StatusCreated, list[0].Status)
	require.Greater(t, gateway.productsCalls, fetchesBeforeCheckout,
		"a successful order re-fetches the catalog for fresh stock")

	msg := engine.Notices().Current()
	require.NotNil(t, msg)
	require.Equal(t, "Order placed", msg.Text)
}

func TestRejectedCheckoutKeepsCartAndSurfacesMessage(t *testing.T) {
	gateway := &fakeGateway{
		products:     []catalog.Product{{ID: "p1", Name: "Razor Clam", Price: 4.5, StockQuantity: 5}},
		rejectOrders: http.StatusConflict,
	}
	engine := setupEngine(t, gateway)
	ctx := context.Background()

	require.NoError(t, engine.SignIn(ctx, testEmail, testPassword))
	engine.Cart().Add(engine.Catalog().Page().Items[0])

	_, err := engine.Checkout(ctx)
	require.ErrorIs(t, err, orders.ErrRejected)
	require.Equal(t, 1, engine.Cart().Len())

	msg := engine.Notices().Current()
	require.NotNil(t, msg)
	require.Equal(t, "Order rejected: insufficient stock", msg.Text)
}

func TestUnauthorizedOrderTearsDownSessionAndKeepsCart(t *testing.T) {
	gateway := &fakeGateway{
		products:     []catalog.Product{{ID: "p1", Name: "Razor Clam", Price: 4.5, StockQuantity: 5}},
		rejectOrders: http.StatusUnauthorized,
	}
	engine := setupEngine(t, gateway)
	ctx := context.Background()

	require.NoError(t, engine.SignIn(ctx, testEmail, testPassword))
	engine.Cart().Add(engine.Catalog().Page().Items[0])

	_, err := engine.Checkout(ctx)
	require.ErrorIs(t, err, orders.ErrSessionExpired)
	require.False(t, engine.Sessions().IsAuthenticated(), "a 401 anywhere forces logout")
	require.Equal(t, 1, engine.Cart().Len(), "the cart is untouched by the cascade")

	msg := engine.Notices().Current()
	require.NotNil(t, msg)
	require.Equal(t, "Your session has expired, please sign in again", msg.Text)
}

func TestSignInFailurePublishesNotice(t *testing.T) {
	gateway := &fakeGateway{}
	engine := setupEngine(t, gateway)

	err := engine.SignIn(context.Background(), testEmail, "wrong")
	require.Error(t, err)
	require.False(t, engine.Sessions().IsAuthenticated())

	msg := engine.Notices().Current()
	require.NotNil(t, msg)
	require.Equal(t, "Invalid email or password", msg.Text)
}
