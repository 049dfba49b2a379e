// Package storefront wires the client's components into one engine: a
// single REST client, the session store that owns its credential, and the
// catalog/cart/order state that hangs off it. The unauthorized cascade is
// installed here exactly once.
package storefront

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/flamertt/go-storefront-client/cart"
	"github.com/flamertt/go-storefront-client/catalog"
	"github.com/flamertt/go-storefront-client/notify"
	"github.com/flamertt/go-storefront-client/orders"
	"github.com/flamertt/go-storefront-client/rest"
	"github.com/flamertt/go-storefront-client/session"
)

const defaultPageSize = 12

// Config carries the engine's external collaborators.
type Config struct {
	BaseURL    string
	PageSize   int
	Repo       session.Repo
	HTTPClient *http.Client // optional
}

// Engine is the session-bound shopping state engine. Each piece of state
// has exactly one owning component; the engine only wires them together and
// carries the cross-component data flow (unauthorized cascade, post-order
// refreshes, user-facing notifications).
type Engine struct {
	client   *rest.Client
	sessions *session.Store
	browser  *catalog.Browser
	basket   *cart.Cart
	orders   *orders.Coordinator
	notices  *notify.Channel
}

// New builds a fully wired engine. Call Restore to pick up a durably
// stored session before first use.
func New(cfg Config) (*Engine, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("[storefront.New] base URL is required")
	}
	if cfg.Repo == nil {
		return nil, errors.New("[storefront.New] credential repo is required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}

	e := &Engine{notices: notify.NewChannel()}

	clientOptions := []rest.Option{
		rest.WithAuthHeader(func() string { return e.sessions.AuthHeader() }),
		rest.WithUnauthorizedHook(e.onUnauthorized),
	}
	if cfg.HTTPClient != nil {
		clientOptions = append(clientOptions, rest.WithHTTPClient(cfg.HTTPClient))
	}
	e.client = rest.NewClient(cfg.BaseURL, clientOptions...)

	sessions, err := session.New(cfg.Repo, e.client)
	if err != nil {
		return nil, err
	}
	e.sessions = sessions

	e.browser = catalog.NewBrowser(e.client, cfg.PageSize)
	e.basket = cart.New(cart.WithNotifier(e.notices))

	coordinator, err := orders.NewCoordinator(e.client, sessions, e.basket)
	if err != nil {
		return nil, err
	}
	e.orders = coordinator

	return e, nil
}

// onUnauthorized is the single landing point for the unauthorized cascade:
// any 401 on an authenticated request tears the session down and tells the
// user. The triggering operation has already been aborted by the transport.
func (e *Engine) onUnauthorized() {
	e.sessions.Teardown()
	e.notices.Publish("Your session has expired, please sign in again")
}

// Restore loads a durably stored session, if one exists.
func (e *Engine) Restore() {
	e.sessions.Restore()
}

// Health probes the gateway.
func (e *Engine) Health(ctx context.Context) error {
	return e.client.Health(ctx)
}

// SignIn logs in and primes the catalog page and order history.
func (e *Engine) SignIn(ctx context.Context, email, password string) error {
	if _, err := e.sessions.Login(ctx, email, password); err != nil {
		e.notices.Publish("Invalid email or password")
		return err
	}
	e.primeAfterSignIn(ctx)
	return nil
}

// SignUp registers an account; success signs the user straight in.
func (e *Engine) SignUp(ctx context.Context, email, password, firstName, lastName string) error {
	if _, err := e.sessions.Register(ctx, email, password, firstName, lastName); err != nil {
		e.notices.Publish("Registration failed")
		return err
	}
	e.primeAfterSignIn(ctx)
	return nil
}

// SignOut notifies the server best-effort and clears the session.
func (e *Engine) SignOut(ctx context.Context) {
	e.sessions.Logout(ctx)
	e.notices.Publish("Signed out")
}

func (e *Engine) primeAfterSignIn(ctx context.Context) {
	if _, err := e.browser.Refresh(ctx); err != nil {
		log.Err(err).Msg("initial catalog fetch failed")
	}
	if err := e.orders.RefreshList(ctx); err != nil {
		log.Err(err).Msg("initial order list fetch failed")
	}
}

// Checkout submits the cart. On success the coordinator has already cleared
// the cart and re-fetched the order list; the engine additionally refreshes
// the catalog page, since stock may have changed.
func (e *Engine) Checkout(ctx context.Context) (*orders.Order, error) {
	ack, err := e.orders.Submit(ctx)
	if err != nil {
		e.notices.Publish(checkoutFailureText(err))
		return nil, err
	}

	e.notices.Publish("Order placed")
	if _, err := e.browser.Refresh(ctx); err != nil {
		log.Err(err).Msg("catalog refresh after checkout failed")
	}
	return ack, nil
}

// checkoutFailureText renders the order error taxonomy as a single
// human-readable line. Every failure is retryable by the user.
func checkoutFailureText(err error) string {
	var rejected *orders.RejectedError
	switch {
	case errors.Is(err, orders.ErrEmptyCart):
		return "Your cart is empty"
	case errors.Is(err, orders.ErrNotAuthenticated):
		return "Please sign in before ordering"
	case errors.Is(err, orders.ErrSessionExpired):
		return "Your session has expired, please sign in again"
	case errors.Is(err, orders.ErrSubmitInFlight):
		return "Your order is already being submitted"
	case errors.As(err, &rejected) && rejected.Message != "":
		return "Order rejected: " + rejected.Message
	case errors.Is(err, orders.ErrRejected):
		return "Order rejected"
	default:
		return "Could not reach the order service, please try again"
	}
}

// Sessions exposes the session store.
func (e *Engine) Sessions() *session.Store { return e.sessions }

// Catalog exposes the catalog browser.
func (e *Engine) Catalog() *catalog.Browser { return e.browser }

// Cart exposes the cart.
func (e *Engine) Cart() *cart.Cart { return e.basket }

// Orders exposes the order coordinator.
func (e *Engine) Orders() *orders.Coordinator { return e.orders }

// Notices exposes the notification channel.
func (e *Engine) Notices() *notify.Channel { return e.notices }
