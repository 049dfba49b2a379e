package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/flamertt/go-storefront-client/cart"
	"github.com/flamertt/go-storefront-client/rest"
	"github.com/flamertt/go-storefront-client/session"
)

// SubmitState tracks a submission attempt through its lifecycle. Both
// outcomes are terminal; the next attempt starts fresh from idle.
type SubmitState int

const (
	SubmitIdle SubmitState = iota
	SubmitInFlight
	SubmitSucceeded
	SubmitFailed
)

func (s SubmitState) String() string {
	switch s {
	case SubmitIdle:
		return "idle"
	case SubmitInFlight:
		return "submitting"
	case SubmitSucceeded:
		return "succeeded"
	case SubmitFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Doer issues a JSON request against the storefront API. Satisfied by
// *rest.Client.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// Sessions is the read-only slice of the session store the coordinator
// needs. It never writes session state; the unauthorized cascade runs
// through the transport's hook.
type Sessions interface {
	Current() *session.Session
}

// CartView is the coordinator's window onto the cart: a snapshot to submit
// and Clear on confirmed success. Satisfied by *cart.Cart.
type CartView interface {
	Lines() []cart.Line
	Total() float64
	Clear()
}

// Coordinator converts the cart into an order request and reconciles the
// optimistic local state with the server's authoritative response. It also
// owns the in-memory order list: a cache replaced wholesale from the
// server, never patched field by field.
type Coordinator struct {
	api      Doer
	sessions Sessions
	cart     CartView

	mu    sync.Mutex
	state SubmitState
	list  []Order
}

// NewCoordinator initializes a Coordinator with required dependencies.
func NewCoordinator(api Doer, sessions Sessions, cartView CartView) (*Coordinator, error) {
	if api == nil {
		return nil, errors.New("[orders.NewCoordinator] api client is required")
	}
	if sessions == nil {
		return nil, errors.New("[orders.NewCoordinator] session store is required")
	}
	if cartView == nil {
		return nil, errors.New("[orders.NewCoordinator] cart is required")
	}
	return &Coordinator{api: api, sessions: sessions, cart: cartView}, nil
}

type orderRequest struct {
	UserID        string  `json:"user_id"`
	CustomerEmail string  `json:"customer_email"`
	Items         []Item  `json:"items"`
	TotalAmount   float64 `json:"total_amount"`
}

// Submit sends the current cart as an order. Preconditions are rejected
// before any request goes out: no session, an empty cart, or an attempt
// already in flight. On success the acknowledged order is merged into the
// cache, the cart is cleared and the order list is re-fetched so
// server-computed fields are never fabricated locally. On any failure the
// cart is preserved unchanged for a user-initiated retry.
func (c *Coordinator) Submit(ctx context.Context) (*Order, error) {
	sess := c.sessions.Current()

	c.mu.Lock()
	if c.state == SubmitInFlight {
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if sess == nil {
		c.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	lines := c.cart.Lines()
	if len(lines) == 0 {
		c.mu.Unlock()
		return nil, ErrEmptyCart
	}
	c.state = SubmitInFlight
	c.mu.Unlock()

	req := orderRequest{
		UserID:        sess.UserID,
		CustomerEmail: sess.Email,
		Items:         make([]Item, 0, len(lines)),
		TotalAmount:   c.cart.Total(),
	}
	for _, line := range lines {
		req.Items = append(req.Items, Item{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			Price:     line.Product.Price,
		})
	}

	var ack Order
	if err := c.api.Do(ctx, http.MethodPost, "/orders", req, &ack); err != nil {
		c.setState(SubmitFailed)
		return nil, classifySubmitFailure(err)
	}

	c.mu.Lock()
	c.state = SubmitSucceeded
	c.mergeLocked(ack)
	c.mu.Unlock()

	c.cart.Clear()
	log.Info().Str("order_id", ack.ID).Msg("order submitted")

	if err := c.RefreshList(ctx); err != nil {
		log.Err(err).Msg("order list refresh after submit failed")
	}
	return &ack, nil
}

// classifySubmitFailure normalizes transport and status failures into the
// order error taxonomy. The session teardown for an unauthorized response
// has already happened inside the transport by the time this runs.
func classifySubmitFailure(err error) error {
	if errors.Is(err, rest.ErrUnauthorized) {
		return ErrSessionExpired
	}
	var statusErr *rest.StatusError
	if errors.As(err, &statusErr) {
		return &RejectedError{Message: statusErr.Message}
	}
	return ErrUnavailable
}

// RefreshList replaces the cached order list wholesale with the server's
// view for the signed-in user.
func (c *Coordinator) RefreshList(ctx context.Context) error {
	sess := c.sessions.Current()
	if sess == nil {
		return ErrNotAuthenticated
	}

	var raw []json.RawMessage
	if err := c.api.Do(ctx, http.MethodGet, "/orders?user_id="+url.QueryEscape(sess.UserID), nil, &raw); err != nil {
		if errors.Is(err, rest.ErrUnauthorized) {
			return ErrSessionExpired
		}
		return errors.Wrap(ErrUnavailable, err.Error())
	}

	list := parseOrders(raw)
	c.mu.Lock()
	c.list = list
	c.mu.Unlock()
	return nil
}

// List returns a snapshot of the cached order list.
func (c *Coordinator) List() []Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Order(nil), c.list...)
}

// State reports the most recent submission attempt's state.
func (c *Coordinator) State() SubmitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) setState(state SubmitState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// mergeLocked appends the acknowledged order, or replaces an existing cache
// entry with the same id. Caller holds the lock.
func (c *Coordinator) mergeLocked(ack Order) {
	for i := range c.list {
		if c.list[i].ID == ack.ID {
			c.list[i] = ack
			return
		}
	}
	c.list = append(c.list, ack)
}
