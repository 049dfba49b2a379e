package cart

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/flamertt/go-storefront-client/catalog"
)

// Notifier receives the ephemeral user-facing messages the cart emits.
// Satisfied by *notify.Channel.
type Notifier interface {
	Publish(text string)
}

// Line is one product entry in the cart: the product snapshot taken when
// the line was created plus a quantity of at least 1.
type Line struct {
	Product  catalog.Product
	Quantity int
}

// Subtotal is the line's contribution to the cart total.
func (l Line) Subtotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}

// Cart holds at most one line per product id, in insertion order. Lines
// never carry a quantity of zero; anything that would create one removes
// the line instead. Only the order submission coordinator calls Clear.
type Cart struct {
	mu    sync.Mutex
	lines map[string]*Line
	order []string
	notes Notifier
}

// Option defines a function type to modify the Cart instance.
type Option func(*Cart)

// WithNotifier routes the cart's messages to a notification channel.
func WithNotifier(notes Notifier) Option {
	return func(c *Cart) {
		c.notes = notes
	}
}

// New creates an empty cart.
func New(options ...Option) *Cart {
	c := &Cart{lines: make(map[string]*Line)}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Add puts one unit of the product in the cart. An existing line grows by
// one, capped at the product's stock quantity; the cap is silent — the
// quantity simply stops increasing.
func (c *Cart) Add(product catalog.Product) {
	c.mu.Lock()
	if line, ok := c.lines[product.ID]; ok {
		next := line.Quantity + 1
		if next > product.StockQuantity {
			next = product.StockQuantity
		}
		if next < 1 {
			next = 1
		}
		line.Quantity = next
	} else {
		c.lines[product.ID] = &Line{Product: product, Quantity: 1}
		c.order = append(c.order, product.ID)
	}
	c.mu.Unlock()

	log.Debug().Str("product", product.ID).Msg("added to cart")
	if c.notes != nil {
		c.notes.Publish(product.Name + " added to cart")
	}
}

// SetQuantity overwrites a line's quantity; zero or less removes the line.
// This path applies no stock clamp — the caller has already checked the
// ceiling against the product it is currently displaying.
func (c *Cart) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if line, ok := c.lines[productID]; ok {
		line.Quantity = quantity
	}
}

// Remove deletes the line if present; absent ids are a no-op.
func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.lines[productID]; !ok {
		return
	}
	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Total is the sum of unit price times quantity over all lines; zero for
// an empty cart.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, line := range c.lines {
		total += line.Subtotal()
	}
	return total
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = make(map[string]*Line)
	c.order = nil
}

// Lines returns the cart's lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		lines = append(lines, *c.lines[id])
	}
	return lines
}

// Get returns the line for a product id, if present.
func (c *Cart) Get(productID string) (Line, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if line, ok := c.lines[productID]; ok {
		return *line, true
	}
	return Line{}, false
}

// Len is the number of distinct lines in the cart.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}
