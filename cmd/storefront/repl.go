package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/flamertt/go-storefront-client/catalog"
	"github.com/flamertt/go-storefront-client/orders"
	"github.com/flamertt/go-storefront-client/storefront"
)

// repl is the presentation layer: a line-oriented shell over the engine.
// All state lives in the engine's components; the shell only renders it and
// enforces the displayed-stock ceiling on manual quantity entry.
type repl struct {
	engine *storefront.Engine
	in     *bufio.Scanner
	out    io.Writer
}

func newREPL(engine *storefront.Engine, in io.Reader, out io.Writer) *repl {
	return &repl{engine: engine, in: bufio.NewScanner(in), out: out}
}

func (r *repl) run(ctx context.Context) error {
	r.println(`Type "help" for commands.`)
	for {
		fmt.Fprint(r.out, "> ")
		if !r.in.Scan() {
			return r.in.Err()
		}
		fields := strings.Fields(r.in.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		r.dispatch(ctx, fields[0], fields[1:])
		r.showNotice()
	}
}

func (r *repl) dispatch(ctx context.Context, command string, args []string) {
	switch command {
	case "help":
		r.printHelp()
	case "login":
		r.login(ctx, args)
	case "register":
		r.register(ctx, args)
	case "logout":
		r.engine.SignOut(ctx)
	case "whoami":
		r.whoami()
	case "products":
		r.showProducts(ctx, true)
	case "search":
		text := strings.Join(args, " ")
		r.applyFilter(ctx, catalog.Filter{Search: &text})
	case "category":
		name := strings.Join(args, " ")
		r.applyFilter(ctx, catalog.Filter{Category: &name})
	case "price":
		r.priceFilter(ctx, args)
	case "sort":
		r.sortFilter(ctx, args)
	case "page":
		r.goToPage(ctx, args)
	case "add":
		r.addToCart(args)
	case "qty":
		r.setQuantity(args)
	case "rm":
		r.removeFromCart(args)
	case "cart":
		r.showCart()
	case "checkout":
		_, _ = r.engine.Checkout(ctx)
	case "orders":
		r.showOrders(ctx)
	case "refresh":
		r.showProducts(ctx, true)
	case "renew":
		r.renewSession(ctx)
	default:
		r.println("Unknown command; try \"help\".")
	}
}

func (r *repl) printHelp() {
	r.println(`Commands:
  login <email> <password>             sign in
  register <email> <password> <first> <last>
  logout | whoami | renew
  products | refresh                   show the current catalog page
  search <text> | category <name>      filter (resets to page 1)
  price <min> <max> | price clear      price bounds (resets to page 1)
  sort <created_at|price|name|stock> <asc|desc>
  page <n>                             navigate
  add <product-id>                     add one unit to the cart
  qty <product-id> <n>                 set a line's quantity
  rm <product-id>                      remove a line
  cart | checkout | orders
  quit`)
}

func (r *repl) login(ctx context.Context, args []string) {
	if len(args) != 2 {
		r.println("usage: login <email> <password>")
		return
	}
	if err := r.engine.SignIn(ctx, args[0], args[1]); err != nil {
		return
	}
	r.whoami()
	r.showProducts(ctx, false)
}

func (r *repl) register(ctx context.Context, args []string) {
	if len(args) != 4 {
		r.println("usage: register <email> <password> <first> <last>")
		return
	}
	if err := r.engine.SignUp(ctx, args[0], args[1], args[2], args[3]); err != nil {
		return
	}
	r.whoami()
}

func (r *repl) renewSession(ctx context.Context) {
	if _, err := r.engine.Sessions().Refresh(ctx); err != nil {
		r.println("Could not renew the session; sign in again.")
		return
	}
	r.whoami()
}

func (r *repl) whoami() {
	sess := r.engine.Sessions().Current()
	if sess == nil {
		r.println("Not signed in.")
		return
	}
	r.printf("Signed in as %s (%s)\n", sess.DisplayName(), sess.Email)
}

func (r *repl) applyFilter(ctx context.Context, filter catalog.Filter) {
	if _, err := r.engine.Catalog().SetFilter(ctx, filter); err != nil {
		r.println("Catalog unavailable, showing nothing.")
	}
	r.showProducts(ctx, false)
}

func (r *repl) priceFilter(ctx context.Context, args []string) {
	if len(args) == 1 && args[0] == "clear" {
		r.applyFilter(ctx, catalog.Filter{ClearPriceRange: true})
		return
	}
	if len(args) != 2 {
		r.println("usage: price <min> <max> | price clear")
		return
	}
	minPrice, err1 := strconv.ParseFloat(args[0], 64)
	maxPrice, err2 := strconv.ParseFloat(args[1], 64)
	if err1 != nil || err2 != nil {
		r.println("usage: price <min> <max> | price clear")
		return
	}
	r.applyFilter(ctx, catalog.Filter{MinPrice: &minPrice, MaxPrice: &maxPrice})
}

func (r *repl) sortFilter(ctx context.Context, args []string) {
	if len(args) != 2 {
		r.println("usage: sort <created_at|price|name|stock> <asc|desc>")
		return
	}
	field := catalog.SortField(args[0])
	dir := catalog.SortDirection(args[1])
	r.applyFilter(ctx, catalog.Filter{SortBy: &field, SortDir: &dir})
}

func (r *repl) goToPage(ctx context.Context, args []string) {
	if len(args) != 1 {
		r.println("usage: page <n>")
		return
	}
	page, err := strconv.Atoi(args[0])
	if err != nil {
		r.println("usage: page <n>")
		return
	}
	if _, err := r.engine.Catalog().GoToPage(ctx, page); err != nil {
		r.println("Catalog unavailable, showing nothing.")
	}
	r.showProducts(ctx, false)
}

func (r *repl) showProducts(ctx context.Context, refetch bool) {
	if refetch {
		if _, err := r.engine.Catalog().Refresh(ctx); err != nil {
			r.println("Catalog unavailable, showing nothing.")
		}
	}
	page := r.engine.Catalog().Page()
	if len(page.Items) == 0 {
		r.println("No products.")
		return
	}
	for _, product := range page.Items {
		r.printf("  %-12s %-24s %8.2f  %s\n",
			product.ID, product.Name, product.Price, stockBadge(product))
	}
	r.printf("Page %d of %d (%d products)  pages: %s\n",
		page.Page, page.TotalPages, page.TotalItems, formatWindow(r.engine.Catalog().Window(), page))
}

func stockBadge(product catalog.Product) string {
	switch product.StockLevel() {
	case catalog.StockOut:
		return "out of stock"
	case catalog.StockLow:
		return fmt.Sprintf("%d left", product.StockQuantity)
	default:
		return fmt.Sprintf("%d in stock", product.StockQuantity)
	}
}

// formatWindow renders the navigable window plus first/last shortcuts.
func formatWindow(window []int, page catalog.Page) string {
	parts := make([]string, 0, len(window)+2)
	if len(window) > 0 && window[0] > 1 {
		parts = append(parts, "1 ...")
	}
	for _, n := range window {
		if n == page.Page {
			parts = append(parts, fmt.Sprintf("[%d]", n))
		} else {
			parts = append(parts, strconv.Itoa(n))
		}
	}
	if len(window) > 0 && window[len(window)-1] < page.TotalPages {
		parts = append(parts, "... "+strconv.Itoa(page.TotalPages))
	}
	return strings.Join(parts, " ")
}

func (r *repl) findDisplayed(productID string) (catalog.Product, bool) {
	for _, product := range r.engine.Catalog().Page().Items {
		if product.ID == productID {
			return product, true
		}
	}
	return catalog.Product{}, false
}

func (r *repl) addToCart(args []string) {
	if len(args) != 1 {
		r.println("usage: add <product-id>")
		return
	}
	product, ok := r.findDisplayed(args[0])
	if !ok {
		r.println("No such product on this page.")
		return
	}
	if product.StockQuantity == 0 {
		r.println("Out of stock.")
		return
	}
	r.engine.Cart().Add(product)
}

func (r *repl) setQuantity(args []string) {
	if len(args) != 2 {
		r.println("usage: qty <product-id> <n>")
		return
	}
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		r.println("usage: qty <product-id> <n>")
		return
	}
	// The ceiling check lives here, against the displayed product; the
	// cart's manual entry path applies no clamp of its own.
	if product, ok := r.findDisplayed(args[0]); ok && quantity > product.StockQuantity {
		quantity = product.StockQuantity
		r.printf("Only %d in stock.\n", quantity)
	}
	r.engine.Cart().SetQuantity(args[0], quantity)
}

func (r *repl) removeFromCart(args []string) {
	if len(args) != 1 {
		r.println("usage: rm <product-id>")
		return
	}
	r.engine.Cart().Remove(args[0])
}

func (r *repl) showCart() {
	lines := r.engine.Cart().Lines()
	if len(lines) == 0 {
		r.println("Your cart is empty.")
		return
	}
	for _, line := range lines {
		r.printf("  %-12s %-24s %3d × %8.2f = %8.2f\n",
			line.Product.ID, line.Product.Name, line.Quantity, line.Product.Price, line.Subtotal())
	}
	r.printf("Total: %.2f\n", r.engine.Cart().Total())
}

func (r *repl) showOrders(ctx context.Context) {
	if err := r.engine.Orders().RefreshList(ctx); err != nil {
		r.println("Could not refresh orders; showing the last known list.")
	}
	list := r.engine.Orders().List()
	if len(list) == 0 {
		r.println("No orders yet.")
		return
	}
	for _, order := range list {
		r.printf("  #%-12s %10.2f  %s %s\n",
			shortID(order.ID), order.TotalAmount, severityMark(order.Status), order.Status)
		if order.Message != "" {
			r.printf("   %s\n", order.Message)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

func severityMark(status orders.Status) string {
	switch status.Severity() {
	case orders.SeverityDone:
		return "✓"
	case orders.SeverityFailed:
		return "✗"
	case orders.SeverityProgress:
		return "…"
	default:
		return "·"
	}
}

func (r *repl) showNotice() {
	if msg := r.engine.Notices().Current(); msg != nil {
		r.printf("» %s\n", msg.Text)
	}
}

func (r *repl) println(text string) {
	fmt.Fprintln(r.out, text)
}

func (r *repl) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}
