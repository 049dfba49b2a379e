package orders

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// Status is the server-assigned order state. The client never advances a
// status itself; every value here is an authoritative copy refreshed by
// re-fetch.
type Status string

const (
	StatusCreated           Status = "CREATED"
	StatusPaymentPending    Status = "PAYMENT_PENDING"
	StatusPaymentSuccessful Status = "PAYMENT_SUCCESSFUL"
	StatusPaymentFailed     Status = "PAYMENT_FAILED"
	StatusStockReserved     Status = "STOCK_RESERVED"
	StatusStockInsufficient Status = "STOCK_INSUFFICIENT"
	StatusReadyForShipping  Status = "READY_FOR_SHIPPING"
	StatusShipped           Status = "SHIPPED"
	StatusDelivered         Status = "DELIVERED"
	StatusCancelled         Status = "CANCELLED"
)

// Severity classifies a status for presentation.
type Severity int

const (
	SeverityNeutral Severity = iota
	SeverityProgress
	SeverityDone
	SeverityFailed
)

// Severity maps the status onto its display classification. Cancelled and
// unknown statuses both read as neutral.
func (s Status) Severity() Severity {
	switch s {
	case StatusCreated, StatusPaymentPending, StatusStockReserved, StatusReadyForShipping, StatusShipped:
		return SeverityProgress
	case StatusPaymentSuccessful, StatusDelivered:
		return SeverityDone
	case StatusPaymentFailed, StatusStockInsufficient:
		return SeverityFailed
	default:
		return SeverityNeutral
	}
}

// Item is one product entry on an order.
type Item struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order is one record of the user's order history.
type Order struct {
	ID          string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	TotalAmount float64   `json:"total_amount"`
	Status      Status    `json:"status"`
	Message     string    `json:"message"`
	Items       []Item    `json:"items,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// UnknownOrderID marks a placeholder produced from a record that could not
// be parsed.
const UnknownOrderID = "unknown"

// parseOrders decodes the raw order list record by record. A malformed
// record (unparseable, or missing its id) becomes an identifiable
// placeholder instead of sinking its siblings.
func parseOrders(raw []json.RawMessage) []Order {
	list := make([]Order, 0, len(raw))
	for _, record := range raw {
		var order Order
		if err := json.Unmarshal(record, &order); err != nil || order.ID == "" {
			log.Warn().Msg("skipping unreadable order record")
			list = append(list, Order{ID: UnknownOrderID, Message: "unrecognised order record"})
			continue
		}
		list = append(list, order)
	}
	return list
}
