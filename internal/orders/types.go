package orders

import (
	"time"

	"github.com/imrishuroy/go-storefront-checkout/internal/cart"
	"github.com/imrishuroy/go-storefront-checkout/internal/pricing"
)

// Payment methods accepted at checkout.
const (
	PaymentCOD    = "cod"
	PaymentOnline = "online"
)

// Shipping is the delivery address captured at checkout.
type Shipping struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

// Customer is the contact captured at checkout.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Record is a placed order. It is written once and never changed.
type Record struct {
	ID         string          `json:"id"`
	CreatedAt  time.Time       `json:"date"`
	Items      []cart.LineItem `json:"items"`
	Totals     pricing.Display `json:"totals"`
	Shipping   Shipping        `json:"shipping"`
	Customer   Customer        `json:"customer"`
	Payment    string          `json:"payment"`
	CouponCode string          `json:"coupon_code,omitempty"`
	Express    bool            `json:"express,omitempty"` // placed through buy now
}

// PlacedMessage is the payload sent from the API -> SQS -> worker after an order is stored.
type PlacedMessage struct {
	OrderID   string    `json:"order_id"`
	SessionID string    `json:"session_id"`
	Total     string    `json:"total"`
	ItemCount int       `json:"item_count"`
	Payment   string    `json:"payment"`
	CreatedAt time.Time `json:"created_at"`
}

// GlobalKey identifies an order across sessions. Order ids are only unique
// within one session's history, so anything deduplicating across sessions
// keys on this instead.
func GlobalKey(sessionID, orderID string) string { return sessionID + ":" + orderID }

// Key is GlobalKey for the message.
func (m PlacedMessage) Key() string { return GlobalKey(m.SessionID, m.OrderID) }

// Message builds the order-placed payload for r.
func (r Record) Message(sessionID string) PlacedMessage {
	return PlacedMessage{
		OrderID:   r.ID,
		SessionID: sessionID,
		Total:     r.Totals.Total,
		ItemCount: r.Totals.ItemCount,
		Payment:   r.Payment,
		CreatedAt: r.CreatedAt,
	}
}
