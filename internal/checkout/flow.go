package checkout

import (
	"errors"
	"maps"
	"sync"

	"github.com/imrishuroy/go-storefront-checkout/internal/orders"
	"github.com/imrishuroy/go-storefront-checkout/internal/validation"
)

// State is the checkout flow stage.
type State string

const (
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StateConfirmed  State = "confirmed"
)

var (
	ErrEmptyCart  = errors.New("nothing to order")
	ErrSubmitting = errors.New("order is being placed")
	ErrConfirmed  = errors.New("order already placed; start a new checkout")
)

// Snapshot is a read-only copy of a flow.
type Snapshot struct {
	State     State                   `json:"state"`
	Form      validation.CheckoutForm `json:"form"`
	Errors    map[string]string       `json:"errors"`
	OrderID   string                  `json:"order_id"`
	LastOrder *orders.Record          `json:"last_order,omitempty"`
}

type flow struct {
	mu        sync.Mutex
	started   bool
	state     State
	form      validation.CheckoutForm
	errors    map[string]string
	orderID   string
	lastOrder *orders.Record
}

// snapshot must be called with f.mu held.
func (f *flow) snapshot() Snapshot {
	s := Snapshot{
		State:   f.state,
		Form:    f.form,
		Errors:  maps.Clone(f.errors),
		OrderID: f.orderID,
	}
	if s.Errors == nil {
		s.Errors = map[string]string{}
	}
	if f.lastOrder != nil {
		rec := *f.lastOrder
		s.LastOrder = &rec
	}
	return s
}
