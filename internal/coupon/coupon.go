package coupon

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidCoupon is returned for codes outside the allow-list.
var ErrInvalidCoupon = errors.New("invalid coupon code")

// RejectionMessage is what the shopper sees when a code is rejected.
const RejectionMessage = "Invalid coupon code. Try 'SAVE10' or 'WELCOME15'"

// DefaultRate is the discount every known code grants.
var DefaultRate = decimal.NewFromFloat(0.10)

// codes is the allow-list, keyed by upper-case code.
var codes = map[string]decimal.Decimal{
	"SAVE10":    DefaultRate,
	"WELCOME15": DefaultRate,
}

// State is the coupon applied to a cart. The zero value means none.
type State struct {
	Code    string          `json:"code,omitempty"`
	Applied bool            `json:"applied"`
	Rate    decimal.Decimal `json:"rate"`
}

// Apply validates code and returns the resulting state. Matching ignores case
// and surrounding spaces. Re-applying the active code returns the state
// unchanged; another valid code replaces it. An invalid code leaves the
// current state in place and returns ErrInvalidCoupon.
func Apply(current State, code string) (State, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	rate, ok := codes[normalized]
	if !ok {
		return current, ErrInvalidCoupon
	}
	if current.Applied && current.Code == normalized {
		return current, nil
	}
	return State{Code: normalized, Applied: true, Rate: rate}, nil
}

// Remove clears the applied coupon.
func Remove(State) State { return State{} }

// Known reports whether code is on the allow-list.
func Known(code string) bool {
	_, ok := codes[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}
