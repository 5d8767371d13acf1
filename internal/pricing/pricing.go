package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-storefront-checkout/internal/cart"
	"github.com/imrishuroy/go-storefront-checkout/internal/coupon"
	"github.com/imrishuroy/go-storefront-checkout/internal/money"
)

// TaxRate is applied to the subtotal.
var TaxRate = decimal.NewFromFloat(0.08)

// ShippingPolicy waives the flat fee once the subtotal is strictly above FreeAbove.
type ShippingPolicy struct {
	FreeAbove decimal.Decimal
	Fee       decimal.Decimal
}

// DefaultShipping is shared by every view that prices a cart.
var DefaultShipping = ShippingPolicy{
	FreeAbove: decimal.NewFromInt(1000),
	Fee:       decimal.NewFromInt(100),
}

// Cost returns the shipping charge for subtotal.
func (p ShippingPolicy) Cost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(p.FreeAbove) {
		return decimal.Zero
	}
	return p.Fee
}

// Totals is the priced result for one cart snapshot.
type Totals struct {
	ItemCount int
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Tax       decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
}

// Display is Totals rendered for clients, two decimals per amount.
type Display struct {
	ItemCount    int    `json:"item_count"`
	Subtotal     string `json:"subtotal"`
	Shipping     string `json:"shipping"`
	FreeShipping bool   `json:"free_shipping"`
	Tax          string `json:"tax"`
	Discount     string `json:"discount"`
	Total        string `json:"total"`
}

// Quote prices lines. Nothing is cached; callers quote on every read.
func Quote(lines []cart.LineItem, c coupon.State, policy ShippingPolicy) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}

	discount := decimal.Zero
	if c.Applied {
		discount = subtotal.Mul(c.Rate)
	}

	t := Totals{
		ItemCount: cart.CountItems(lines),
		Subtotal:  subtotal,
		Shipping:  policy.Cost(subtotal),
		Tax:       subtotal.Mul(TaxRate),
		Discount:  discount,
	}
	t.Total = t.Subtotal.Add(t.Shipping).Add(t.Tax).Sub(t.Discount)
	return t
}

// Display formats t.
func (t Totals) Display() Display {
	return Display{
		ItemCount:    t.ItemCount,
		Subtotal:     money.Format(t.Subtotal),
		Shipping:     money.Format(t.Shipping),
		FreeShipping: t.Shipping.IsZero(),
		Tax:          money.Format(t.Tax),
		Discount:     money.Format(t.Discount),
		Total:        money.Format(t.Total),
	}
}
