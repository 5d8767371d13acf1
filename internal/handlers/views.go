package handlers

import (
	"github.com/imrishuroy/go-storefront-checkout/internal/cart"
	"github.com/imrishuroy/go-storefront-checkout/internal/checkout"
	"github.com/imrishuroy/go-storefront-checkout/internal/coupon"
	"github.com/imrishuroy/go-storefront-checkout/internal/money"
	"github.com/imrishuroy/go-storefront-checkout/internal/pricing"
	"github.com/imrishuroy/go-storefront-checkout/internal/session"
)

type lineView struct {
	LineID    string `json:"line_id"`
	ProductID int    `json:"product_id"`
	Title     string `json:"title"`
	Image     string `json:"image,omitempty"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type couponView struct {
	Code    string `json:"code,omitempty"`
	Applied bool   `json:"applied"`
}

type cartView struct {
	SessionID string           `json:"session_id"`
	Empty     bool             `json:"empty"`
	Items     []lineView       `json:"items"`
	ItemCount int              `json:"item_count"`
	Coupon    couponView       `json:"coupon"`
	Totals    *pricing.Display `json:"totals,omitempty"`
}

type checkoutView struct {
	checkout.Snapshot
	Express bool             `json:"express"`
	Empty   bool             `json:"empty"`
	Items   []lineView       `json:"items"`
	Totals  *pricing.Display `json:"totals,omitempty"`
}

func toLineViews(lines []cart.LineItem) []lineView {
	out := make([]lineView, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineView{
			LineID:    l.ID,
			ProductID: l.ProductID,
			Title:     l.Title,
			Image:     l.Image,
			Size:      l.Variant.Size,
			Color:     l.Variant.Color,
			Quantity:  l.Quantity,
			UnitPrice: money.Format(l.UnitPrice),
			LineTotal: money.Format(l.LineTotal()),
		})
	}
	return out
}

func toCouponView(s coupon.State) couponView {
	return couponView{Code: s.Code, Applied: s.Applied}
}

// buildCartView prices the cart with policy. An empty cart has no totals.
func buildCartView(sess *session.Session, policy pricing.ShippingPolicy) cartView {
	lines := sess.Cart.Lines()
	cpn := sess.Coupon()
	v := cartView{
		SessionID: sess.ID,
		Empty:     len(lines) == 0,
		Items:     toLineViews(lines),
		ItemCount: cart.CountItems(lines),
		Coupon:    toCouponView(cpn),
	}
	if !v.Empty {
		d := pricing.Quote(lines, cpn, policy).Display()
		v.Totals = &d
	}
	return v
}
