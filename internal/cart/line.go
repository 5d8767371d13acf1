package cart

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-storefront-checkout/internal/catalog"
)

var (
	// ErrLineNotFound is returned when a line id is not in the cart.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrInvalidPrice is returned when a product cannot be priced.
	ErrInvalidPrice = errors.New("invalid unit price")
)

// Variant is the selected size/color of a product.
type Variant struct {
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

// LineItem is one cart entry. Title, UnitPrice and Image are copied from the
// product when the line is created.
type LineItem struct {
	ID        string          `json:"line_id"`
	ProductID int             `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image,omitempty"`
	Variant   Variant         `json:"variant"`
	Quantity  int             `json:"quantity"`
}

// LineTotal is unit price times quantity.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// NewLine builds a standalone line for p. Quantity is clamped to at least 1.
func NewLine(p catalog.Product, v Variant, quantity int) (LineItem, error) {
	if p.Price.IsNegative() {
		return LineItem{}, fmt.Errorf("%w: product %d", ErrInvalidPrice, p.ID)
	}
	return LineItem{
		ID:        uuid.NewString(),
		ProductID: p.ID,
		Title:     p.Title,
		UnitPrice: p.Price,
		Image:     p.Image(),
		Variant:   v,
		Quantity:  clamp(quantity),
	}, nil
}

func clamp(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
