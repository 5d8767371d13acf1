package catalog

import "github.com/shopspring/decimal"

// Product is a read-only catalog entry.
type Product struct {
	ID              int              `json:"id"`
	Title           string           `json:"title"`
	Category        string           `json:"category"`
	Description     string           `json:"description,omitempty"`
	Features        []string         `json:"features,omitempty"`
	Price           decimal.Decimal  `json:"price"`
	OriginalPrice   *decimal.Decimal `json:"original_price,omitempty"`
	DiscountPercent int              `json:"discount"`
	Images          []string         `json:"images"`
	Rating          float64          `json:"rating"`
	Reviews         int              `json:"reviews"`
	Stock           int              `json:"stock"`
}

// Image returns the first image, used as the cart thumbnail.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
