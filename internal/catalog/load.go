package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-storefront-checkout/internal/money"
)

// rawProduct is the on-disk shape. Prices may be numbers or strings such as "₹1299".
type rawProduct struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	Features      []string `json:"features"`
	Price         any      `json:"price"`
	OriginalPrice any      `json:"originalPrice"`
	Discount      int      `json:"discount"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
	Stock         int      `json:"stock"`
	Images        []string `json:"images"`
}

// Load decodes a JSON product array and builds a catalog from it.
// Malformed prices fail the load instead of defaulting to zero.
func Load(r io.Reader) (*Catalog, error) {
	var raw []rawProduct
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	products := make([]Product, 0, len(raw))
	for _, rp := range raw {
		p, err := rp.toProduct()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return New(products)
}

// LoadFile opens path and calls Load.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (rp rawProduct) toProduct() (Product, error) {
	p := Product{
		ID:              rp.ID,
		Title:           rp.Title,
		Category:        rp.Category,
		Description:     rp.Description,
		Features:        rp.Features,
		DiscountPercent: rp.Discount,
		Rating:          rp.Rating,
		Reviews:         rp.Reviews,
		Stock:           rp.Stock,
		Images:          rp.Images,
	}

	price, err := money.Parse(rp.Price)
	if err != nil {
		return Product{}, fmt.Errorf("product %d price: %w", rp.ID, err)
	}
	p.Price = price

	if rp.OriginalPrice != nil {
		var op decimal.Decimal
		op, err = money.Parse(rp.OriginalPrice)
		if err != nil {
			return Product{}, fmt.Errorf("product %d original price: %w", rp.ID, err)
		}
		p.OriginalPrice = &op
	}
	return p, nil
}
