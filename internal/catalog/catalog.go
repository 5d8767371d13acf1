package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrProductNotFound is returned by Get for unknown ids.
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateID is returned when two products share an id.
	ErrDuplicateID = errors.New("duplicate product id")
	// ErrNegativePrice is returned for products priced below zero.
	ErrNegativePrice = errors.New("negative product price")
)

// Catalog is an immutable, ordered product list with id lookup.
type Catalog struct {
	products []Product
	byID     map[int]int
}

// New validates products and builds a catalog. Ids must be unique and prices
// non-negative.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	for _, p := range products {
		if _, ok := c.byID[p.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("%w: product %d", ErrNegativePrice, p.ID)
		}
		if p.OriginalPrice != nil && p.OriginalPrice.IsNegative() {
			return nil, fmt.Errorf("%w: product %d original price", ErrNegativePrice, p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, clone(p))
	}
	return c, nil
}

// Get returns a copy of the product with the given id.
func (c *Catalog) Get(id int) (Product, error) {
	idx, ok := c.byID[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	return clone(c.products[idx]), nil
}

// List returns every product in catalog order.
func (c *Catalog) List() []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, clone(p))
	}
	return out
}

// ByCategory returns the products whose category matches, ignoring case.
func (c *Catalog) ByCategory(category string) []Product {
	var out []Product
	for _, p := range c.products {
		if strings.EqualFold(p.Category, strings.TrimSpace(category)) {
			out = append(out, clone(p))
		}
	}
	return out
}

// Categories returns the distinct categories, sorted.
func (c *Catalog) Categories() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

// Len is the number of products.
func (c *Catalog) Len() int { return len(c.products) }

// clone keeps callers from mutating catalog slices.
func clone(p Product) Product {
	p.Features = append([]string(nil), p.Features...)
	p.Images = append([]string(nil), p.Images...)
	if p.OriginalPrice != nil {
		op := *p.OriginalPrice
		p.OriginalPrice = &op
	}
	return p
}
