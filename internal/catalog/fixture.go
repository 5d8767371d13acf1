package catalog

import "github.com/shopspring/decimal"

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func pricePtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// Fixture is the built-in product list served when no catalog file is configured.
func Fixture() []Product {
	return []Product{
		{
			ID:          1,
			Title:       "Vintage Leather Photo Album",
			Category:    "PREMIUM ALBUMS",
			Description: "Handcrafted leather-bound album with gold foil detailing.",
			Features: []string{
				"Genuine leather cover",
				"Acid-free archival pages",
				"Lay-flat binding",
				"50 photo capacity",
			},
			Price:           price(1299),
			OriginalPrice:   pricePtr(1999),
			DiscountPercent: 35,
			Rating:          4.8,
			Reviews:         245,
			Stock:           5,
			Images: []string{
				"https://images.unsplash.com/photo-1519681393784-d120267933ba?w=800",
				"https://images.unsplash.com/photo-1513475382585-d06e58bcb0e0?w=800",
			},
		},
		{
			ID:          2,
			Title:       "Modern Snapbook Pro",
			Category:    "SNAPBACKS",
			Description: "Modern snapbook with magnetic closure and clean design.",
			Features: []string{
				"Magnetic closure",
				"Custom cover option",
				"Archival quality pages",
			},
			Price:           price(799),
			OriginalPrice:   pricePtr(1199),
			DiscountPercent: 33,
			Rating:          4.6,
			Reviews:         189,
			Stock:           22,
			Images: []string{
				"https://images.unsplash.com/photo-1524995997946-a1c2e315a42f?w=800",
				"https://images.unsplash.com/photo-1544716278-ca5e3f4abd8c?w=800",
			},
		},
		{
			ID:          3,
			Title:       "Minimalist Photo Journal",
			Category:    "MINIMALIST",
			Description: "Clean and simple photo journal with premium matte pages.",
			Features: []string{
				"Matte finish pages",
				"Minimal linen cover",
				"Lay-flat binding",
			},
			Price:           price(649),
			OriginalPrice:   pricePtr(899),
			DiscountPercent: 28,
			Rating:          4.4,
			Reviews:         134,
			Stock:           18,
			Images: []string{
				"https://images.unsplash.com/photo-1541961017774-22349e4a1262?w=800",
				"https://images.unsplash.com/photo-1553949345-eb786bb3f7ba?w=800",
			},
		},
		{
			ID:          4,
			Title:       "Traveler’s Memory Book",
			Category:    "TRAVEL ALBUMS",
			Description: "Perfect travel companion to store photos, notes, and tickets.",
			Features: []string{
				"Expandable pockets",
				"Water-resistant cover",
				"Ticket & map holders",
			},
			Price:           price(899),
			OriginalPrice:   pricePtr(1399),
			DiscountPercent: 36,
			Rating:          4.9,
			Reviews:         312,
			Stock:           9,
			Images: []string{
				"https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=800",
				"https://images.unsplash.com/photo-1545235617-9465d2a55698?w=800",
			},
		},
		{
			ID:          5,
			Title:       "Family Heritage Album",
			Category:    "HEIRLOOM ALBUMS",
			Description: "Heirloom-quality album to preserve family memories forever.",
			Features: []string{
				"Premium velvet cover",
				"Gold-gilded edges",
				"Custom engraving option",
			},
			Price:           price(2499),
			OriginalPrice:   pricePtr(3499),
			DiscountPercent: 29,
			Rating:          4.7,
			Reviews:         167,
			Stock:           7,
			Images: []string{
				"https://images.unsplash.com/photo-1513475382585-d06e58bcb0e0?w=800",
				"https://images.unsplash.com/photo-1515378791036-0648a3ef77b2?w=800",
			},
		},
	}
}
