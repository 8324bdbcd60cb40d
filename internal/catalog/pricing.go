package catalog

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/gamms/storefront/internal/domain"
)

// referencePrices is the fixed category→price table used when a product has
// no explicit price. Both spellings of "Decoración" appear because the data
// source is inconsistent about accents.
var referencePrices = map[string]float64{
	"Regalos":    25,
	"Ropa":       35,
	"Decoracion": 18,
	"Decoración": 18,
	"Hogar":      15,
	"Mascotas":   20,
}

const fallbackReferencePrice = 20

// ReferencePrice returns the referential price for a category.
func ReferencePrice(category string) float64 {
	if p, ok := referencePrices[category]; ok {
		return p
	}
	return fallbackReferencePrice
}

// DisplayPrice picks the price a page shows for a product: its own price
// when set, otherwise the category's referential price. The second return
// reports whether the price is referential.
func DisplayPrice(p domain.Product) (float64, bool) {
	if p.Price > 0 {
		return p.Price, false
	}
	return ReferencePrice(p.Category), true
}

// RefCode builds the display reference, e.g. "REF-ROP-002": the first three
// alphanumeric, uppercased characters of the category plus the zero-padded id.
func RefCode(p domain.Product) string {
	slug := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, p.Category)
	slug = stripNonASCII(slug)
	if len(slug) > 3 {
		slug = slug[:3]
	}
	if slug == "" {
		slug = "GEN"
	}
	return fmt.Sprintf("REF-%s-%03d", slug, p.ID)
}

func stripNonASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 'Z' || r < '0' {
			return -1
		}
		return r
	}, s)
}

// Offer is a discounted product shown on the offers strip. The discounted
// price is what goes into the cart when the offer is added.
type Offer struct {
	Product domain.Product
	Percent int64
	Price   float64
}

// Offers selects up to the first four products and applies a deterministic
// per-id discount: pct = max(10, id*7 mod 31), price rounded to two decimals.
func Offers(products []domain.Product) []Offer {
	n := len(products)
	if n > 4 {
		n = 4
	}

	offers := make([]Offer, 0, n)
	for _, p := range products[:n] {
		price := p.Price
		if price <= 0 {
			price = fallbackReferencePrice
		}
		pct := (p.ID * 7) % 31
		if pct < 10 {
			pct = 10
		}

		discounted := decimal.NewFromFloat(price).
			Mul(decimal.NewFromInt(100 - pct)).
			Div(decimal.NewFromInt(100)).
			Round(2)

		offers = append(offers, Offer{
			Product: p,
			Percent: pct,
			Price:   discounted.InexactFloat64(),
		})
	}
	return offers
}
