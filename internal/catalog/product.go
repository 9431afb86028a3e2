// Package catalog serves the immutable product list and localized search.
package catalog

import (
	"regexp"
	"strings"
)

// Product is one catalog entry. Name is the locale key suffix under
// "products."; Price is in base currency.
type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	Image       string     `json:"image"`
	Discount    *int       `json:"discount,omitempty"`
	Category    string     `json:"category,omitempty"`
	Type        string     `json:"type,omitempty"`
	ImageQuery  string     `json:"imageQuery,omitempty"`
	Ingredients []string   `json:"ingredients,omitempty"`
	Nutrition   *Nutrition `json:"nutritionalInfo,omitempty"`
}

// Nutrition holds per-product nutritional values.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// ValidImageURL matches absolute http(s) URLs and absolute paths ending in a
// known raster or vector extension, with an optional query string.
var ValidImageURL = regexp.MustCompile(`^(https?://.+|/.+)\.(png|jpg|jpeg|gif|svg|webp)(\?.*)?$`)

// Valid reports whether a product is complete enough to display and sell:
// non-blank id and name, a non-negative price (free items are sellable), and
// a well-formed image reference. An out-of-range discount does not invalidate
// the product; pricing treats it as absent. Everything that touches the cart
// gates on this predicate.
func Valid(p Product) bool {
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" {
		return false
	}
	if p.Price < 0 {
		return false
	}
	return ValidImageURL.MatchString(p.Image)
}
