// Package pricing computes cart amounts. All functions are pure: amounts are
// carried as float64 in the base currency (UZS) and rounded only at the final
// formatting step so grouped sums do not accumulate rounding error.
package pricing

import (
	"math"
	"strconv"
)

// Item describes a grouped line used for price calculation.
type Item struct {
	Price    float64
	Discount *int
	Quantity int
}

// conversionRates maps a language code to the multiplier applied to base
// currency amounts for display. Conversion is presentation-only; persisted
// totals always stay in base currency.
var conversionRates = map[string]float64{
	"ru": 0.00748,
	"en": 0.00007874,
	"uz": 1,
}

// defaultRateLang is the fallback for unrecognized language codes.
const defaultRateLang = "uz"

// Effective returns the unit price after discount. Discounts outside (0,100]
// are treated as absent so a bad value can never invert or zero the price.
func Effective(price float64, discount *int) float64 {
	if discount != nil && *discount > 0 && *discount <= 100 {
		return price - price*float64(*discount)/100
	}
	return price
}

// LineTotal is the discounted unit price times quantity.
func LineTotal(it Item) float64 {
	if it.Quantity <= 0 {
		return 0
	}
	return Effective(it.Price, it.Discount) * float64(it.Quantity)
}

// Subtotal sums line totals over grouped items in base currency.
func Subtotal(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += LineTotal(it)
	}
	return total
}

// Convert applies the display conversion rate for a language code, falling
// back to the default rate for unknown codes.
func Convert(amount float64, lang string) float64 {
	rate, ok := conversionRates[lang]
	if !ok {
		rate = conversionRates[defaultRateLang]
	}
	return amount * rate
}

// Rate exposes the conversion multiplier for a language code.
func Rate(lang string) float64 {
	if rate, ok := conversionRates[lang]; ok {
		return rate
	}
	return conversionRates[defaultRateLang]
}

// Round2 rounds to two decimal places. Only for final display values.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Format renders a display amount with two decimals.
func Format(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', 2, 64)
}
