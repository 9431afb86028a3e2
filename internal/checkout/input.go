package checkout

import (
	"regexp"
	"strconv"
	"strings"
)

// Input shaping helpers mirroring what the storefront applies while the user
// types. They normalize, they do not validate.

var nonUpperSpace = regexp.MustCompile(`[^A-Z ]`)

// FormatCardNumber keeps up to 16 digits grouped in blocks of four.
func FormatCardNumber(v string) string {
	digits := nonDigit.ReplaceAllString(v, "")
	if len(digits) > 16 {
		digits = digits[:16]
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeCardHolder uppercases the value and strips everything outside
// uppercase letters and spaces.
func NormalizeCardHolder(v string) string {
	return nonUpperSpace.ReplaceAllString(strings.ToUpper(v), "")
}

// NormalizeExpiry keeps up to four digits as MM/YY, coercing an over-range
// month prefix to "01".
func NormalizeExpiry(v string) string {
	digits := nonDigit.ReplaceAllString(v, "")
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) == 0 {
		return ""
	}
	if len(digits) <= 2 {
		return coerceMonth(digits)
	}
	return coerceMonth(digits[:2]) + "/" + digits[2:]
}

// NormalizeCVV keeps up to three digits.
func NormalizeCVV(v string) string {
	digits := nonDigit.ReplaceAllString(v, "")
	if len(digits) > 3 {
		digits = digits[:3]
	}
	return digits
}

func coerceMonth(m string) string {
	if n, err := strconv.Atoi(m); err == nil && n > 12 {
		return "01"
	}
	return m
}
