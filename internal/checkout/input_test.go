package checkout_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fedya1922n/food-shop/internal/checkout"
)

func TestFormatCardNumber(t *testing.T) {
	require.Equal(t, "1234 5678 1234 5678", checkout.FormatCardNumber("1234567812345678"))
	require.Equal(t, "1234 5678 1234 5678", checkout.FormatCardNumber("1234-5678-1234-5678-999"))
	require.Equal(t, "1234 5", checkout.FormatCardNumber("12 345"))
	require.Equal(t, "", checkout.FormatCardNumber("abc"))
}

func TestNormalizeCardHolder(t *testing.T) {
	require.Equal(t, "JOHN DOE", checkout.NormalizeCardHolder("john doe"))
	require.Equal(t, "JOHN DOE", checkout.NormalizeCardHolder("J0hn_D*oe"))
	require.Equal(t, "", checkout.NormalizeCardHolder("1234"))
}

func TestNormalizeExpiry(t *testing.T) {
	require.Equal(t, "", checkout.NormalizeExpiry(""))
	require.Equal(t, "0", checkout.NormalizeExpiry("0"))
	require.Equal(t, "06", checkout.NormalizeExpiry("06"))
	require.Equal(t, "06/2", checkout.NormalizeExpiry("062"))
	require.Equal(t, "06/27", checkout.NormalizeExpiry("0627extra"))
	// Months beyond 12 collapse to January.
	require.Equal(t, "01", checkout.NormalizeExpiry("13"))
	require.Equal(t, "01/26", checkout.NormalizeExpiry("1326"))
}

func TestNormalizeCVV(t *testing.T) {
	require.Equal(t, "123", checkout.NormalizeCVV("123"))
	require.Equal(t, "123", checkout.NormalizeCVV("12345"))
	require.Equal(t, "12", checkout.NormalizeCVV("1a2"))
}
