package checkout_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fedya1922n/food-shop/internal/checkout"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestCheckCardNumber(t *testing.T) {
	require.Equal(t, checkout.ReasonNone, checkout.CheckCardNumber("1234567812345678"))
	require.Equal(t, checkout.ReasonNone, checkout.CheckCardNumber("1234 5678 1234 5678"))
	require.Equal(t, checkout.ReasonCardNumberInvalid, checkout.CheckCardNumber("123456781234567"))
	require.Equal(t, checkout.ReasonCardNumberInvalid, checkout.CheckCardNumber("12345678123456789"))
	require.Equal(t, checkout.ReasonCardNumberInvalid, checkout.CheckCardNumber("1234abcd12345678"))
	require.Equal(t, checkout.ReasonCardNumberInvalid, checkout.CheckCardNumber(""))
}

func TestCheckCardHolder(t *testing.T) {
	require.Equal(t, checkout.ReasonNone, checkout.CheckCardHolder("JOHN DOE"))
	require.Equal(t, checkout.ReasonNone, checkout.CheckCardHolder("  ANNA  "))
	require.Equal(t, checkout.ReasonCardHolderInvalid, checkout.CheckCardHolder("ABC"))
	require.Equal(t, checkout.ReasonCardHolderInvalid, checkout.CheckCardHolder("john doe"))
	require.Equal(t, checkout.ReasonCardHolderInvalid, checkout.CheckCardHolder("JOHN-DOE"))
	require.Equal(t, checkout.ReasonCardHolderInvalid, checkout.CheckCardHolder("ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
}

func TestCheckExpiry(t *testing.T) {
	require.Equal(t, checkout.ReasonNone, checkout.CheckExpiry("06/25", testNow))
	require.Equal(t, checkout.ReasonNone, checkout.CheckExpiry("12/30", testNow))

	// Same year, earlier month.
	require.Equal(t, checkout.ReasonCardExpired, checkout.CheckExpiry("05/25", testNow))
	// A card that expired years ago.
	require.Equal(t, checkout.ReasonCardExpired, checkout.CheckExpiry("01/20", testNow))

	require.Equal(t, checkout.ReasonExpiryInvalid, checkout.CheckExpiry("13/26", testNow))
	require.Equal(t, checkout.ReasonExpiryInvalid, checkout.CheckExpiry("00/26", testNow))
	require.Equal(t, checkout.ReasonExpiryInvalid, checkout.CheckExpiry("06/2", testNow))
	// Beyond the plausibility horizon.
	require.Equal(t, checkout.ReasonExpiryInvalid, checkout.CheckExpiry("06/36", testNow))
	require.Equal(t, checkout.ReasonNone, checkout.CheckExpiry("06/35", testNow))
}

func TestCheckExpiryPartialDefersUntilComplete(t *testing.T) {
	require.Equal(t, checkout.ReasonNone, checkout.CheckExpiryPartial("", testNow))
	require.Equal(t, checkout.ReasonNone, checkout.CheckExpiryPartial("0", testNow))
	require.Equal(t, checkout.ReasonNone, checkout.CheckExpiryPartial("06", testNow))
	require.Equal(t, checkout.ReasonNone, checkout.CheckExpiryPartial("06/2", testNow))
	// Out-of-range month is flagged as soon as both digits are typed.
	require.Equal(t, checkout.ReasonExpiryInvalid, checkout.CheckExpiryPartial("13", testNow))
	// Complete input goes through the full check.
	require.Equal(t, checkout.ReasonCardExpired, checkout.CheckExpiryPartial("01/20", testNow))
}

func TestCheckCVV(t *testing.T) {
	require.Equal(t, checkout.ReasonNone, checkout.CheckCVV("123"))
	require.Equal(t, checkout.ReasonCVVInvalid, checkout.CheckCVV("12"))
	require.Equal(t, checkout.ReasonCVVInvalid, checkout.CheckCVV("1234"))
	require.Equal(t, checkout.ReasonCVVInvalid, checkout.CheckCVV("12a"))
}

func TestValidateCollectsAllFailures(t *testing.T) {
	form := checkout.PaymentForm{
		CardNumber: "1234",
		CardHolder: "ab",
		ExpiryDate: "13/26",
		CVV:        "12",
	}
	errs := checkout.Validate(form, testNow)
	require.Len(t, errs, 4)

	byField := map[string]checkout.Reason{}
	for _, fe := range errs {
		byField[fe.Field] = fe.Reason
	}
	require.Equal(t, checkout.ReasonCardNumberInvalid, byField["cardNumber"])
	require.Equal(t, checkout.ReasonCardHolderInvalid, byField["cardHolder"])
	require.Equal(t, checkout.ReasonExpiryInvalid, byField["expiryDate"])
	require.Equal(t, checkout.ReasonCVVInvalid, byField["cvv"])
}

func TestValidateAcceptsWellFormedForm(t *testing.T) {
	form := checkout.PaymentForm{
		CardNumber: "1234 5678 1234 5678",
		CardHolder: "JOHN DOE",
		ExpiryDate: "12/27",
		CVV:        "123",
	}
	require.Empty(t, checkout.Validate(form, testNow))
}

func TestReasonMessageKeys(t *testing.T) {
	require.Equal(t, "cart.invalidCardNumber", checkout.ReasonCardNumberInvalid.MessageKey())
	require.Equal(t, "cart.invalidCardHolder", checkout.ReasonCardHolderInvalid.MessageKey())
	require.Equal(t, "cart.invalidExpiryDate", checkout.ReasonExpiryInvalid.MessageKey())
	require.Equal(t, "cart.expiredCard", checkout.ReasonCardExpired.MessageKey())
	require.Equal(t, "cart.invalidCvv", checkout.ReasonCVVInvalid.MessageKey())
	require.Equal(t, "", checkout.ReasonNone.MessageKey())
}
