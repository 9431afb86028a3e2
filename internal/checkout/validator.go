package checkout

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Reason is a machine-readable validation failure code. Presentation maps
// reasons to localized messages; the validator never produces message text.
type Reason string

const (
	// ReasonNone means the field passed.
	ReasonNone Reason = ""
	// ReasonCardNumberInvalid flags a card number that is not 16 digits.
	ReasonCardNumberInvalid Reason = "card_number_invalid"
	// ReasonCardHolderInvalid flags a holder name outside the allowed shape.
	ReasonCardHolderInvalid Reason = "card_holder_invalid"
	// ReasonExpiryInvalid flags a malformed or implausible expiry date.
	ReasonExpiryInvalid Reason = "expiry_invalid"
	// ReasonCardExpired flags an expiry strictly before the current month.
	ReasonCardExpired Reason = "card_expired"
	// ReasonCVVInvalid flags a CVV that is not 3 digits.
	ReasonCVVInvalid Reason = "cvv_invalid"
)

// MessageKey returns the localization key for a reason.
func (r Reason) MessageKey() string {
	switch r {
	case ReasonCardNumberInvalid:
		return "cart.invalidCardNumber"
	case ReasonCardHolderInvalid:
		return "cart.invalidCardHolder"
	case ReasonExpiryInvalid:
		return "cart.invalidExpiryDate"
	case ReasonCardExpired:
		return "cart.expiredCard"
	case ReasonCVVInvalid:
		return "cart.invalidCvv"
	default:
		return ""
	}
}

// PaymentForm is the transient payment-instrument state submitted at
// checkout. It is discarded after submission.
type PaymentForm struct {
	CardNumber string `json:"cardNumber" validate:"required"`
	CardHolder string `json:"cardHolder" validate:"required"`
	ExpiryDate string `json:"expiryDate" validate:"required"`
	CVV        string `json:"cvv" validate:"required"`
}

// FieldError pairs a form field with its failure reason.
type FieldError struct {
	Field  string `json:"field"`
	Reason Reason `json:"reason"`
}

const expiryYearHorizon = 10

var (
	sixteenDigits = regexp.MustCompile(`^\d{16}$`)
	holderPattern = regexp.MustCompile(`^[A-Z ]+$`)
	threeDigits   = regexp.MustCompile(`^\d{3}$`)
	nonDigit      = regexp.MustCompile(`\D`)
)

// CheckCardNumber strips whitespace and requires exactly 16 digits.
func CheckCardNumber(v string) Reason {
	clean := strings.ReplaceAll(v, " ", "")
	if !sixteenDigits.MatchString(clean) {
		return ReasonCardNumberInvalid
	}
	return ReasonNone
}

// CheckCardHolder requires a trimmed length in [4,25] with only uppercase
// letters and spaces.
func CheckCardHolder(v string) Reason {
	clean := strings.TrimSpace(v)
	if len(clean) < 4 || len(clean) > 25 || !holderPattern.MatchString(clean) {
		return ReasonCardHolderInvalid
	}
	return ReasonNone
}

// CheckExpiry validates a complete MM/YY value against the injected now:
// month in [1,12], not strictly before the current year/month, and no more
// than ten years ahead.
func CheckExpiry(v string, now time.Time) Reason {
	digits := nonDigit.ReplaceAllString(v, "")
	if len(digits) != 4 {
		return ReasonExpiryInvalid
	}
	month, _ := strconv.Atoi(digits[:2])
	year, _ := strconv.Atoi(digits[2:])
	if month < 1 || month > 12 {
		return ReasonExpiryInvalid
	}
	fullYear := 2000 + year
	if fullYear < now.Year() || (fullYear == now.Year() && month < int(now.Month())) {
		return ReasonCardExpired
	}
	if fullYear > now.Year()+expiryYearHorizon {
		return ReasonExpiryInvalid
	}
	return ReasonNone
}

// CheckExpiryPartial validates incomplete expiry input. Validation is
// deferred until all four digits are present, except that an out-of-range
// two-digit month prefix is flagged immediately.
func CheckExpiryPartial(v string, now time.Time) Reason {
	digits := nonDigit.ReplaceAllString(v, "")
	if len(digits) >= 4 {
		return CheckExpiry(digits[:4], now)
	}
	if len(digits) >= 2 {
		month, _ := strconv.Atoi(digits[:2])
		if month < 1 || month > 12 {
			return ReasonExpiryInvalid
		}
	}
	return ReasonNone
}

// CheckCVV requires exactly 3 digits.
func CheckCVV(v string) Reason {
	if !threeDigits.MatchString(v) {
		return ReasonCVVInvalid
	}
	return ReasonNone
}

// Validate runs all field validators against the injected now. Submission is
// accepted only when the result is empty.
func Validate(form PaymentForm, now time.Time) []FieldError {
	var errs []FieldError
	if r := CheckCardNumber(form.CardNumber); r != ReasonNone {
		errs = append(errs, FieldError{Field: "cardNumber", Reason: r})
	}
	if r := CheckCardHolder(form.CardHolder); r != ReasonNone {
		errs = append(errs, FieldError{Field: "cardHolder", Reason: r})
	}
	if r := CheckExpiry(form.ExpiryDate, now); r != ReasonNone {
		errs = append(errs, FieldError{Field: "expiryDate", Reason: r})
	}
	if r := CheckCVV(form.CVV); r != ReasonNone {
		errs = append(errs, FieldError{Field: "cvv", Reason: r})
	}
	return errs
}
