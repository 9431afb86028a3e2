package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fedya1922n/food-shop/internal/common"
	"github.com/fedya1922n/food-shop/internal/i18n"
	"github.com/fedya1922n/food-shop/internal/obs"
)

// Handler wires the checkout service to HTTP.
type Handler struct {
	Svc      *Service
	Bundle   *i18n.Bundle
	Validate *validator.Validate
}

// Open transitions to the payment form.
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Open(); err != nil {
		if errors.Is(err, ErrCartEmpty) {
			common.JSONError(w, http.StatusConflict, "CART_EMPTY", "cannot open payment for an empty cart", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to open payment", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"state": h.Svc.State()},
	})
}

// Cancel closes the payment form.
func (h *Handler) Cancel(w http.ResponseWriter, _ *http.Request) {
	h.Svc.Cancel()
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"state": h.Svc.State()},
	})
}

// State reports the current checkout state.
func (h *Handler) State(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"state": h.Svc.State()},
	})
}

type fieldErrorView struct {
	Field   string `json:"field"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

type validateFieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

// ValidateField shapes one payment field the way the storefront does while
// the user types and reports the live validation reason where one applies.
// Expiry is checked as soon as a month prefix is complete; card number and
// CVV are shaped only, their full checks run at submission.
func (h *Handler) ValidateField(w http.ResponseWriter, r *http.Request) {
	lang := common.Language(r)
	var req validateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "missing field name", nil)
			return
		}
	}

	var (
		shaped string
		reason Reason
	)
	switch req.Field {
	case "cardNumber":
		shaped = FormatCardNumber(req.Value)
	case "cardHolder":
		shaped = NormalizeCardHolder(req.Value)
		if len(shaped) > 25 {
			reason = ReasonCardHolderInvalid
		}
	case "expiryDate":
		shaped = NormalizeExpiry(req.Value)
		reason = CheckExpiryPartial(shaped, h.now())
	case "cvv":
		shaped = NormalizeCVV(req.Value)
	default:
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unknown field", nil)
		return
	}

	message := ""
	if reason != ReasonNone {
		message = h.Bundle.T(lang, reason.MessageKey())
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"field":   req.Field,
			"value":   shaped,
			"reason":  reason,
			"message": message,
		},
	})
}

func (h *Handler) now() time.Time {
	if h.Svc != nil && h.Svc.Clock != nil {
		return h.Svc.Clock.Now()
	}
	return time.Now()
}

// Submit validates the payment form and completes the purchase.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	lang := common.Language(r)
	var form PaymentForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(form); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "missing payment fields", nil)
			return
		}
	}

	result, err := h.Svc.Submit(r.Context(), form, lang)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotOpen):
			common.JSONError(w, http.StatusConflict, "NOT_OPEN", "payment form is not open", nil)
		case errors.Is(err, ErrCartEmpty):
			common.JSONError(w, http.StatusConflict, "CART_EMPTY", h.Bundle.T(lang, "cart.empty"), nil)
		default:
			common.RenderError(w, err)
		}
		return
	}
	if len(result.FieldErrors) > 0 {
		h.countCheckout("rejected")
		views := make([]fieldErrorView, 0, len(result.FieldErrors))
		for _, fe := range result.FieldErrors {
			views = append(views, fieldErrorView{
				Field:   fe.Field,
				Reason:  fe.Reason,
				Message: h.Bundle.T(lang, fe.Reason.MessageKey()),
			})
		}
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "payment details rejected", views)
		return
	}

	h.countCheckout("accepted")
	if obs.PurchaseTotalValue != nil {
		obs.PurchaseTotalValue.Add(result.Record.TotalPrice)
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{
			"state":   result.State,
			"record":  result.Record,
			"message": h.Bundle.T(lang, "cart.successPurchase"),
		},
	})
}

func (h *Handler) countCheckout(result string) {
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues(result).Inc()
	}
}
