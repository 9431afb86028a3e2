package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fedya1922n/food-shop/internal/catalog"
	"github.com/fedya1922n/food-shop/internal/common"
	"github.com/fedya1922n/food-shop/internal/i18n"
	"github.com/fedya1922n/food-shop/internal/obs"
	"github.com/fedya1922n/food-shop/internal/pricing"
)

// Handler wires the cart store to HTTP.
type Handler struct {
	Store   *Store
	Catalog *catalog.Service
	Bundle  *i18n.Bundle
	Log     zerolog.Logger
}

type lineView struct {
	Grouped
	DisplayName  string `json:"displayName"`
	DisplayPrice string `json:"displayPrice"`
	LineTotal    string `json:"lineTotal"`
}

// Get returns grouped cart contents plus totals converted for the request
// language. The stored base total is included alongside the display total.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	lang := common.Language(r)
	grouped := h.Store.Grouped()

	views := make([]lineView, 0, len(grouped))
	pricingItems := make([]pricing.Item, 0, len(grouped))
	for _, g := range grouped {
		it := pricing.Item{Price: g.Price, Discount: g.Discount, Quantity: g.Quantity}
		pricingItems = append(pricingItems, it)
		views = append(views, lineView{
			Grouped:      g,
			DisplayName:  h.localizedName(g.Name, lang),
			DisplayPrice: pricing.Format(pricing.Convert(pricing.Effective(g.Price, g.Discount), lang)),
			LineTotal:    pricing.Format(pricing.Convert(pricing.LineTotal(it), lang)),
		})
	}
	subtotal := pricing.Subtotal(pricingItems)
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"items":        views,
			"count":        h.Store.Len(),
			"capacity":     h.Store.Capacity(),
			"baseTotal":    subtotal,
			"displayTotal": pricing.Format(pricing.Convert(subtotal, lang)),
			"currency":     h.Bundle.T(lang, "money.currency"),
			"fullNotice":   h.Store.FullNotice(),
		},
	})
}

// AddItem snapshots a catalog product into the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	lang := common.Language(r)
	var payload struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	id := strings.TrimSpace(payload.ProductID)
	if id == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "productId is required", nil)
		return
	}
	product, err := h.Catalog.Get(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load product", nil)
		return
	}

	switch h.Store.Add(r.Context(), product) {
	case Added:
		h.countAdd("added")
		common.JSON(w, http.StatusCreated, map[string]any{
			"data": map[string]any{"count": h.Store.Len()},
		})
	case RejectedInvalid:
		h.countAdd("invalid")
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_PRODUCT", "product failed validation", nil)
	case RejectedFull:
		h.countAdd("full")
		common.JSONError(w, http.StatusConflict, "CART_FULL", h.Bundle.T(lang, "cart.fullNotification"), map[string]any{
			"capacity": h.Store.Capacity(),
		})
	}
}

// RemoveItem removes one occurrence of the product id.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.Store.RemoveOne(r.Context(), id) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not in cart", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"count": h.Store.Len()},
	})
}

// Clear empties the cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	h.Store.Clear(r.Context())
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"count": 0},
	})
}

func (h *Handler) localizedName(name, lang string) string {
	key := "products." + name
	if h.Bundle.Has(lang, key) || h.Bundle.Has(i18n.DefaultLanguage, key) {
		return h.Bundle.T(lang, key)
	}
	return name
}

func (h *Handler) countAdd(result string) {
	if obs.CartAddTotal != nil {
		obs.CartAddTotal.WithLabelValues(result).Inc()
	}
	if obs.CartSizeGauge != nil {
		obs.CartSizeGauge.Set(float64(h.Store.Len()))
	}
}
