package catalog

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fedya1922n/food-shop/internal/common"
	"github.com/fedya1922n/food-shop/internal/pricing"
)

// Handler wires the catalog service to HTTP.
type Handler struct {
	Svc    *Service
	Prompt *SwitchPrompt
}

type productView struct {
	Product
	DisplayName  string  `json:"displayName"`
	DisplayPrice string  `json:"displayPrice"`
	Effective    float64 `json:"effectivePrice"`
	Currency     string  `json:"currency"`
}

func (h *Handler) view(p Product, lang string) productView {
	effective := pricing.Effective(p.Price, p.Discount)
	return productView{
		Product:      p,
		DisplayName:  h.Svc.LocalizedName(p, lang),
		DisplayPrice: pricing.Format(pricing.Convert(effective, lang)),
		Effective:    effective,
		Currency:     h.Svc.bundle.T(lang, "money.currency"),
	}
}

// List returns the catalog, optionally filtered by type.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	lang := common.Language(r)
	products := h.Svc.List()
	if t := strings.TrimSpace(r.URL.Query().Get("type")); t != "" {
		products = h.Svc.ByType(t)
	}
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, h.view(p, lang))
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": views})
}

// Get returns a single product by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	lang := common.Language(r)
	p, err := h.Svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load product", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.view(p, lang)})
}

// Search matches localized product names and surfaces a language-switch
// suggestion when the query matched a language other than the active one.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	lang := common.Language(r)
	query := r.URL.Query().Get("q")
	matches := h.Svc.Search(query)

	if suggest := SuggestLanguage(matches, lang); suggest != "" {
		h.Prompt.Raise(suggest)
	}

	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"matches":         matches,
			"detectedLang":    DetectLanguage(query),
			"suggestLanguage": h.Prompt.Active(),
		},
	})
}

// DismissPrompt clears the language-switch suggestion.
func (h *Handler) DismissPrompt(w http.ResponseWriter, _ *http.Request) {
	h.Prompt.Dismiss()
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"suggestLanguage": ""}})
}
