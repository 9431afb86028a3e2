package history

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fedya1922n/food-shop/internal/common"
	"github.com/fedya1922n/food-shop/internal/i18n"
	"github.com/fedya1922n/food-shop/internal/obs"
	"github.com/fedya1922n/food-shop/internal/pricing"
)

// Handler wires the history store to HTTP.
type Handler struct {
	Store  *Store
	Bundle *i18n.Bundle
}

type itemView struct {
	RecordItem
	DisplayPrice string `json:"displayPrice"`
}

type recordView struct {
	ID         uuid.UUID  `json:"id"`
	Date       time.Time  `json:"date"`
	Items      []itemView `json:"items"`
	TotalPrice float64    `json:"totalPrice"`
	Currency   string     `json:"currency"`
	// DisplayTotal and DisplaySymbol use the language active now, not the
	// one recorded at purchase time.
	DisplayTotal  string `json:"displayTotal"`
	DisplaySymbol string `json:"displaySymbol"`
}

// List renders purchase records converted at the current language's rate.
// Stored totals stay in base currency; only the view converts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	lang := common.Language(r)
	records := h.Store.List(r.Context())
	views := make([]recordView, 0, len(records))
	for _, rec := range records {
		items := make([]itemView, 0, len(rec.Items))
		for _, it := range rec.Items {
			line := pricing.LineTotal(pricing.Item{Price: it.Price, Discount: it.Discount, Quantity: it.Quantity})
			items = append(items, itemView{
				RecordItem:   it,
				DisplayPrice: pricing.Format(pricing.Convert(line, lang)),
			})
		}
		views = append(views, recordView{
			ID:            rec.ID,
			Date:          rec.Date,
			Items:         items,
			TotalPrice:    rec.TotalPrice,
			Currency:      rec.Currency,
			DisplayTotal:  pricing.Format(pricing.Convert(rec.TotalPrice, lang)),
			DisplaySymbol: h.Bundle.T(lang, "money.currency"),
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": views})
}

// Clear wipes the purchase history.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Clear(r.Context()); err != nil {
		common.RenderError(w, err)
		return
	}
	if obs.HistoryClearedTotal != nil {
		obs.HistoryClearedTotal.Inc()
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": []any{}})
}
