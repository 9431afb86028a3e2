package cart_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/fedya1922n/food-shop/internal/cart"
	"github.com/fedya1922n/food-shop/internal/catalog"
	"github.com/fedya1922n/food-shop/internal/i18n"
	"github.com/fedya1922n/food-shop/internal/sched"
)

func newCartRouter(t *testing.T, capacity int) *chi.Mux {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bundle, err := i18n.Load()
	require.NoError(t, err)
	cat, err := catalog.NewService(bundle, zerolog.Nop())
	require.NoError(t, err)

	store := cart.NewStore(cart.Config{
		Client:   client,
		Capacity: capacity,
		Clock:    sched.NewManual(time.Unix(0, 0)),
		Log:      zerolog.Nop(),
	})
	handler := &cart.Handler{Store: store, Catalog: cat, Bundle: bundle, Log: zerolog.Nop()}

	r := chi.NewRouter()
	r.Get("/cart", handler.Get)
	r.Post("/cart/items", handler.AddItem)
	r.Delete("/cart/items/{id}", handler.RemoveItem)
	r.Delete("/cart", handler.Clear)
	return r
}

func addItem(t *testing.T, r http.Handler, productID string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"productId":"`+productID+`"}`))
	r.ServeHTTP(rr, req)
	return rr
}

func TestAddItemAndGet(t *testing.T) {
	r := newCartRouter(t, 0)

	require.Equal(t, http.StatusCreated, addItem(t, r, "p-milk").Code)
	require.Equal(t, http.StatusCreated, addItem(t, r, "p-milk").Code)
	require.Equal(t, http.StatusCreated, addItem(t, r, "p-bread").Code)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/cart?lang=uz", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data struct {
			Items []struct {
				ID          string `json:"id"`
				Quantity    int    `json:"quantity"`
				DisplayName string `json:"displayName"`
			} `json:"items"`
			Count        int     `json:"count"`
			BaseTotal    float64 `json:"baseTotal"`
			DisplayTotal string  `json:"displayTotal"`
			Currency     string  `json:"currency"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, 3, body.Data.Count)
	require.Len(t, body.Data.Items, 2)
	require.Equal(t, "p-milk", body.Data.Items[0].ID)
	require.Equal(t, 2, body.Data.Items[0].Quantity)
	require.Equal(t, "Sut", body.Data.Items[0].DisplayName)
	// 2x12000 + 4000 in base currency; uz rate is 1.
	require.InDelta(t, 28000, body.Data.BaseTotal, 1e-9)
	require.Equal(t, "28000.00", body.Data.DisplayTotal)
	require.Equal(t, "soʻm", body.Data.Currency)
}

func TestAddUnknownProductReturns404(t *testing.T) {
	r := newCartRouter(t, 0)
	require.Equal(t, http.StatusNotFound, addItem(t, r, "ghost").Code)
}

func TestAddItemRejectsBadPayload(t *testing.T) {
	r := newCartRouter(t, 0)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader("{broken")))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"productId":"  "}`)))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAddItemAtCapacityReturnsConflict(t *testing.T) {
	r := newCartRouter(t, 1)

	require.Equal(t, http.StatusCreated, addItem(t, r, "p-milk").Code)
	rr := addItem(t, r, "p-bread")
	require.Equal(t, http.StatusConflict, rr.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "CART_FULL", body.Error.Code)
	// Localized message, default language.
	require.Equal(t, "Корзина заполнена!", body.Error.Message)
}

func TestRemoveItem(t *testing.T) {
	r := newCartRouter(t, 0)
	addItem(t, r, "p-milk")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/cart/items/p-milk", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/cart/items/p-milk", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestClearEndpoint(t *testing.T) {
	r := newCartRouter(t, 0)
	addItem(t, r, "p-milk")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/cart", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/cart", nil))
	var body struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, 0, body.Data.Count)
}
