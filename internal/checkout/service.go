package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fedya1922n/food-shop/internal/cart"
	"github.com/fedya1922n/food-shop/internal/events"
	"github.com/fedya1922n/food-shop/internal/history"
	"github.com/fedya1922n/food-shop/internal/i18n"
	"github.com/fedya1922n/food-shop/internal/pricing"
	"github.com/fedya1922n/food-shop/internal/sched"
)

// State names the checkout flow position.
type State string

const (
	// StateIdle means no payment form is open.
	StateIdle State = "idle"
	// StatePaymentOpen means the payment form is being filled in.
	StatePaymentOpen State = "payment_open"
	// StateCompleted means the last submission was accepted.
	StateCompleted State = "completed"
)

// ErrCartEmpty is returned when the flow cannot proceed on an empty cart.
var ErrCartEmpty = errors.New("cart is empty")

// ErrNotOpen is returned when Submit is called outside the payment form.
var ErrNotOpen = errors.New("payment form is not open")

// Service drives the checkout state machine:
// Idle -> PaymentFormOpen -> {Idle (rejected), Completed}. The form
// auto-reverts to Idle whenever the cart empties through any other action.
type Service struct {
	Cart    *cart.Store
	History *history.Store
	Bundle  *i18n.Bundle
	Bus     *events.Bus
	Clock   sched.Clock
	Log     zerolog.Logger

	mu    sync.Mutex
	state State
}

// Result is the outcome of a Submit call. FieldErrors is non-empty when the
// submission was rejected; Record is set when it was accepted.
type Result struct {
	FieldErrors []FieldError
	Record      history.Record
	State       State
}

// State returns the current flow state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == "" {
		return StateIdle
	}
	return s.state
}

// Open transitions Idle/Completed to PaymentFormOpen. It fails on an empty
// cart.
func (s *Service) Open() error {
	if s.Cart == nil || s.Cart.Len() == 0 {
		return ErrCartEmpty
	}
	s.mu.Lock()
	s.state = StatePaymentOpen
	s.mu.Unlock()
	return nil
}

// Cancel closes the payment form without side effects.
func (s *Service) Cancel() {
	s.mu.Lock()
	if s.state == StatePaymentOpen {
		s.state = StateIdle
	}
	s.mu.Unlock()
}

// AutoRevertNotifier returns an event notifier that reverts an open payment
// form to Idle when the cart empties. Completed submissions are unaffected.
func (s *Service) AutoRevertNotifier() events.Notifier {
	return events.NotifierFunc(func(_ context.Context, ev events.Event) error {
		if ev.Topic != events.TopicCartEmptied {
			return nil
		}
		s.mu.Lock()
		if s.state == StatePaymentOpen {
			s.state = StateIdle
		}
		s.mu.Unlock()
		return nil
	})
}

// Submit validates the payment form and, when every field passes, snapshots
// the grouped cart through the pricing engine into a purchase record,
// appends it to history, and clears the cart. A rejected submission leaves
// cart and state untouched apart from the returned field errors.
func (s *Service) Submit(ctx context.Context, form PaymentForm, lang string) (Result, error) {
	if s == nil || s.Cart == nil || s.History == nil {
		return Result{}, errors.New("checkout service not configured")
	}
	if s.State() != StatePaymentOpen {
		return Result{}, ErrNotOpen
	}
	clock := s.Clock
	if clock == nil {
		clock = sched.Real()
	}
	now := clock.Now()

	if errs := Validate(form, now); len(errs) > 0 {
		return Result{FieldErrors: errs, State: StatePaymentOpen}, nil
	}

	grouped := s.Cart.Grouped()
	if len(grouped) == 0 {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
		return Result{}, ErrCartEmpty
	}

	lang = i18n.Normalize(lang)
	items := make([]history.RecordItem, 0, len(grouped))
	pricingItems := make([]pricing.Item, 0, len(grouped))
	for _, g := range grouped {
		items = append(items, history.RecordItem{
			ID:       g.ID,
			Name:     s.localizedName(g.Name, lang),
			Quantity: g.Quantity,
			Price:    g.Price,
			Discount: g.Discount,
		})
		pricingItems = append(pricingItems, pricing.Item{Price: g.Price, Discount: g.Discount, Quantity: g.Quantity})
	}

	rec := history.Record{
		ID:         uuid.New(),
		Date:       now,
		Items:      items,
		TotalPrice: pricing.Subtotal(pricingItems),
		Currency:   s.currencyLabel(lang),
	}
	if err := s.History.Append(ctx, rec); err != nil {
		return Result{State: StatePaymentOpen}, err
	}

	// The order is durably placed from here on; nothing below rolls back.
	s.Cart.Clear(ctx)
	s.mu.Lock()
	s.state = StateCompleted
	s.mu.Unlock()

	if s.Bus != nil {
		payload := map[string]any{
			"recordId":   rec.ID.String(),
			"totalPrice": rec.TotalPrice,
			"items":      len(rec.Items),
		}
		if _, err := s.Bus.Emit(ctx, events.TopicCheckoutCompleted, payload); err != nil {
			s.Log.Warn().Err(err).Msg("emit checkout completed")
		}
	}
	return Result{Record: rec, State: StateCompleted}, nil
}

func (s *Service) localizedName(name, lang string) string {
	if s.Bundle == nil {
		return name
	}
	key := "products." + name
	if s.Bundle.Has(lang, key) || s.Bundle.Has(i18n.DefaultLanguage, key) {
		return s.Bundle.T(lang, key)
	}
	return name
}

func (s *Service) currencyLabel(lang string) string {
	if s.Bundle == nil {
		return ""
	}
	return s.Bundle.T(lang, "money.currency")
}
