// Package cart holds the persistent shopping cart: a capped list of product
// snapshots with debounced key-value persistence.
package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fedya1922n/food-shop/internal/catalog"
	"github.com/fedya1922n/food-shop/internal/common"
	"github.com/fedya1922n/food-shop/internal/events"
	"github.com/fedya1922n/food-shop/internal/sched"
)

// Line is one add-to-cart action: a snapshot of the product at the moment it
// was added, so later catalog edits do not retroactively change cart pricing.
type Line struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Discount *int    `json:"discount,omitempty"`
}

// Grouped aggregates lines sharing an id into one quantity-bearing record.
// It is derived on every read and never persisted.
type Grouped struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Discount *int    `json:"discount,omitempty"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

// AddResult reports the outcome of an Add call.
type AddResult int

const (
	// Added means the snapshot was appended.
	Added AddResult = iota
	// RejectedInvalid means the product failed the validity predicate.
	RejectedInvalid
	// RejectedFull means the cart was at capacity; a transient full notice
	// was raised.
	RejectedFull
)

const (
	// DefaultKey is the KV key holding the serialized cart.
	DefaultKey = "cart"

	defaultCapacity  = 100
	defaultDebounce  = 500 * time.Millisecond
	defaultNoticeTTL = 3 * time.Second
	flushTimeout     = 2 * time.Second
)

// Config wires a Store.
type Config struct {
	Client    *redis.Client
	Key       string
	Capacity  int
	Debounce  time.Duration
	NoticeTTL time.Duration
	Clock     sched.Clock
	Log       zerolog.Logger
	Bus       *events.Bus
}

// Store owns the cart lines. All mutation goes through its methods; callers
// receive copies, never internal slices.
type Store struct {
	client    *redis.Client
	key       string
	capacity  int
	debounce  time.Duration
	noticeTTL time.Duration
	clock     sched.Clock
	log       zerolog.Logger
	bus       *events.Bus

	mu           sync.Mutex
	lines        []Line
	persistTimer sched.Timer
	pending      []Line
	noticeTimer  sched.Timer
	fullNotice   bool
	closed       bool
}

// NewStore constructs a Store with defaults applied.
func NewStore(cfg Config) *Store {
	s := &Store{
		client:    cfg.Client,
		key:       cfg.Key,
		capacity:  cfg.Capacity,
		debounce:  cfg.Debounce,
		noticeTTL: cfg.NoticeTTL,
		clock:     cfg.Clock,
		log:       cfg.Log,
		bus:       cfg.Bus,
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.capacity <= 0 {
		s.capacity = defaultCapacity
	}
	if s.debounce <= 0 {
		s.debounce = defaultDebounce
	}
	if s.noticeTTL <= 0 {
		s.noticeTTL = defaultNoticeTTL
	}
	if s.clock == nil {
		s.clock = sched.Real()
	}
	return s
}

// Capacity returns the configured line cap.
func (s *Store) Capacity() int { return s.capacity }

// Load reads the persisted cart. It fails open: a missing key, a parse
// error, or a non-array payload all yield an empty cart, and entries failing
// the product validity predicate are dropped.
func (s *Store) Load(ctx context.Context) {
	if s == nil || s.client == nil {
		return
	}
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn().Err(err).Str("key", s.key).Msg("cart load failed, starting empty")
		}
		return
	}
	loaded, clean := common.DecodeArrayOrEmpty[Line](raw)
	if !clean {
		s.log.Warn().Str("key", s.key).Msg("cart payload malformed, starting empty")
	}
	valid := make([]Line, 0, len(loaded))
	for _, line := range loaded {
		if !line.valid() {
			s.log.Warn().Str("product_id", line.ID).Msg("dropping invalid persisted cart line")
			continue
		}
		valid = append(valid, line)
	}
	s.mu.Lock()
	s.lines = valid
	s.mu.Unlock()
}

// Add appends a snapshot of the product. Invalid products and adds beyond
// capacity are deliberate no-ops; the latter raises a transient full notice
// that clears after the configured TTL.
func (s *Store) Add(ctx context.Context, p catalog.Product) AddResult {
	if !catalog.Valid(p) {
		s.log.Debug().Str("product_id", p.ID).Msg("rejected invalid product")
		return RejectedInvalid
	}
	s.mu.Lock()
	if len(s.lines) >= s.capacity {
		s.raiseFullNoticeLocked()
		s.mu.Unlock()
		return RejectedFull
	}
	s.lines = append(s.lines, Line{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Discount: p.Discount,
	})
	size := len(s.lines)
	s.schedulePersistLocked()
	s.mu.Unlock()

	s.emit(ctx, events.TopicCartChanged, map[string]any{"size": size, "productId": p.ID})
	return Added
}

// RemoveOne removes exactly one occurrence of the given id (first match),
// decrementing the grouped quantity by one. It reports whether a line was
// removed.
func (s *Store) RemoveOne(ctx context.Context, id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	idx := -1
	for i, line := range s.lines {
		if line.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	size := len(s.lines)
	s.schedulePersistLocked()
	s.mu.Unlock()

	s.emit(ctx, events.TopicCartChanged, map[string]any{"size": size, "productId": id})
	if size == 0 {
		s.emit(ctx, events.TopicCartEmptied, nil)
	}
	return true
}

// Clear empties the cart and cancels any pending full notice.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.lines = nil
	if s.noticeTimer != nil {
		s.noticeTimer.Stop()
		s.noticeTimer = nil
	}
	s.fullNotice = false
	s.schedulePersistLocked()
	s.mu.Unlock()

	s.emit(ctx, events.TopicCartChanged, map[string]any{"size": 0})
	s.emit(ctx, events.TopicCartEmptied, nil)
}

// Lines returns a copy of the raw line list in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the number of raw lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Grouped recomputes quantity-grouped items from the raw lines, preserving
// first-seen order.
func (s *Store) Grouped() []Grouped {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := make(map[string]int, len(s.lines))
	out := make([]Grouped, 0, len(s.lines))
	for _, line := range s.lines {
		if i, ok := index[line.ID]; ok {
			out[i].Quantity++
			continue
		}
		index[line.ID] = len(out)
		out = append(out, Grouped{
			ID:       line.ID,
			Name:     line.Name,
			Price:    line.Price,
			Discount: line.Discount,
			Image:    line.Image,
			Quantity: 1,
		})
	}
	return out
}

// FullNotice reports whether the transient cart-full notice is active.
func (s *Store) FullNotice() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fullNotice
}

// Close cancels timers and synchronously flushes any pending write so a
// teardown inside the debounce window cannot drop the final state.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	if s.persistTimer != nil {
		s.persistTimer.Stop()
		s.persistTimer = nil
	}
	if s.noticeTimer != nil {
		s.noticeTimer.Stop()
		s.noticeTimer = nil
	}
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if pending == nil {
		return nil
	}
	return s.write(ctx, pending)
}

// raiseFullNoticeLocked arms the single notice timer, resetting it when a
// new trigger arrives before the previous one fires.
func (s *Store) raiseFullNoticeLocked() {
	s.fullNotice = true
	if s.noticeTimer != nil {
		s.noticeTimer.Reset(s.noticeTTL)
		return
	}
	s.noticeTimer = s.clock.AfterFunc(s.noticeTTL, func() {
		s.mu.Lock()
		s.fullNotice = false
		s.noticeTimer = nil
		s.mu.Unlock()
	})
}

// schedulePersistLocked snapshots the current lines and (re)arms the
// debounce timer; only the last snapshot within the window is written.
func (s *Store) schedulePersistLocked() {
	if s.client == nil || s.closed {
		return
	}
	snapshot := make([]Line, len(s.lines))
	copy(snapshot, s.lines)
	s.pending = snapshot
	if s.persistTimer != nil {
		if s.persistTimer.Reset(s.debounce) {
			return
		}
	}
	s.persistTimer = s.clock.AfterFunc(s.debounce, s.flush)
}

func (s *Store) flush() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.persistTimer = nil
	s.mu.Unlock()
	if pending == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	_ = s.write(ctx, pending)
}

func (s *Store) write(ctx context.Context, lines []Line) error {
	data, err := json.Marshal(lines)
	if err != nil {
		s.log.Error().Err(err).Msg("encode cart")
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		s.log.Error().Err(err).Str("key", s.key).Msg("persist cart")
		return err
	}
	return nil
}

func (s *Store) emit(ctx context.Context, topic string, payload any) {
	if s.bus == nil {
		return
	}
	if _, err := s.bus.Emit(ctx, topic, payload); err != nil {
		s.log.Warn().Err(err).Str("topic", topic).Msg("emit cart event")
	}
}

func (l Line) valid() bool {
	return catalog.Valid(catalog.Product{
		ID:       l.ID,
		Name:     l.Name,
		Price:    l.Price,
		Image:    l.Image,
		Discount: l.Discount,
	})
}
