// Package history keeps the append-only log of completed purchases.
package history

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fedya1922n/food-shop/internal/common"
	"github.com/fedya1922n/food-shop/internal/events"
)

// DefaultKey is the KV key holding the serialized purchase history.
const DefaultKey = "purchases"

// RecordItem is one grouped line captured at purchase time. Price and
// discount are the base-currency values that were in the cart snapshot.
type RecordItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Discount *int    `json:"discount,omitempty"`
}

// Record is a completed purchase. TotalPrice is in base currency; display
// conversion happens at render time using the then-current language.
type Record struct {
	ID         uuid.UUID    `json:"id"`
	Date       time.Time    `json:"date"`
	Items      []RecordItem `json:"items"`
	TotalPrice float64      `json:"totalPrice"`
	Currency   string       `json:"currency"`
}

// Store persists purchase records as a JSON array under a single KV key.
// Records are never mutated after creation, only appended or wholly cleared.
type Store struct {
	Client *redis.Client
	Key    string
	Log    zerolog.Logger
	Bus    *events.Bus
}

func (s *Store) key() string {
	if s.Key == "" {
		return DefaultKey
	}
	return s.Key
}

// ErrNotConfigured is rendered as a 503 when the backing store is absent.
var ErrNotConfigured = common.NewAppError("STORE_UNAVAILABLE", "purchase history unavailable", http.StatusServiceUnavailable, nil)

// Append reads the latest persisted array and writes it back with the new
// record at the end, so appends within a session are never lost.
func (s *Store) Append(ctx context.Context, rec Record) error {
	if s == nil || s.Client == nil {
		return ErrNotConfigured
	}
	existing := s.rawEntries(ctx)
	encoded, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	existing = append(existing, encoded)
	data, err := json.Marshal(existing)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, s.key(), data, 0).Err()
}

// List returns records in insertion order. Malformed members decode to zero
// values with a warning instead of aborting the listing.
func (s *Store) List(ctx context.Context) []Record {
	if s == nil || s.Client == nil {
		return nil
	}
	entries := s.rawEntries(ctx)
	out := make([]Record, 0, len(entries))
	for i, raw := range entries {
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			s.Log.Warn().Err(err).Int("index", i).Msg("malformed purchase record")
		}
		out = append(out, rec)
	}
	return out
}

// Clear replaces the persisted sequence with an empty one.
func (s *Store) Clear(ctx context.Context) error {
	if s == nil || s.Client == nil {
		return ErrNotConfigured
	}
	if err := s.Client.Set(ctx, s.key(), []byte("[]"), 0).Err(); err != nil {
		return err
	}
	if s.Bus != nil {
		if _, err := s.Bus.Emit(ctx, events.TopicHistoryCleared, nil); err != nil {
			s.Log.Warn().Err(err).Msg("emit history cleared")
		}
	}
	return nil
}

// rawEntries loads the persisted array, recovering to empty on a missing
// key, a parse error, or a non-array payload.
func (s *Store) rawEntries(ctx context.Context) []json.RawMessage {
	raw, err := s.Client.Get(ctx, s.key()).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.Log.Warn().Err(err).Str("key", s.key()).Msg("history load failed, treating as empty")
		}
		return []json.RawMessage{}
	}
	entries, clean := common.DecodeArrayOrEmpty[json.RawMessage](raw)
	if !clean {
		s.Log.Warn().Str("key", s.key()).Msg("history payload malformed, treating as empty")
	}
	return entries
}
