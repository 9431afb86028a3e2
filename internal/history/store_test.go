package history_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/fedya1922n/food-shop/internal/events"
	"github.com/fedya1922n/food-shop/internal/history"
)

func newHistoryStore(t *testing.T) (*history.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &history.Store{Client: client, Log: zerolog.Nop()}, mr
}

func record(total float64) history.Record {
	return history.Record{
		ID:         uuid.New(),
		Date:       time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
		Items:      []history.RecordItem{{ID: "p-milk", Name: "Молоко", Quantity: 1, Price: total}},
		TotalPrice: total,
		Currency:   "₽",
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	s, _ := newHistoryStore(t)
	ctx := context.Background()

	first := record(100)
	second := record(200)
	require.NoError(t, s.Append(ctx, first))
	require.NoError(t, s.Append(ctx, second))

	records := s.List(ctx)
	require.Len(t, records, 2)
	require.Equal(t, first.ID, records[0].ID)
	require.Equal(t, second.ID, records[1].ID)
	require.Equal(t, 200.0, records[1].TotalPrice)
}

func TestListEmptyWhenKeyMissing(t *testing.T) {
	s, _ := newHistoryStore(t)
	require.Empty(t, s.List(context.Background()))
}

func TestListRecoversFromMalformedPayload(t *testing.T) {
	s, mr := newHistoryStore(t)
	ctx := context.Background()

	mr.Set(history.DefaultKey, "{broken")
	require.Empty(t, s.List(ctx))

	// An append after corruption starts the array over rather than failing.
	rec := record(300)
	require.NoError(t, s.Append(ctx, rec))
	records := s.List(ctx)
	require.Len(t, records, 1)
	require.Equal(t, rec.ID, records[0].ID)
}

func TestListKeepsMalformedMemberAsZeroValue(t *testing.T) {
	s, mr := newHistoryStore(t)
	ctx := context.Background()

	mr.Set(history.DefaultKey, `[{"id":"zzz","totalPrice":"not-a-number"}, {"totalPrice": 50}]`)
	records := s.List(ctx)
	require.Len(t, records, 2)
	require.Equal(t, 50.0, records[1].TotalPrice)
}

func TestClearEmitsEvent(t *testing.T) {
	s, mr := newHistoryStore(t)
	ctx := context.Background()

	bus := &events.Bus{}
	var topics []string
	bus.Subscribe(events.NotifierFunc(func(_ context.Context, ev events.Event) error {
		topics = append(topics, ev.Topic)
		return nil
	}))
	s.Bus = bus

	require.NoError(t, s.Append(ctx, record(100)))
	require.NoError(t, s.Clear(ctx))
	require.Empty(t, s.List(ctx))
	require.Contains(t, topics, events.TopicHistoryCleared)

	raw, err := mr.Get(history.DefaultKey)
	require.NoError(t, err)
	require.JSONEq(t, "[]", raw)
}

func TestAppendOnUnconfiguredStoreErrors(t *testing.T) {
	var s *history.Store
	require.Error(t, s.Append(context.Background(), record(1)))
	require.Nil(t, s.List(context.Background()))
}
