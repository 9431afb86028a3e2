package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fedya1922n/food-shop/internal/events"
)

type captureNotifier struct {
	events []events.Event
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, ev events.Event) error {
	c.events = append(c.events, ev)
	return c.err
}

func TestEmitDispatchesToAllNotifiers(t *testing.T) {
	first := &captureNotifier{}
	second := &captureNotifier{}
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	bus := &events.Bus{Now: func() time.Time { return now }}
	bus.Subscribe(first)
	bus.Subscribe(second)

	ev, err := bus.Emit(context.Background(), events.TopicCartChanged, map[string]any{"size": 3})
	require.NoError(t, err)
	require.Equal(t, events.TopicCartChanged, ev.Topic)
	require.Equal(t, now, ev.OccurredAt)
	require.JSONEq(t, `{"size":3}`, string(ev.Payload))
	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	require.Equal(t, ev.ID, first.events[0].ID)
}

func TestEmitJoinsNotifierErrorsWithoutBlocking(t *testing.T) {
	failing := &captureNotifier{err: errors.New("boom")}
	after := &captureNotifier{}
	bus := &events.Bus{}
	bus.Subscribe(failing)
	bus.Subscribe(after)

	_, err := bus.Emit(context.Background(), events.TopicCartEmptied, nil)
	require.Error(t, err)
	// The failing notifier does not stop later ones.
	require.Len(t, after.events, 1)
}

func TestEmitRejectsEmptyTopic(t *testing.T) {
	bus := &events.Bus{}
	_, err := bus.Emit(context.Background(), "  ", nil)
	require.Error(t, err)
}

func TestEmitNilPayloadEncodesEmptyObject(t *testing.T) {
	bus := &events.Bus{}
	ev, err := bus.Emit(context.Background(), events.TopicHistoryCleared, nil)
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(ev.Payload))
}

func TestEmitRawPayloadVariants(t *testing.T) {
	bus := &events.Bus{}

	ev, err := bus.Emit(context.Background(), "t", json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(ev.Payload))

	ev, err = bus.Emit(context.Background(), "t", `{"b":2}`)
	require.NoError(t, err)
	require.JSONEq(t, `{"b":2}`, string(ev.Payload))

	_, err = bus.Emit(context.Background(), "t", []byte("{oops"))
	require.Error(t, err)
}

func TestNilBusIsSafe(t *testing.T) {
	var bus *events.Bus
	bus.Subscribe(&captureNotifier{})
	_, err := bus.Emit(context.Background(), "t", nil)
	require.Error(t, err)
}
