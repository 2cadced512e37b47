package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_PublishReachesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []EventType
	d.Subscribe(EventLoginSucceeded, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})

	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventLoginSucceeded}))
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventLoginFailed}))
	assert.Equal(t, []EventType{EventLoginSucceeded}, got)
}

func TestDispatcher_HandlerErrorsDoNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	called := 0
	d.Subscribe(EventLoginFailed, func(context.Context, Event) error { called++; return boom })
	d.Subscribe(EventLoginFailed, func(context.Context, Event) error { called++; return nil })

	err := d.Publish(context.Background(), Event{Type: EventLoginFailed})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, called)
}

func TestDispatcher_PanickingHandlerIsReported(t *testing.T) {
	d := NewInMemoryDispatcher()

	reached := false
	d.Subscribe(EventLoginSucceeded, func(context.Context, Event) error { panic("audit sink down") })
	d.Subscribe(EventLoginSucceeded, func(context.Context, Event) error { reached = true; return nil })

	err := d.Publish(context.Background(), Event{Type: EventLoginSucceeded})
	assert.ErrorIs(t, err, ErrHandlerPanic)
	assert.Contains(t, err.Error(), "audit sink down")
	assert.True(t, reached)
}

func TestSubscribeAll_DefaultsToAuthEvents(t *testing.T) {
	d := NewInMemoryDispatcher()

	seen := map[EventType]int{}
	SubscribeAll(d, func(_ context.Context, e Event) error {
		seen[e.Type]++
		return nil
	})

	for _, et := range AuthEventTypes() {
		assert.NoError(t, d.Publish(context.Background(), Event{Type: et}))
	}
	assert.NoError(t, d.Publish(context.Background(), Event{Type: "unrelated"}))

	assert.Len(t, seen, len(AuthEventTypes()))
	for _, et := range AuthEventTypes() {
		assert.Equal(t, 1, seen[et], et)
	}
}
