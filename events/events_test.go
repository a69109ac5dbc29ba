package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_TypedSubscriber(t *testing.T) {
	a := NewAggregator(nil)
	var got []ApplicationStarting
	SubscribeTo(a, func(_ context.Context, e ApplicationStarting) {
		got = append(got, e)
	})

	e := NewApplicationStarting()
	a.Publish(context.Background(), e)

	require.Len(t, got, 1)
	assert.Equal(t, e.InstanceID, got[0].InstanceID)
	assert.NotEqual(t, uuid.Nil, got[0].InstanceID)
	assert.Equal(t, []string{NameApplicationStarting}, a.Published())
}

func TestPublish_OrderAndPanicIsolation(t *testing.T) {
	a := NewAggregator(nil)
	var order []int
	a.Subscribe(NameApplicationStarting, func(context.Context, Event) { order = append(order, 1) })
	a.Subscribe(NameApplicationStarting, func(context.Context, Event) { panic("subscriber bug") })
	a.Subscribe(NameApplicationStarting, func(context.Context, Event) { order = append(order, 3) })

	assert.NotPanics(t, func() { a.Publish(context.Background(), NewApplicationStarting()) })
	assert.Equal(t, []int{1, 3}, order)
}

func TestUnsubscribe(t *testing.T) {
	a := NewAggregator(nil)
	calls := 0
	unsubscribe := a.Subscribe(NameApplicationStarting, func(context.Context, Event) { calls++ })

	a.Publish(context.Background(), NewApplicationStarting())
	unsubscribe()
	unsubscribe()
	a.Publish(context.Background(), NewApplicationStarting())

	assert.Equal(t, 1, calls)
	assert.Len(t, a.Published(), 2)
}

func TestInstanceIDsAreUnique(t *testing.T) {
	assert.NotEqual(t, NewApplicationStarting().InstanceID, NewApplicationStarting().InstanceID)
}

type otherEvent struct{}

func (otherEvent) EventName() string { return "other" }

func TestAttach_DeclaredSubscriptions(t *testing.T) {
	a := NewAggregator(nil)
	var seen []string
	var starting int
	a.Attach(
		Subscription{Event: All, Handler: func(_ context.Context, e Event) { seen = append(seen, e.EventName()) }},
		On(func(context.Context, ApplicationStarting) { starting++ }),
		Subscription{Event: "ignored"},
	)

	a.Publish(context.Background(), NewApplicationStarting())
	a.Publish(context.Background(), otherEvent{})

	assert.Equal(t, []string{NameApplicationStarting, "other"}, seen)
	assert.Equal(t, 1, starting)
}
