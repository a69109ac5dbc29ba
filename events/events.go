package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/apphost/logger"
)

// Event is anything published through the aggregator.
type Event interface {
	EventName() string
}

// Handler receives published events.
type Handler func(ctx context.Context, e Event)

// NameApplicationStarting is the name of ApplicationStarting.
const NameApplicationStarting = "application-starting"

// All subscribes to every event.
const All = "*"

// Subscription is a handler declared before the aggregator exists, so it
// is attached ahead of the first Publish.
type Subscription struct {
	Event   string
	Handler Handler
}

// On declares a typed subscription to events of type T.
func On[T Event](h func(ctx context.Context, e T)) Subscription {
	var zero T
	return Subscription{Event: zero.EventName(), Handler: typed(h)}
}

func typed[T Event](h func(ctx context.Context, e T)) Handler {
	return func(ctx context.Context, e Event) {
		if v, ok := e.(T); ok {
			h(ctx, v)
		}
	}
}

// ApplicationStarting is the first lifecycle event of a hosted run.
type ApplicationStarting struct {
	InstanceID uuid.UUID
	At         time.Time
}

func (ApplicationStarting) EventName() string { return NameApplicationStarting }

// NewApplicationStarting stamps a fresh instance identity.
func NewApplicationStarting() ApplicationStarting {
	return ApplicationStarting{InstanceID: uuid.New(), At: time.Now()}
}

type subscription struct {
	id      uint64
	handler Handler
}

// Aggregator fans events out to subscribers by name.
type Aggregator struct {
	mu        sync.RWMutex
	subs      map[string][]subscription
	nextID    uint64
	published []string
	log       *logger.Logger
}

// NewAggregator creates an aggregator. A nil logger discards.
func NewAggregator(log *logger.Logger) *Aggregator {
	if log == nil {
		log = logger.Nop()
	}
	return &Aggregator{
		subs: make(map[string][]subscription),
		log:  log.WithComponent("events"),
	}
}

// Subscribe registers h for events named name. The returned func removes it.
func (a *Aggregator) Subscribe(name string, h Handler) (unsubscribe func()) {
	a.mu.Lock()
	a.nextID++
	id := a.nextID
	a.subs[name] = append(a.subs[name], subscription{id: id, handler: h})
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		list := a.subs[name]
		for i, s := range list {
			if s.id == id {
				a.subs[name] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// SubscribeTo registers a typed handler for events of type T.
func SubscribeTo[T Event](a *Aggregator, h func(ctx context.Context, e T)) (unsubscribe func()) {
	sub := On(h)
	return a.Subscribe(sub.Event, sub.Handler)
}

// Attach subscribes every declared subscription for the aggregator's
// lifetime.
func (a *Aggregator) Attach(subs ...Subscription) {
	for _, s := range subs {
		if s.Handler != nil {
			a.Subscribe(s.Event, s.Handler)
		}
	}
}

// Publish delivers e to the subscribers of its name, then to those of All.
func (a *Aggregator) Publish(ctx context.Context, e Event) {
	name := e.EventName()

	a.mu.Lock()
	a.published = append(a.published, name)
	subs := append(append([]subscription(nil), a.subs[name]...), a.subs[All]...)
	a.mu.Unlock()

	a.log.Debug("Publishing event", logger.Fields("event", name, "subscribers", len(subs)))
	for _, s := range subs {
		a.deliver(ctx, name, s.handler, e)
	}
}

func (a *Aggregator) deliver(ctx context.Context, name string, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("Event handler panicked", logger.Fields("event", name, logger.FieldError, fmt.Sprint(r)))
		}
	}()
	h(ctx, e)
}

// Published returns the names of published events, oldest first.
func (a *Aggregator) Published() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.published...)
}
