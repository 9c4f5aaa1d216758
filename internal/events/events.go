// Package events delivers change notifications from the store to its
// observers. A subscriber names the Dispatcher its callbacks must run on;
// Publish never runs a callback inline.
package events

import (
	"sync"
	"time"
)

type Topic string

const (
	TrackersChanged   Topic = "trackers_changed"
	CategoriesChanged Topic = "categories_changed"
	RecordsChanged    Topic = "records_changed"
)

// Event is passed to subscriber callbacks.
type Event struct {
	Topic Topic
	// Version is the store data version that produced the event.
	Version uint64
	At      time.Time
}

// Dispatcher runs callbacks on the execution context that owns a subscription.
type Dispatcher interface {
	Dispatch(fn func())
}

// Bus fans published events out to subscribers.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*Subscription
}

func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]*Subscription)}
}

// Subscription is the handle returned by Subscribe. Call Unsubscribe on teardown.
type Subscription struct {
	bus        *Bus
	id         uint64
	topics     map[Topic]bool
	dispatcher Dispatcher
	fn         func(Event)

	mu     sync.Mutex
	active bool
}

// Subscribe registers fn for the given topics; with no topics it receives all.
func (b *Bus) Subscribe(d Dispatcher, fn func(Event), topics ...Topic) *Subscription {
	sub := &Subscription{
		bus:        b,
		topics:     make(map[Topic]bool, len(topics)),
		dispatcher: d,
		fn:         fn,
		active:     true,
	}
	for _, t := range topics {
		sub.topics[t] = true
	}

	b.mu.Lock()
	b.nextID++
	sub.id = b.nextID
	b.subs[sub.id] = sub
	b.mu.Unlock()

	return sub
}

// Publish hands the event to each matching subscriber's dispatcher.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.Lock()
	targets := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if len(sub.topics) == 0 || sub.topics[e.Topic] {
			targets = append(targets, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range targets {
		sub.dispatcher.Dispatch(func() { sub.deliver(e) })
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (s *Subscription) deliver(e Event) {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	// a callback queued before Unsubscribe is dropped
	if active {
		s.fn(e)
	}
}

// Unsubscribe stops delivery. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()

	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
}
