package events

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Event is a single named payload published by the engine.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

const defaultBuffer = 16

// Subscription receives events published after it was created.
type Subscription struct {
	id  uuid.UUID
	ch  chan Event
	bus *Bus
}

// Events returns the delivery channel. It is closed by Unsubscribe and
// by Bus.Close.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Unsubscribe detaches the subscription and closes its channel.
func (s *Subscription) Unsubscribe() { s.bus.unsubscribe(s.id) }

// Bus fans events out to subscribers without ever blocking the
// publisher. A subscriber that cannot keep up loses events; drops are
// counted instead of logged per event.
type Bus struct {
	mu      sync.RWMutex
	subs    map[uuid.UUID]*Subscription
	closed  bool
	dropped atomic.Int64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uuid.UUID]*Subscription)}
}

// Subscribe registers a subscriber with the given channel buffer. A
// non-positive buffer uses the default. Subscribing to a closed bus
// yields an already-closed subscription.
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	sub := &Subscription{id: uuid.New(), ch: make(chan Event, buffer), bus: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.ch)
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

// Publish delivers the event to every subscriber with buffer room.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		select {
		case sub.ch <- evt:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped reports how many events were discarded for slow subscribers.
func (b *Bus) Dropped() int64 { return b.dropped.Load() }

// Close detaches all subscribers and makes further publishes no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}

func (b *Bus) unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(sub.ch)
}
