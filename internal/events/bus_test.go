package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case evt, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe(4)
	b := bus.Subscribe(4)

	bus.Publish(Event{Type: "ping_result", Payload: 42})

	assert.Equal(t, "ping_result", receive(t, a).Type)
	assert.Equal(t, "ping_result", receive(t, b).Type)
}

func TestUnsubscribeClosesChannelAndStopsDelivery(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(4)
	sub.Unsubscribe()

	_, ok := <-sub.Events()
	assert.False(t, ok, "channel must be closed after Unsubscribe")

	// Publishing after unsubscribe must not panic or block.
	bus.Publish(Event{Type: "ping_result"})
}

func TestUnsubscribeTwiceIsSafe(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(4)
	sub.Unsubscribe()
	sub.Unsubscribe()
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(1)
	defer sub.Unsubscribe()

	bus.Publish(Event{Type: "a"})
	bus.Publish(Event{Type: "b"})
	bus.Publish(Event{Type: "c"})

	assert.Equal(t, int64(2), bus.Dropped())
	assert.Equal(t, "a", receive(t, sub).Type, "oldest buffered event survives")
}

func TestDefaultBufferApplied(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(0)
	defer sub.Unsubscribe()

	for i := 0; i < defaultBuffer; i++ {
		bus.Publish(Event{Type: "tick"})
	}
	assert.Equal(t, int64(0), bus.Dropped())
}

func TestCloseDetachesSubscribers(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(4)
	bus.Close()

	_, ok := <-sub.Events()
	assert.False(t, ok)

	// All of these must be no-ops after Close.
	bus.Publish(Event{Type: "ping_result"})
	bus.Close()
	late := bus.Subscribe(4)
	_, ok = <-late.Events()
	assert.False(t, ok, "subscribing to a closed bus yields a closed subscription")
}
