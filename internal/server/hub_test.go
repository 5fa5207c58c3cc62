package server

import (
	"sync"
	"testing"
)

// fakeSubscriber records delivered frames; reject makes it refuse them.
type fakeSubscriber struct {
	mu     sync.Mutex
	frames [][]byte
	reject bool
}

func (f *fakeSubscriber) deliver(data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject {
		return false
	}
	f.frames = append(f.frames, data)
	return true
}

func (f *fakeSubscriber) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func TestHub_SubscribeAndPublish(t *testing.T) {
	hub := NewHub()
	first := &fakeSubscriber{}
	second := &fakeSubscriber{}
	elsewhere := &fakeSubscriber{}

	hub.Subscribe("room7", "general", first)
	hub.Subscribe("room7", "general", second)
	hub.Subscribe("room7", "random", elsewhere)

	if got := hub.Publish("room7", "general", []byte("payload")); got != 2 {
		t.Errorf("Publish() = %d, want 2", got)
	}
	if got := first.frameCount(); got != 1 {
		t.Errorf("first subscriber frames = %d, want 1", got)
	}
	if got := second.frameCount(); got != 1 {
		t.Errorf("second subscriber frames = %d, want 1", got)
	}
	if got := elsewhere.frameCount(); got != 0 {
		t.Errorf("other channel frames = %d, want 0", got)
	}
}

func TestHub_Publish_NoSubscribers(t *testing.T) {
	hub := NewHub()

	if got := hub.Publish("room7", "general", []byte("payload")); got != 0 {
		t.Errorf("Publish() = %d, want 0", got)
	}
}

func TestHub_Publish_CountsOnlyAcceptedDeliveries(t *testing.T) {
	hub := NewHub()
	accepting := &fakeSubscriber{}
	full := &fakeSubscriber{reject: true}

	hub.Subscribe("room7", "general", accepting)
	hub.Subscribe("room7", "general", full)

	if got := hub.Publish("room7", "general", []byte("payload")); got != 1 {
		t.Errorf("Publish() = %d, want 1", got)
	}
}

func TestHub_Subscribe_Idempotent(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{}

	hub.Subscribe("room7", "general", sub)
	hub.Subscribe("room7", "general", sub)

	if got := hub.SubscriberCount("room7", "general"); got != 1 {
		t.Errorf("SubscriberCount() = %d, want 1", got)
	}
	if got := hub.Publish("room7", "general", []byte("payload")); got != 1 {
		t.Errorf("Publish() = %d, want 1", got)
	}
}

func TestHub_Drop(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{}
	other := &fakeSubscriber{}

	hub.Subscribe("room7", "general", sub)
	hub.Subscribe("room7", "random", sub)
	hub.Subscribe("room7", "general", other)

	hub.Drop(sub)

	if got := hub.SubscriberCount("room7", "general"); got != 1 {
		t.Errorf("SubscriberCount(room7:general) = %d, want 1", got)
	}
	if got := hub.SubscriberCount("room7", "random"); got != 0 {
		t.Errorf("SubscriberCount(room7:random) = %d, want 0", got)
	}

	hub.Publish("room7", "general", []byte("payload"))
	hub.Publish("room7", "random", []byte("payload"))
	if got := sub.frameCount(); got != 0 {
		t.Errorf("dropped subscriber frames = %d, want 0", got)
	}
	if got := other.frameCount(); got != 1 {
		t.Errorf("remaining subscriber frames = %d, want 1", got)
	}
}
