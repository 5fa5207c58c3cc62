package server

import (
	"sync"
)

// subscriber receives frames fanned out to a channel. deliver reports false
// when the frame was dropped.
type subscriber interface {
	deliver(data []byte) bool
}

// pair identifies one channel inside one hub
type pair struct {
	hubID     string
	channelID string
}

// Hub tracks which session is subscribed to which hub:channel pair and fans
// published frames out to them.
type Hub struct {
	subs map[pair]map[subscriber]bool
	mu   sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[pair]map[subscriber]bool),
	}
}

// Subscribe adds sub to a hub:channel pair. Pairs are created on first use.
func (h *Hub) Subscribe(hubID, channelID string, sub subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := pair{hubID, channelID}
	if h.subs[key] == nil {
		h.subs[key] = make(map[subscriber]bool)
	}
	h.subs[key][sub] = true
}

// Drop removes sub from every pair it is subscribed to.
func (h *Hub) Drop(sub subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, subs := range h.subs {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.subs, key)
		}
	}
}

// Publish fans data out to every subscriber of a hub:channel pair and
// returns the number of accepted deliveries.
func (h *Hub) Publish(hubID, channelID string, data []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for sub := range h.subs[pair{hubID, channelID}] {
		if sub.deliver(data) {
			delivered++
		}
	}
	return delivered
}

// SubscriberCount returns the number of subscribers of a hub:channel pair.
func (h *Hub) SubscriberCount(hubID, channelID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[pair{hubID, channelID}])
}
