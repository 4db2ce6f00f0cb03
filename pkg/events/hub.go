// Package events fans daemon-side notifications out to SSE subscribers.
package events

import (
	"encoding/json"
	"sync"
)

// subscriberBuffer bounds how far a subscriber may lag before it starts
// losing events.
const subscriberBuffer = 16

// Subscription is one listener's view of the hub. Close it to stop
// receiving; C is closed afterwards.
type Subscription struct {
	C <-chan Event

	hub *Hub
	ch  chan Event
}

func (s *Subscription) Close() {
	s.hub.drop(s.ch)
}

// Hub broadcasts tuner events to any number of subscribers. Publishing never
// blocks: the dispatcher's run loop must not stall on a slow SSE client, so
// laggards lose events instead.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return &Subscription{C: ch, hub: h, ch: ch}
}

func (h *Hub) drop(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Publish marshals payload and hands the event to every live subscriber. A
// nil hub is a no-op so callers need not guard the wiring.
func (h *Hub) Publish(name string, payload any) {
	if h == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	ev := Event{Name: name, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default: // subscriber too far behind
		}
	}
}
