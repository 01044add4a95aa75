package sse

import (
	"sync"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	CompanyID string
	Event     string
	Data      interface{}
}

// Hub manages SSE subscribers and event broadcasting. Subscriptions are keyed
// by company so every dashboard session for a company sees the same alert
// stream.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber for a company and returns the event channel and cleanup function
func (h *Hub) Subscribe(companyID string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	if h.subscribers[companyID] == nil {
		h.subscribers[companyID] = make(map[chan Event]struct{})
	}
	h.subscribers[companyID][ch] = struct{}{}

	// Return channel and cleanup function
	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[companyID], ch)
		close(ch)
		if len(h.subscribers[companyID]) == 0 {
			delete(h.subscribers, companyID)
		}
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of a specific company
func (h *Hub) Publish(companyID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[companyID]; ok {
		for ch := range subs {
			select {
			case ch <- event:
			default:
				// Skip if channel is full (non-blocking to prevent deadlock)
			}
		}
	}
}
