package service

import (
	"sync"

	"dopamine-deck/internal/core/domain/entities"
)

const subscriberBuffer = 32

// hub fans a session's notifications out to its watchers. Slow watchers
// lose notifications instead of blocking the deck.
type hub struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan entities.Notification
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[int]chan entities.Notification)}
}

func (h *hub) Notify(n entities.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

func (h *hub) subscribe() (<-chan entities.Notification, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan entities.Notification, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.next++
	id := h.next
	h.subs[id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
