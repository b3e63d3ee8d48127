package session

import "sync"

// EventType says what happened to the persisted token.
type EventType int

const (
	EventLogin EventType = iota
	EventLogout
)

// Event is broadcast whenever the auth state changes.
type Event struct {
	Type     EventType
	Username string
}

// Hub broadcasts auth state changes to a known subscriber set through a
// single update path. Login and logout are the only publishers.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function that removes it again.
func (h *Hub) Subscribe(fn func(Event)) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Broadcast delivers ev to every subscriber, synchronously and in no
// particular order.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	fns := make([]func(Event), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
