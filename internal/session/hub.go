package session

import "sync"

// DefaultBuffer is the per-subscriber queue length
const DefaultBuffer = 64

// Message types pushed to clients
const (
	TypeListing    = "listing"
	TypeError      = "error"
	TypeFileChosen = "file_chosen"
	TypeState      = "state"
	TypeCommand    = "command"
	TypeNotice     = "notice"
	TypeClosed     = "closed"
)

// Message is one server-sent event
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans messages out to the event streams of one session. Publish never
// blocks: a subscriber that falls behind loses its oldest messages.
// Messages published while nobody listens are kept, up to the buffer size,
// for the next subscriber.
type Hub struct {
	mu      sync.Mutex
	subs    map[chan Message]struct{}
	backlog []Message
	buffer  int
	closed  bool
}

// NewHub creates a hub with the given per-subscriber buffer
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[chan Message]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new stream. The returned function unsubscribes; the
// channel is closed when the stream ends either way.
func (h *Hub) Subscribe() (<-chan Message, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Message, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	for _, m := range h.backlog {
		ch <- m
	}
	h.backlog = nil
	h.subs[ch] = struct{}{}

	return ch, func() { h.unsubscribe(ch) }
}

// Publish delivers m to every subscriber
func (h *Hub) Publish(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	if len(h.subs) == 0 {
		if len(h.backlog) == h.buffer {
			h.backlog = h.backlog[1:]
		}
		h.backlog = append(h.backlog, m)
		return
	}

	for ch := range h.subs {
		send(ch, m)
	}
}

// Subscribers counts the live streams
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every stream. Later publishes are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	h.backlog = nil
	for ch := range h.subs {
		close(ch)
		delete(h.subs, ch)
	}
}

func (h *Hub) unsubscribe(ch chan Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// send queues m, dropping the oldest queued message when full
func send(ch chan Message, m Message) {
	for {
		select {
		case ch <- m:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
