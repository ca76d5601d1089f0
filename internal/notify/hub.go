// Package notify delivers user-visible messages to websocket subscribers.
package notify

import (
	"sync"
	"time"
)

// Message types sent to subscribers.
const (
	TypeNotification = "notification"
	TypeSync         = "sync"
)

// Message is the envelope written to every subscriber.
type Message struct {
	Type  string    `json:"type"`
	Data  any       `json:"data,omitempty"`
	Error string    `json:"error,omitempty"`
	At    time.Time `json:"at"`
}

// Notification is the payload of a TypeNotification message.
type Notification struct {
	Text    string `json:"message"`
	IsError bool   `json:"is_error"`
}

// Notifier is the single user-facing notification channel.
type Notifier interface {
	Notify(text string, isError bool)
	Publish(msgType string, data any)
}

const subscriberBuffer = 16

// Hub fans messages out to subscribers. Publishing never blocks; a subscriber
// whose buffer is full misses the message.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Message]struct{}
	closed bool
	now    func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[chan Message]struct{}),
		now:  time.Now,
	}
}

var _ Notifier = (*Hub)(nil)

// Subscribe registers a new subscriber. Call cancel to release it.
func (h *Hub) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subs[ch]; ok {
				delete(h.subs, ch)
				close(ch)
			}
			h.mu.Unlock()
		})
	}
}

// Notify publishes a user-visible message.
func (h *Hub) Notify(text string, isError bool) {
	h.Publish(TypeNotification, Notification{Text: text, IsError: isError})
}

func (h *Hub) Publish(msgType string, data any) {
	msg := Message{Type: msgType, Data: data, At: h.now().UTC()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribers reports the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
