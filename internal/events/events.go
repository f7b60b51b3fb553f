package events

// Package events carries pipeline notifications to whatever frontend is
// attached. Delivery is fire-and-forget: the absence of a listener is not an
// error and must never block a producer.

import (
	"sync"

	"github.com/hrmshandy/treasure-chest/internal/model"
)

// Type identifies a notification kind.
type Type string

const (
	TypeQueued    Type = "download-queued"
	TypeProgress  Type = "download-progress"
	TypeCompleted Type = "download-completed"
	TypeFailed    Type = "download-failed"
	TypeCancelled Type = "download-cancelled"
	TypeInstalled Type = "mod-installed"
)

// Event is a single notification. Only the payload fields relevant to the
// event type are set.
type Event struct {
	Type     Type                    `json:"type"`
	TaskID   string                  `json:"taskId,omitempty"`
	Task     *model.DownloadTask     `json:"task,omitempty"`
	Progress *model.DownloadProgress `json:"progress,omitempty"`
	Record   *model.InstallRecord    `json:"record,omitempty"`
	Message  string                  `json:"message,omitempty"`
}

// Emitter receives pipeline notifications. Implementations must be safe for
// concurrent use and must not block.
type Emitter interface {
	Emit(Event)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(Event)

// Emit calls f.
func (f EmitterFunc) Emit(e Event) {
	if f != nil {
		f(e)
	}
}

// Discard drops every event.
var Discard Emitter = EmitterFunc(nil)

// Hub fans events out to subscribers over buffered channels. Slow subscribers
// lose events rather than blocking the producer.
type Hub struct {
	mu   sync.RWMutex
	subs []chan Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers a new listener channel.
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, 128)
	h.mu.Lock()
	h.subs = append(h.subs, ch)
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a listener channel.
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, sub := range h.subs {
		if sub == ch {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Emit delivers e to every subscriber without blocking.
func (h *Hub) Emit(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
			// Listener is slow, skip
		}
	}
}
