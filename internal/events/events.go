package events

import (
	"sync"
	"time"
)

// Type identifies the kind of event published on the hub.
type Type string

const (
	TypeProgress     Type = "progress"
	TypeCompleted    Type = "completed"
	TypeFailed       Type = "failed"
	TypeCancelled    Type = "cancelled"
	TypeFilesUpdated Type = "files_updated"
)

// Event is a realtime update pushed to subscribers. DownloadID is empty for
// library-wide events such as files_updated.
type Event struct {
	Type       Type      `json:"type"`
	DownloadID string    `json:"download_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	Title      string    `json:"title,omitempty"`
	Percent    float64   `json:"percent,omitempty"`
	Speed      string    `json:"speed,omitempty"`
	ETA        string    `json:"eta,omitempty"`
	TotalSize  string    `json:"total_size,omitempty"`
	Line       string    `json:"line,omitempty"`
	Filename   string    `json:"filename,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

const subscriberBuffer = 16

type subscriber struct {
	downloadID string
	ch         chan Event
}

// Hub fans events out to subscribers. Delivery is best effort: a subscriber
// that stops draining its channel loses events rather than stalling
// publishers.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscriber)}
}

// Subscribe registers a listener. A non-empty downloadID restricts delivery
// to that download's events; an empty one receives everything. The returned
// cancel func must be called to release the subscription.
func (h *Hub) Subscribe(downloadID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	sub := &subscriber{
		downloadID: downloadID,
		ch:         make(chan Event, subscriberBuffer),
	}
	h.subs[id] = sub

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if existing, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(existing.ch)
		}
	}
	return sub.ch, cancel
}

// Publish delivers the event to every matching subscriber without blocking.
// Events without a download id, such as files_updated, are broadcast to all
// subscribers regardless of their filter.
func (h *Hub) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		if event.DownloadID != "" && sub.downloadID != "" && sub.downloadID != event.DownloadID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
}

// SubscriberCount reports the number of live subscriptions, for stats.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
