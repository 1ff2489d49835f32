package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rekk2/event-registration/internal/telemetry"
)

// Subscription one observer's feed. C is closed on Unsubscribe or Hub.Close.
type Subscription struct {
	ID string
	C  <-chan Event

	ch chan Event
}

// Hub in-process fan-out. Every subscriber receives every event; a subscriber whose
// buffer is full misses the event instead of blocking the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	closed bool
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{subs: map[string]*Subscription{}, logger: logger}
}

var _ Publisher = (*Hub)(nil)

// Subscribe registers a new observer with the given buffer size (minimum 1).
// It returns nil after Close.
func (h *Hub) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	sub := &Subscription{ID: uuid.NewString(), C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.subs[sub.ID] = sub
	telemetry.BroadcastSubscribers.Inc()
	return sub
}

// Unsubscribe removes sub and closes its channel. Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.ID]; !ok {
		return
	}
	delete(h.subs, sub.ID)
	close(sub.ch)
	telemetry.BroadcastSubscribers.Dec()
}

// Publish never blocks and never fails.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		select {
		case sub.ch <- ev:
		default:
			telemetry.BroadcastDroppedTotal.Inc()
			h.logger.Debug("Dropped event for slow subscriber",
				zap.String("subscriber", sub.ID), zap.String("topic", ev.Topic))
		}
	}
	return nil
}

// Subscribers current observer count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close unsubscribes everyone; later Subscribe calls return nil.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
		telemetry.BroadcastSubscribers.Dec()
	}
	h.closed = true
}
