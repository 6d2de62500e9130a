package notify

import (
	"sync"

	"github.com/AweemRizwan/smm-optimize-sub001/pkg/models"
)

// Hub fans incoming notifications out to in-process subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan models.Notification]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan models.Notification]struct{})}
}

func (h *Hub) Subscribe() chan models.Notification {
	ch := make(chan models.Notification, models.DefaultEventChanBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan models.Notification) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *Hub) Publish(ev models.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// Drop if subscriber is too slow; prevents global backpressure.
		}
	}
}
