package storefront

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"RocketShoes/internal/cart"
)

const subscriberBuffer = 16

// Hub fans cart notifications out to a session's live subscribers. A slow
// subscriber loses notifications instead of blocking the cart.
type Hub struct {
	log *zap.Logger

	mu   sync.Mutex
	subs map[chan cart.Notification]struct{}
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{log: log, subs: map[chan cart.Notification]struct{}{}}
}

func (h *Hub) Notify(_ context.Context, n cart.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- n:
		default:
			h.log.Debug("notification dropped", zap.String("id", n.ID))
		}
	}
}

func (h *Hub) Subscribe() (<-chan cart.Notification, func()) {
	ch := make(chan cart.Notification, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
