package realtime

import (
	"context"
	"errors"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/krishimitra/marketplace-backend/pkg/logger"
	"github.com/krishimitra/marketplace-backend/pkg/metrics"
)

type subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *goredis.PubSub
}

// Hub fans deal change notifications out to live subscribers. Subscribers
// receive coalesced ticks, not event payloads; each one re-queries its full
// result set on every tick.
type Hub struct {
	mu      sync.Mutex
	subs    map[uint64]chan struct{}
	nextID  uint64
	metrics *metrics.DealMetrics
	logg    *logger.Logger
}

// NewHub builds an empty hub.
func NewHub(dealMetrics *metrics.DealMetrics, logg *logger.Logger) *Hub {
	return &Hub{
		subs:    make(map[uint64]chan struct{}),
		metrics: dealMetrics,
		logg:    logg,
	}
}

// Subscription is a live change feed handle. Close must be called on request
// teardown; it is safe to call more than once.
type Subscription struct {
	C      <-chan struct{}
	stream string
	hub    *Hub
	id     uint64
	once   sync.Once
}

// Close removes the subscription from the hub.
func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
		s.hub.metrics.SubscriptionClosed(s.stream)
	})
}

// Subscribe registers a new subscriber for the named stream.
func (h *Hub) Subscribe(stream string) *Subscription {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = ch
	h.mu.Unlock()
	h.metrics.SubscriptionOpened(stream)
	return &Subscription{C: ch, stream: stream, hub: h, id: id}
}

// Notify wakes every subscriber. Sends are non-blocking; a subscriber that
// already has a pending tick does not queue another one.
func (h *Hub) Notify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SubscriberCount reports the number of live subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Run consumes change notifications from the Redis channel and rebroadcasts
// them to subscribers until the context is cancelled.
func (h *Hub) Run(ctx context.Context, source subscriber, channel string) error {
	pubsub := source.Subscribe(ctx, channel)
	defer pubsub.Close()

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			if h.logg != nil {
				h.logg.Info(ctx, "realtime hub stopped")
			}
			return ctx.Err()
		case _, ok := <-messages:
			if !ok {
				return errors.New("redis subscription closed")
			}
			h.Notify()
		}
	}
}
