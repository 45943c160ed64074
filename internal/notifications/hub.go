package notifications

import (
	"context"
	"sync"
)

const subscriberBuffer = 8

// Hub broadcasts status events to in-process subscribers keyed by episode.
// Slow subscribers miss events rather than block the publisher.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int64]map[int]chan Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int64]map[int]chan Event)}
}

// Subscribe registers for events of one episode. The returned cancel func
// closes the channel and must be called once the subscriber is done.
func (h *Hub) Subscribe(episodeID int64) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.subs[episodeID] == nil {
		h.subs[episodeID] = make(map[int]chan Event)
	}
	h.subs[episodeID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs, ok := h.subs[episodeID]; ok {
				delete(subs, id)
				if len(subs) == 0 {
					delete(h.subs, episodeID)
				}
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of active subscriptions for an episode.
func (h *Hub) Subscribers(episodeID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[episodeID])
}

func (h *Hub) NotifyStatusChanged(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[event.EpisodeID] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (h *Hub) NotifyError(context.Context, error, string) error { return nil }

func (h *Hub) TestNotification(context.Context) error { return nil }
