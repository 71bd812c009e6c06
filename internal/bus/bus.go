// Package bus is a typed in-process publish/subscribe channel for coarse
// cross-surface signals (login, logout, profile edits). Subscribers react by
// re-running their own fetch-and-render cycle; no payload is authoritative.
package bus

import "sync"

type Topic string

const (
	TopicLogin          Topic = "session.login"
	TopicLogout         Topic = "session.logout"
	TopicProfileUpdated Topic = "profile.updated"
	TopicOrderPlaced    Topic = "order.placed"
)

type Event struct {
	Topic     Topic
	SessionID string
	Payload   any
}

type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[Topic]map[int]chan Event
}

func New() *Bus {
	return &Bus{subs: make(map[Topic]map[int]chan Event)}
}

// Subscribe returns a receive channel for a topic and a cancel func that
// releases it. The channel is buffered; see Publish.
func (b *Bus) Subscribe(t Topic) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[t] == nil {
		b.subs[t] = make(map[int]chan Event)
	}
	id := b.next
	b.next++
	ch := make(chan Event, 16)
	b.subs[t][id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, ok := b.subs[t][id]; ok {
			delete(b.subs[t], id)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking. A slow
// subscriber with a full buffer misses the signal; the next one, or its own
// poll, catches it up.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[ev.Topic] {
		select {
		case ch <- ev:
		default:
		}
	}
}
