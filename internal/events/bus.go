// Package events carries cross-page "something changed" signals inside one
// console process.
package events

import (
	"sync"
)

type Topic string

const (
	ShipmentUpdated  Topic = "shipment:updated"
	ShipmentsRefresh Topic = "shipments:refresh"
	AgentsRefresh    Topic = "agents:refresh"
)

// Event is a bare signal. ShipmentID is informational; subscribers must not
// depend on it being set.
type Event struct {
	Topic      Topic
	ShipmentID string
	Status     string
}

type Handler func(Event)

// Bus is a synchronous publish/subscribe hub. Handlers run on the
// publisher's goroutine in no particular order.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Topic]map[uint64]Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[uint64]Handler)}
}

// Subscribe registers h for topic and returns the func that removes it.
// Calling the returned func more than once is a no-op.
func (b *Bus) Subscribe(topic Topic, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[uint64]Handler)
	}
	b.subs[topic][id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[topic], id)
			b.mu.Unlock()
		})
	}
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.subs[e.Topic]))
	for _, h := range b.subs[e.Topic] {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(e)
	}
}

func (b *Bus) Subscribers(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
