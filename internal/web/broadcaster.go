package web

import (
	"sync"

	"orientd/internal/orientation"
)

// Broadcaster fans delivered orientation samples out to any listeners
// (e.g. SSE streams). It keeps the most recent value so new subscribers get
// an immediate sample.
type Broadcaster struct {
	mu       sync.Mutex
	subs     map[int]chan orientation.Sample
	nextID   int
	last     orientation.Sample
	haveLast bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan orientation.Sample)}
}

// Subscribe registers a new listener channel. Slow subscribers drop
// samples rather than block the publisher.
func (b *Broadcaster) Subscribe(buffer int) (int, <-chan orientation.Sample) {
	if buffer <= 0 {
		buffer = 2
	}
	ch := make(chan orientation.Sample, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	last, have := b.last, b.haveLast
	b.mu.Unlock()

	if have {
		select {
		case ch <- last:
		default:
		}
	}
	return id, ch
}

func (b *Broadcaster) Unsubscribe(id int) {
	b.mu.Lock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers sm to every subscriber without blocking.
func (b *Broadcaster) Publish(sm orientation.Sample) {
	b.mu.Lock()
	b.last = sm
	b.haveLast = true
	subs := make([]chan orientation.Sample, 0, len(b.subs))
	for _, ch := range b.subs {
		subs = append(subs, ch)
	}
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- sm:
		default:
		}
	}
}

// OrientationChanged implements orientation.Listener.
func (b *Broadcaster) OrientationChanged(sm orientation.Sample) { b.Publish(sm) }
