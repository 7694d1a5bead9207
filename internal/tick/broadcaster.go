package tick

import (
	"sync"
	"time"
)

// Broadcaster hands each tick timestamp to any number of subscribers.
// Subscribers only read; a slow subscriber sees the latest timestamp
// rather than a backlog.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan time.Time]struct{}
}

// NewBroadcaster returns an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan time.Time]struct{})}
}

// Subscribe registers a subscriber. The returned func unsubscribes and
// closes the channel; calling it more than once is safe.
func (b *Broadcaster) Subscribe() (<-chan time.Time, func()) {
	ch := make(chan time.Time, 1)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers t to every subscriber without blocking.
func (b *Broadcaster) Publish(t time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- t:
			continue
		default:
		}
		// replace the stale value
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- t:
		default:
		}
	}
}

// Len returns the number of subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
