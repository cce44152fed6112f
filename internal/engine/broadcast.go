package engine

import "sync"

// Broadcaster fans values out to subscribers through capacity-1 channels.
// A subscriber that falls behind only sees the latest value; older pending
// values are replaced. Publish never blocks.
type Broadcaster[T any] struct {
	mu   sync.Mutex
	subs []chan T
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{}
}

// Subscribe returns a channel receiving published values.
func (b *Broadcaster[T]) Subscribe() <-chan T {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, 1)
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers v to every subscriber, replacing any value it has not
// received yet.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		for {
			select {
			case ch <- v:
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}
