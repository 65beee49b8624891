package observable

import "sync"

const subscriberBuffer = 16

// Value holds the latest value of T and fans out every write to subscribers.
// Reads are synchronous and always observe the last fully written value.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	version uint64
	subs    map[int]chan T
	nextSub int
}

// New creates a Value initialized to initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		subs:    make(map[int]chan T),
	}
}

// Get returns the latest value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.current
}

// Version returns the number of writes applied so far.
func (v *Value[T]) Version() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.version
}

// Set stores next and publishes it to all subscribers.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.setLocked(next)
}

// Update applies fn to the current value under the write lock. If fn returns
// false the value is left untouched and nothing is published.
func (v *Value[T]) Update(fn func(current T) (T, bool)) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	next, ok := fn(v.current)
	if !ok {
		return false
	}

	v.setLocked(next)

	return true
}

func (v *Value[T]) setLocked(next T) {
	v.current = next
	v.version++

	for id, ch := range v.subs {
		select {
		case ch <- next:
		default:
			// slow subscriber, drop it
			close(ch)
			delete(v.subs, id)
		}
	}
}

// Subscribe returns a channel receiving the current value followed by every
// subsequent write, and a cancel func releasing the subscription. A subscriber
// that falls more than a small buffer behind has its channel closed.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.nextSub
	v.nextSub++

	ch := make(chan T, subscriberBuffer)
	ch <- v.current
	v.subs[id] = ch

	cancel := func() {
		v.mu.Lock()
		defer v.mu.Unlock()

		if sub, ok := v.subs[id]; ok {
			close(sub)
			delete(v.subs, id)
		}
	}

	return ch, cancel
}

// Subscribers returns the number of live subscriptions.
func (v *Value[T]) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return len(v.subs)
}
