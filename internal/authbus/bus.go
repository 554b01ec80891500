// Package authbus carries the session-invalidation signal between the API
// client, which detects 401 responses, and the session store, which reacts to
// them. Neither side holds a reference to the other.
package authbus

import "sync"

type subscriber struct {
	id int
	fn func()
}

// Bus is a process-wide publish/subscribe channel for a single parameterless
// signal: "the current session is no longer valid." Construct one at startup
// and inject it; there is no package-level instance.
type Bus struct {
	mu     sync.Mutex
	pubMu  sync.Mutex
	nextID int
	subs   []subscriber
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a listener and returns a function that removes it.
// Listeners are invoked in registration order. Calling the returned function
// more than once is harmless.
func (b *Bus) Subscribe(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscriber{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish invokes every currently registered listener, synchronously and in
// registration order. A panicking listener does not prevent the remaining
// listeners from running. Publishes are serialized with respect to each
// other. With no subscribers the signal is lost, which is fine: the session
// store is subscribed for the application's entire lifetime.
func (b *Bus) Publish() {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	b.mu.Lock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		invoke(s.fn)
	}
}

func invoke(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}
