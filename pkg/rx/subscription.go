package rx

import "sync"

// Subscription is the cancellation handle of a Subscribe call.
type Subscription struct {
	mu        sync.Mutex
	closed    bool
	done      chan struct{}
	teardowns []func()
}

// NewSubscription creates an open subscription that runs teardown once on Unsubscribe.
func NewSubscription(teardown func()) *Subscription {
	s := &Subscription{done: make(chan struct{})}
	if teardown != nil {
		s.teardowns = append(s.teardowns, teardown)
	}
	return s
}

func closedSubscription() *Subscription {
	s := NewSubscription(nil)
	s.Unsubscribe()
	return s
}

// Add registers fn to run on Unsubscribe. If the subscription is already
// closed, fn runs immediately.
func (s *Subscription) Add(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}
	s.teardowns = append(s.teardowns, fn)
	s.mu.Unlock()
}

// Unsubscribe releases the subscription. Only the first call has an effect.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	fns := s.teardowns
	s.teardowns = nil
	close(s.done)
	s.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// Closed reports whether Unsubscribe has run.
func (s *Subscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Done returns a channel closed when the subscription ends, either through
// Unsubscribe or because its source completed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// link ties the lifetime of an inner subscription to an outer one, in both
// directions.
func link(outer, inner *Subscription) {
	outer.Add(inner.Unsubscribe)
	inner.Add(outer.Unsubscribe)
}
