package rx

import (
	"sync"
	"time"
)

// Map projects every value of src through fn.
func Map[T, R any](src Observable[T], fn func(T) R) Observable[R] {
	return Func[R](func(next func(R)) *Subscription {
		return src.Subscribe(func(v T) { next(fn(v)) })
	})
}

// Filter forwards only the values for which keep returns true.
func Filter[T any](src Observable[T], keep func(T) bool) Observable[T] {
	return Func[T](func(next func(T)) *Subscription {
		return src.Subscribe(func(v T) {
			if keep(v) {
				next(v)
			}
		})
	})
}

// DistinctUntilChanged drops values equal (per eq) to the previous one.
func DistinctUntilChanged[T any](src Observable[T], eq func(a, b T) bool) Observable[T] {
	return Func[T](func(next func(T)) *Subscription {
		var (
			mu   sync.Mutex
			last T
			seen bool
		)
		return src.Subscribe(func(v T) {
			mu.Lock()
			if seen && eq(last, v) {
				mu.Unlock()
				return
			}
			last, seen = v, true
			mu.Unlock()
			next(v)
		})
	})
}

// Distinct is DistinctUntilChanged with ==.
func Distinct[T comparable](src Observable[T]) Observable[T] {
	return DistinctUntilChanged(src, func(a, b T) bool { return a == b })
}

// CombineLatest2 emits fn(latestA, latestB) whenever either source emits,
// once both have emitted at least once. The result ends when either source ends.
func CombineLatest2[A, B, R any](a Observable[A], b Observable[B], fn func(A, B) R) Observable[R] {
	return Func[R](func(next func(R)) *Subscription {
		var (
			mu         sync.Mutex
			lastA      A
			lastB      B
			hasA, hasB bool
		)
		out := NewSubscription(nil)

		subA := a.Subscribe(func(v A) {
			mu.Lock()
			lastA, hasA = v, true
			ready, x, y := hasA && hasB, lastA, lastB
			mu.Unlock()
			if ready {
				next(fn(x, y))
			}
		})
		link(out, subA)

		subB := b.Subscribe(func(v B) {
			mu.Lock()
			lastB, hasB = v, true
			ready, x, y := hasA && hasB, lastA, lastB
			mu.Unlock()
			if ready {
				next(fn(x, y))
			}
		})
		link(out, subB)

		return out
	})
}

// Debounce emits a value only after d has passed without another value.
// Values are delivered on a timer goroutine. A pending value is dropped when
// the subscription ends, but Unsubscribe does not wait for a delivery that has
// already started. A non-positive d returns src unchanged.
func Debounce[T any](src Observable[T], d time.Duration) Observable[T] {
	if d <= 0 {
		return src
	}
	return Func[T](func(next func(T)) *Subscription {
		var (
			mu     sync.Mutex
			timer  *time.Timer
			gen    uint64
			closed bool
		)
		out := NewSubscription(func() {
			mu.Lock()
			closed = true
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
		})

		inner := src.Subscribe(func(v T) {
			mu.Lock()
			defer mu.Unlock()
			if closed {
				return
			}
			gen++
			current := gen
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(d, func() {
				mu.Lock()
				if closed || current != gen {
					mu.Unlock()
					return
				}
				mu.Unlock()
				next(v)
			})
		})
		link(out, inner)

		return out
	})
}

// TakeUntil ends the subscription to src when done is closed.
func TakeUntil[T any](src Observable[T], done <-chan struct{}) Observable[T] {
	return Func[T](func(next func(T)) *Subscription {
		select {
		case <-done:
			return closedSubscription()
		default:
		}
		sub := src.Subscribe(next)
		go func() {
			select {
			case <-done:
				sub.Unsubscribe()
			case <-sub.Done():
			}
		}()
		return sub
	})
}

// Share multicasts src to every subscriber through a single upstream
// subscription and replays the latest value to late subscribers. The upstream
// is connected on the first subscribe and released after the last
// unsubscribe; a later subscribe connects again.
func Share[T any](src Observable[T]) Observable[T] {
	return &shared[T]{src: src}
}

type shared[T any] struct {
	mu       sync.Mutex
	src      Observable[T]
	hub      *subject[T]
	upstream *Subscription
	refs     int
}

func (s *shared[T]) Subscribe(next func(T)) *Subscription {
	s.mu.Lock()
	if s.hub == nil {
		s.hub = &subject[T]{replay: true}
	}
	hub := s.hub
	s.refs++
	first := s.refs == 1
	s.mu.Unlock()

	inner := hub.subscribe(next)
	out := NewSubscription(func() {
		inner.Unsubscribe()
		s.release(hub)
	})
	inner.Add(out.Unsubscribe)

	if first {
		up := s.src.Subscribe(hub.next)
		up.Add(hub.complete)
		s.mu.Lock()
		if s.hub == hub {
			s.upstream = up
			s.mu.Unlock()
		} else {
			s.mu.Unlock()
			up.Unsubscribe()
		}
	}
	return out
}

func (s *shared[T]) release(hub *subject[T]) {
	s.mu.Lock()
	if s.hub != hub {
		s.mu.Unlock()
		return
	}
	s.refs--
	if s.refs > 0 {
		s.mu.Unlock()
		return
	}
	up := s.upstream
	s.hub, s.upstream, s.refs = nil, nil, 0
	s.mu.Unlock()
	if up != nil {
		up.Unsubscribe()
	}
	hub.complete()
}
