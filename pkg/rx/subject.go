package rx

import (
	"slices"
	"sync"
)

type observer[T any] struct {
	next func(T)
	sub  *Subscription
}

// subject is the multicast core shared by Subject and BehaviorSubject.
//
// Delivery is trampolined: a value pushed while a delivery round is running
// (from a callback, or from another goroutine) is queued and delivered by the
// goroutine that owns the round, after the current value reached every
// observer. Observers therefore see values in the order they were produced.
// A replay owed to an observer that subscribed during a round is delivered by
// the round owner too, ahead of any newer value.
type subject[T any] struct {
	mu        sync.Mutex
	observers []*observer[T]
	queue     []T
	replays   []replayed[T]
	emitting  bool
	closed    bool
	replay    bool
	hasValue  bool
	value     T
}

type replayed[T any] struct {
	o *observer[T]
	v T
}

func (s *subject[T]) subscribe(next func(T)) *Subscription {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return closedSubscription()
	}
	o := &observer[T]{next: next}
	o.sub = NewSubscription(func() { s.remove(o) })
	s.observers = append(s.observers, o)

	if !s.replay || !s.hasValue {
		s.mu.Unlock()
		return o.sub
	}

	v := s.value
	if s.emitting {
		// The round may be owned by this goroutine or another one.
		s.replays = append(s.replays, replayed[T]{o: o, v: v})
		s.mu.Unlock()
		return o.sub
	}

	// Own the round so that no newer value overtakes the replay.
	s.emitting = true
	s.mu.Unlock()
	defer s.recoverRound()
	next(v)
	s.mu.Lock()
	s.drainLocked()
	return o.sub
}

func (s *subject[T]) next(v T) {
	s.stage(v)()
}

func noop() {}

// stage queues v. If no round is running, the caller becomes the round owner
// and the returned flush delivers the queue; otherwise flush is a no-op and the
// running round delivers v.
func (s *subject[T]) stage(v T) (flush func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return noop
	}
	s.queue = append(s.queue, v)
	if s.emitting {
		s.mu.Unlock()
		return noop
	}
	s.emitting = true
	s.mu.Unlock()
	return func() {
		defer s.recoverRound()
		s.mu.Lock()
		s.drainLocked()
	}
}

// drainLocked delivers queued values. Called with s.mu held; returns with it released.
func (s *subject[T]) drainLocked() {
	var zero T
	for len(s.queue) > 0 || len(s.replays) > 0 {
		if len(s.replays) > 0 {
			pending := s.replays
			s.replays = nil
			s.mu.Unlock()
			for _, r := range pending {
				if !r.o.sub.Closed() {
					r.o.next(r.v)
				}
			}
			s.mu.Lock()
			continue
		}

		v := s.queue[0]
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.value, s.hasValue = v, true
		observers := slices.Clone(s.observers)
		s.mu.Unlock()

		for _, o := range observers {
			if !o.sub.Closed() {
				o.next(v)
			}
		}

		s.mu.Lock()
	}
	s.emitting = false
	s.mu.Unlock()
}

// recoverRound releases the round if a callback panicked, then re-panics.
func (s *subject[T]) recoverRound() {
	if r := recover(); r != nil {
		s.mu.Lock()
		s.emitting = false
		s.queue = nil
		s.replays = nil
		s.mu.Unlock()
		panic(r)
	}
}

func (s *subject[T]) remove(o *observer[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = slices.DeleteFunc(s.observers, func(x *observer[T]) bool { return x == o })
}

func (s *subject[T]) complete() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	observers := s.observers
	s.observers = nil
	s.queue = nil
	s.replays = nil
	s.mu.Unlock()

	for _, o := range observers {
		o.sub.Unsubscribe()
	}
}

func (s *subject[T]) observed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

func (s *subject[T]) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Subject is a hot multicast stream without replay.
type Subject[T any] struct {
	core subject[T]
}

// NewSubject creates an open Subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Subscribe implements Observable.
func (s *Subject[T]) Subscribe(next func(T)) *Subscription { return s.core.subscribe(next) }

// Next pushes v to every current subscriber.
func (s *Subject[T]) Next(v T) { s.core.next(v) }

// Complete ends the stream and releases every subscriber.
func (s *Subject[T]) Complete() { s.core.complete() }

// Observed returns the number of live subscribers.
func (s *Subject[T]) Observed() int { return s.core.observed() }

// Closed reports whether Complete has run.
func (s *Subject[T]) Closed() bool { return s.core.isClosed() }

// BehaviorSubject is a hot multicast stream that replays its latest value to
// every new subscriber.
type BehaviorSubject[T any] struct {
	core subject[T]
}

// NewBehaviorSubject creates a BehaviorSubject holding initial.
func NewBehaviorSubject[T any](initial T) *BehaviorSubject[T] {
	b := &BehaviorSubject[T]{}
	b.core.replay = true
	b.core.hasValue = true
	b.core.value = initial
	return b
}

// Subscribe implements Observable.
func (b *BehaviorSubject[T]) Subscribe(next func(T)) *Subscription { return b.core.subscribe(next) }

// Next pushes v to every current subscriber and makes it the replay value.
func (b *BehaviorSubject[T]) Next(v T) { b.core.next(v) }

// Stage queues v for delivery without delivering it. The caller must invoke
// the returned flush exactly once, after releasing any lock an observer may
// need. Staging under the caller's own lock fixes the delivery order to the
// order of the Stage calls.
func (b *BehaviorSubject[T]) Stage(v T) (flush func()) { return b.core.stage(v) }

// Value returns the value of the latest delivery round.
func (b *BehaviorSubject[T]) Value() T {
	b.core.mu.Lock()
	defer b.core.mu.Unlock()
	return b.core.value
}

// Complete ends the stream and releases every subscriber.
func (b *BehaviorSubject[T]) Complete() { b.core.complete() }

// Observed returns the number of live subscribers.
func (b *BehaviorSubject[T]) Observed() int { return b.core.observed() }

// Closed reports whether Complete has run.
func (b *BehaviorSubject[T]) Closed() bool { return b.core.isClosed() }
