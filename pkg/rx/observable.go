package rx

// Observable is a push sequence of values.
type Observable[T any] interface {
	Subscribe(next func(T)) *Subscription
}

// Func adapts a subscribe function into an Observable.
type Func[T any] func(next func(T)) *Subscription

// Subscribe implements Observable.
func (f Func[T]) Subscribe(next func(T)) *Subscription {
	return f(next)
}

// Of returns a cold Observable that emits values synchronously on subscribe.
func Of[T any](values ...T) Observable[T] {
	return Func[T](func(next func(T)) *Subscription {
		sub := NewSubscription(nil)
		for _, v := range values {
			if sub.Closed() {
				break
			}
			next(v)
		}
		return sub
	})
}

// Last subscribes to src and returns the value delivered synchronously during
// Subscribe, if any. Useful to read a replaying stream once. A subject that is
// in the middle of a delivery round queues its replay instead, so Last
// reports false then.
func Last[T any](src Observable[T]) (T, bool) {
	var (
		last T
		ok   bool
	)
	sub := src.Subscribe(func(v T) {
		last = v
		ok = true
	})
	sub.Unsubscribe()
	return last, ok
}
