/*
Package rx is a small push-based stream toolkit used by stores, queries and plugins.

Streams are synchronous: an Observable delivers values on the goroutine that
produced them, except where an operator introduces its own scheduling point
(Debounce delivers on a timer goroutine, TakeUntil watches a channel).

# Hot and cold

  - Subject and BehaviorSubject are hot: they multicast to every current
    subscriber. BehaviorSubject replays its latest value on subscribe.
  - Map, Filter, DistinctUntilChanged, CombineLatest2 and Debounce are cold:
    each subscription builds its own chain over the source.
  - Share turns a cold chain into a lazy, reference-counted multicast that
    replays the latest value and restarts after the last subscriber leaves.

Every Subscribe returns a *Subscription; Unsubscribe is idempotent and safe
to call from inside a callback.
*/
package rx
