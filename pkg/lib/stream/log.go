package stream

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/SanjoDeundiak/devpanel/pkg/lib"
	"go.uber.org/zap"
)

// node is an element of the singly linked list behind Log.
type node[T any] struct {
	value T
	next  atomic.Pointer[node[T]]
}

// Log is an append-only list of values with replaying subscriptions.
//
// Appends from multiple goroutines are serialized by a mutex; readers walk the
// list through atomic next pointers and never take the lock. Every subscriber
// receives the full history from the first value, then follows live appends
// until the log is stopped or its context is cancelled.
type Log[T any] struct {
	mu   sync.Mutex
	head *node[T] // sentinel, immutable
	tail *node[T]
	size atomic.Int64

	notifier *Broadcaster[struct{}]
}

// RunNewLog creates an empty log together with its notification goroutine.
func RunNewLog[T any]() *Log[T] {
	sentinel := &node[T]{}
	return &Log[T]{
		head:     sentinel,
		tail:     sentinel,
		notifier: RunNewBroadcaster[struct{}](),
	}
}

// Stop ends all live subscriptions once they have drained. Values appended
// afterwards are kept but no longer announced.
func (l *Log[T]) Stop() {
	if l == nil {
		return
	}
	l.notifier.Stop()
}

// Append adds v to the end of the log.
func (l *Log[T]) Append(v T) {
	if l == nil {
		return
	}

	n := &node[T]{value: v}

	l.mu.Lock()
	l.tail.next.Store(n)
	l.tail = n
	l.mu.Unlock()

	l.size.Add(1)
	l.notifier.Publish(struct{}{})
}

// Len reports the number of appended values.
func (l *Log[T]) Len() int {
	if l == nil {
		return 0
	}
	return int(l.size.Load())
}

// ForEach iterates over all stored values in insertion order.
// If iter returns false, iteration stops early.
func (l *Log[T]) ForEach(iter func(T) bool) {
	if l == nil || iter == nil {
		return
	}
	for cur := l.head.next.Load(); cur != nil; cur = cur.next.Load() {
		if !iter(cur.value) {
			return
		}
	}
}

// Snapshot copies the current contents.
func (l *Log[T]) Snapshot() []T {
	out := make([]T, 0, l.Len())
	l.ForEach(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

// Tail returns at most n of the most recent values.
func (l *Log[T]) Tail(n int) []T {
	all := l.Snapshot()
	if n >= 0 && len(all) > n {
		return all[len(all)-n:]
	}
	return all
}

// Subscribe returns a channel that replays the log from the beginning and then
// follows new values. The channel is closed when the log is stopped and fully
// delivered, or when ctx is done.
func (l *Log[T]) Subscribe(ctx context.Context, capacity int) <-chan T {
	ch := make(chan T, capacity)
	notifier, err := l.notifier.Subscribe()
	if err == nil {
		go l.follow(ctx, notifier, ch)
	} else {
		go func() {
			defer close(ch)
			l.drain(ctx, l.head, ch)
		}()
	}
	return ch
}

func (l *Log[T]) follow(ctx context.Context, notifier chan struct{}, ch chan T) {
	id := lib.ShortID(lib.NewID())
	logger.Debug("subscriber started", zap.String("subscriber", id))

	defer close(ch)
	defer l.notifier.Unsubscribe(notifier)

	prev := l.head
	for {
		current := prev.next.Load()
		if current == nil {
			select {
			case <-ctx.Done():
				logger.Debug("subscriber cancelled", zap.String("subscriber", id))
				return
			case _, ok := <-notifier:
				if !ok {
					l.drain(ctx, prev, ch)
					logger.Debug("subscriber finished", zap.String("subscriber", id))
					return
				}
			}
			continue
		}
		prev = current

		select {
		case ch <- current.value:
		case <-ctx.Done():
			return
		}
	}
}

// drain sends every value after prev.
func (l *Log[T]) drain(ctx context.Context, prev *node[T], ch chan T) {
	for cur := prev.next.Load(); cur != nil; cur = cur.next.Load() {
		select {
		case ch <- cur.value:
		case <-ctx.Done():
			return
		}
	}
}
