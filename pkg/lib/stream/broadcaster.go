package stream

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrStopped is returned when subscribing to a stopped broadcaster.
var ErrStopped = errors.New("broadcaster is stopped")

var logger = zap.NewNop()

// SetLogger routes the package debug output to l.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l.Named("stream")
	}
}

// Broadcaster fans every published value out to all current subscribers.
// Subscribers only ever see the latest values: a subscriber that is behind gets
// its oldest pending value replaced instead of blocking the publisher.
type Broadcaster[T any] struct {
	messageReceiver chan T

	mu          sync.Mutex
	subscribers map[chan T]struct{}
	stopped     bool

	publishMu sync.Mutex
	closed    bool
}

func RunNewBroadcaster[T any]() *Broadcaster[T] {
	broadcaster := &Broadcaster[T]{
		messageReceiver: make(chan T, 1),
		subscribers:     make(map[chan T]struct{}),
	}

	go broadcaster.start()

	return broadcaster
}

func (broadcaster *Broadcaster[T]) start() {
	logger.Debug("broadcaster started")

	for msg := range broadcaster.messageReceiver {
		// Sends never block, so holding the lock here keeps Unsubscribe from
		// closing a channel we are about to write to.
		broadcaster.mu.Lock()
		for s := range broadcaster.subscribers {
			select {
			case s <- msg:
			default:
				// channel is full, drop the oldest value
				select {
				case <-s:
				default:
				}
				select {
				case s <- msg:
				default:
				}
			}
		}
		broadcaster.mu.Unlock()
	}

	broadcaster.mu.Lock()
	for s := range broadcaster.subscribers {
		close(s)
	}
	broadcaster.subscribers = make(map[chan T]struct{})
	broadcaster.stopped = true
	broadcaster.mu.Unlock()

	logger.Debug("broadcaster stopped")
}

// Stop closes the broadcaster. Pending values are still delivered, then every
// subscriber channel is closed. Stop is idempotent.
func (broadcaster *Broadcaster[T]) Stop() {
	broadcaster.publishMu.Lock()
	defer broadcaster.publishMu.Unlock()
	if broadcaster.closed {
		return
	}
	broadcaster.closed = true
	close(broadcaster.messageReceiver)
}

// Subscribe registers a new subscriber channel with a buffer of one.
func (broadcaster *Broadcaster[T]) Subscribe() (chan T, error) {
	ch := make(chan T, 1)
	broadcaster.mu.Lock()
	defer broadcaster.mu.Unlock()
	if broadcaster.stopped {
		return nil, ErrStopped
	}
	broadcaster.subscribers[ch] = struct{}{}
	return ch, nil
}

// Unsubscribe removes and closes a subscriber channel. Unknown or already closed
// channels are ignored.
func (broadcaster *Broadcaster[T]) Unsubscribe(subscriber chan T) {
	broadcaster.mu.Lock()
	defer broadcaster.mu.Unlock()
	if _, ok := broadcaster.subscribers[subscriber]; !ok {
		return
	}
	delete(broadcaster.subscribers, subscriber)
	close(subscriber)
}

// Publish hands msg to the broadcaster without blocking on slow subscribers.
// Publishing after Stop is a no-op.
func (broadcaster *Broadcaster[T]) Publish(msg T) {
	broadcaster.publishMu.Lock()
	defer broadcaster.publishMu.Unlock()
	if broadcaster.closed {
		return
	}

	select {
	case broadcaster.messageReceiver <- msg:
	default:
		// channel is full, drop the queued value in favour of the new one
		select {
		case <-broadcaster.messageReceiver:
		default:
		}
		broadcaster.messageReceiver <- msg
	}
}
