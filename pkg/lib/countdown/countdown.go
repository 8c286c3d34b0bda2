// Package countdown implements the interval task runner: a fixed-period
// countdown that invokes an action every time it reaches zero.
package countdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultTick is the resolution of the countdown.
const DefaultTick = time.Second

var ErrInvalidPeriod = errors.New("period must be at least one tick")

// Action is the work performed each time the countdown expires. Its error is
// only reported; it never affects the schedule.
type Action func(ctx context.Context) error

// Timer counts down from its period one tick at a time. When the remaining
// count reaches zero the action runs and the count is reset to the period.
type Timer struct {
	period int
	action Action

	tick      time.Duration
	logger    *zap.Logger
	onTick    func(remaining int)
	onOutcome func(error)

	mu          sync.Mutex // serializes Step
	remaining   atomic.Int64
	invocations atomic.Int64
}

type Option func(*Timer)

// WithTick sets the duration of one tick.
func WithTick(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.tick = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(t *Timer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithPublisher registers fn to receive every published remaining value.
func WithPublisher(fn func(remaining int)) Option {
	return func(t *Timer) {
		t.onTick = fn
	}
}

// WithOutcome registers fn to receive the result of every action invocation.
func WithOutcome(fn func(error)) Option {
	return func(t *Timer) {
		t.onOutcome = fn
	}
}

// New creates a Timer that fires action every period ticks.
func New(period int, action Action, opts ...Option) (*Timer, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPeriod, period)
	}
	t := &Timer{
		period: period,
		action: action,
		tick:   DefaultTick,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.remaining.Store(int64(period))
	return t, nil
}

// Period returns the reset value in ticks.
func (t *Timer) Period() int { return t.period }

// Tick returns the duration of one tick.
func (t *Timer) Tick() time.Duration { return t.tick }

// Remaining returns the current countdown value.
func (t *Timer) Remaining() int { return int(t.remaining.Load()) }

// Invocations returns how many times the action has run.
func (t *Timer) Invocations() int { return int(t.invocations.Load()) }

// Reset puts the countdown back to its period and publishes it.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.set(t.period)
}

// Step advances the countdown by one tick. It reports whether the action was
// invoked during this step.
func (t *Timer) Step(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.Remaining() - 1
	if next < 0 {
		next = 0
	}
	t.set(next)
	if next > 0 {
		return false
	}

	t.invocations.Add(1)
	var err error
	if t.action != nil {
		err = t.action(ctx)
	}
	if err != nil {
		t.logger.Warn("interval action failed", zap.Error(err))
	}
	if t.onOutcome != nil {
		t.onOutcome(err)
	}

	t.set(t.period)
	return true
}

// Run publishes the initial value and then steps once per tick until running
// reports false or ctx is done. ctx only shortens the sleep between ticks.
func (t *Timer) Run(ctx context.Context, running func() bool) {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	t.publish(t.Remaining())
	for running() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if !running() {
			return
		}
		t.Step(ctx)
	}
}

func (t *Timer) set(v int) {
	t.remaining.Store(int64(v))
	t.publish(v)
}

func (t *Timer) publish(v int) {
	if t.onTick != nil {
		t.onTick(v)
	}
}

// Format renders remaining ticks as MM:SS.
func Format(remaining int, tick time.Duration) string {
	if remaining < 0 {
		return "--:--"
	}
	secs := int((time.Duration(remaining) * tick).Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
