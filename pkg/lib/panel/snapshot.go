package panel

import (
	"context"
	"time"

	"github.com/SanjoDeundiak/devpanel/pkg/lib"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/countdown"
)

// PushOutcome is the result of the latest auto-push cycle.
type PushOutcome struct {
	At        time.Time
	Committed bool
	Success   bool
	Detail    string
	Duration  time.Duration
}

// Snapshot is the display state of the panel.
type Snapshot struct {
	Running      bool
	Epoch        uint64
	Command      string
	Process      *lib.ProcessStatus
	Connectivity lib.Connectivity
	// Remaining is the countdown value in ticks, -1 while stopped.
	Remaining  int
	Period     int
	Tick       time.Duration
	LastPush   *PushOutcome
	StartError string
}

// NextPush renders the countdown as shown next to the controls.
func (s Snapshot) NextPush() string {
	if s.Remaining < 0 {
		return "--:--"
	}
	return countdown.Format(s.Remaining, s.Tick)
}

// Snapshot returns the current display state.
func (c *Coordinator) Snapshot() Snapshot {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state.clone()
}

// Subscribe delivers the current snapshot and then every change until ctx is
// done. A slow reader only misses intermediate states, never the latest one.
func (c *Coordinator) Subscribe(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot, 1)
	sub, err := c.snapshots.Subscribe()
	out <- c.Snapshot()
	if err != nil {
		close(out)
		return out
	}

	go func() {
		defer close(out)
		defer c.snapshots.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-sub:
				if !ok {
					return
				}
				select {
				case out <- s:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// update applies fn and publishes the result. Publishing under stateMu keeps
// subscribers seeing states in the order they were made.
func (c *Coordinator) update(fn func(*Snapshot)) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	fn(&c.state)
	c.publishLocked()
}

// updateFor is update for an actor of epoch. It does nothing once that epoch
// is over.
func (c *Coordinator) updateFor(epoch uint64, fn func(*Snapshot)) bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if !c.active(epoch) {
		return false
	}
	fn(&c.state)
	c.publishLocked()
	return true
}

func (c *Coordinator) publishLocked() {
	c.snapshots.Publish(c.state.clone())
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Process != nil {
		p := *s.Process
		out.Process = &p
	}
	if s.LastPush != nil {
		o := *s.LastPush
		out.LastPush = &o
	}
	return out
}
