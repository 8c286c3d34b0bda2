package panel

import (
	"context"
	"errors"
	"fmt"

	"github.com/SanjoDeundiak/devpanel/pkg/lib"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/runner"
	"go.uber.org/zap"
)

// Start sets the running flag and spawns the server, countdown and poller
// actors. It returns false, doing nothing, when already running.
func (c *Coordinator) Start() bool {
	c.mu.Lock()
	if c.running.Load() {
		c.mu.Unlock()
		return false
	}
	if c.sup.Current() != nil {
		// A previous run survived its stop request and still holds the handle.
		c.mu.Unlock()
		c.logf(lib.SourcePanel, "Previous server is still shutting down, try again shortly")
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.stateMu.Lock()
	epoch := c.epoch.Add(1)
	c.cancel = cancel
	c.running.Store(true)
	c.state.Running = true
	c.state.Epoch = epoch
	c.state.Connectivity = lib.ConnectingStatus()
	c.state.Remaining = c.cfg.PushPeriod
	c.state.StartError = ""
	c.state.Process = nil
	c.publishLocked()
	c.stateMu.Unlock()
	c.wg.Add(3)
	c.mu.Unlock()

	c.logf(lib.SourcePanel, "Starting '%s'...", c.cfg.Command.Line)
	c.logger.Info("panel started", zap.Uint64("epoch", epoch))

	go c.runServer(ctx, epoch)
	go c.runCountdown(ctx, epoch)
	go c.runPoller(ctx, epoch)
	return true
}

// Stop clears the running flag and requests termination of the supervised
// process exactly once. It returns false, doing nothing, when not running.
// Actors observe the cleared flag within one of their periods.
func (c *Coordinator) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	epoch, ok := c.finishEpoch(0)
	if !ok {
		return false
	}
	c.logger.Info("panel stopping", zap.Uint64("epoch", epoch))

	// The lock is held so a concurrent Start cannot spawn a process that this
	// call would then terminate.
	if c.sup.Current() == nil {
		return true
	}
	c.logf(lib.SourcePanel, "Stopping server...")
	st, err := c.sup.Stop()
	switch {
	case err == nil:
	case isNotRunning(err):
		// exited on its own meanwhile
	case errors.Is(err, runner.ErrStopTimeout):
		c.logf(lib.SourcePanel, "Error stopping server: %v; it will be released once it exits", err)
	default:
		c.logf(lib.SourcePanel, "Error stopping server: %v", err)
	}
	if st.RunID != "" {
		c.update(func(s *Snapshot) { s.Process = &st })
	}
	return true
}

// finishEpoch clears the flag and resets the display state in one step, so
// no actor update can land on the stopped state. With epoch 0 it ends
// whatever epoch is active. Callers hold c.mu.
func (c *Coordinator) finishEpoch(epoch uint64) (uint64, bool) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	current := c.epoch.Load()
	if !c.running.Load() || (epoch != 0 && epoch != current) {
		return current, false
	}
	c.running.Store(false)
	c.cancel()
	c.state.Running = false
	c.state.Connectivity = lib.OfflineStatus()
	c.state.Remaining = -1
	c.publishLocked()
	return current, true
}

// Wait blocks until the actors of every epoch have returned.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// endEpoch clears the flag after the process exited on its own. No
// termination is requested.
func (c *Coordinator) endEpoch(epoch uint64, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.finishEpoch(epoch); !ok {
		return
	}
	c.logf(lib.SourcePanel, "%s", reason)
	c.logger.Info("panel stopped", zap.Uint64("epoch", epoch), zap.String("reason", reason))
}

func exitReason(st lib.ProcessStatus) string {
	if st.ExitCode == nil {
		return "Server exited"
	}
	return fmt.Sprintf("Server exited with code %d", *st.ExitCode)
}
