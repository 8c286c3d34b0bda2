package panel

import (
	"context"
	"time"

	"github.com/SanjoDeundiak/devpanel/pkg/lib"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/countdown"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/history"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/poller"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/runner"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/vcs"
	"go.uber.org/zap"
)

// runServer spawns the process for epoch and forwards its output to the log.
func (c *Coordinator) runServer(ctx context.Context, epoch uint64) {
	defer c.wg.Done()

	c.mu.Lock()
	if !c.active(epoch) {
		c.mu.Unlock()
		return
	}
	run, err := c.sup.Start()
	c.mu.Unlock()

	if err != nil {
		// The flag stays set; the user has to stop before trying again.
		c.logf(lib.SourcePanel, "Error starting server: %v", err)
		c.updateFor(epoch, func(s *Snapshot) { s.StartError = err.Error() })
		return
	}

	st := run.Status()
	c.updateFor(epoch, func(s *Snapshot) { s.Process = &st })
	c.recordStart(run)

	for line := range run.Lines(ctx, serverLineBuffer) {
		c.logf(lib.SourceServer, "[Server] %s", line.Text)
	}

	select {
	case <-run.Done():
	case <-ctx.Done():
		return
	}

	final := run.Status()
	c.updateFor(epoch, func(s *Snapshot) { s.Process = &final })
	c.endEpoch(epoch, exitReason(final))
}

// runCountdown drives the auto-push timer for epoch.
func (c *Coordinator) runCountdown(ctx context.Context, epoch uint64) {
	defer c.wg.Done()

	timer, err := countdown.New(c.cfg.PushPeriod, c.autoPush,
		countdown.WithTick(c.cfg.Tick),
		countdown.WithLogger(c.logger.Named("countdown")),
		countdown.WithPublisher(func(remaining int) {
			c.updateFor(epoch, func(s *Snapshot) { s.Remaining = remaining })
		}),
	)
	if err != nil {
		c.logger.Error("invalid push period", zap.Error(err))
		return
	}
	timer.Run(ctx, func() bool { return c.active(epoch) })
}

// runPoller refreshes connectivity for epoch.
func (c *Coordinator) runPoller(ctx context.Context, epoch uint64) {
	defer c.wg.Done()

	if c.poller == nil {
		return
	}
	c.poller.Run(ctx, func() bool { return c.active(epoch) }, func(status lib.Connectivity) {
		c.updateFor(epoch, func(s *Snapshot) { s.Connectivity = status })
	}, func(err *poller.PollError) {
		if c.active(epoch) {
			c.logf(lib.SourcePoll, "Polling error: %v", err)
		}
	})
}

// autoPush is the countdown action.
func (c *Coordinator) autoPush(ctx context.Context) error {
	c.logf(lib.SourceGit, "--- AUTO-GIT STARTING ---")

	if c.pusher == nil || !c.cfg.AutoPush {
		c.logf(lib.SourceGit, "Auto-push disabled, skipping")
		return nil
	}

	started := time.Now()
	res, err := c.pusher.Push(ctx)
	outcome := PushOutcome{
		At:        started,
		Committed: res.Committed,
		Success:   err == nil,
		Duration:  time.Since(started),
	}
	if err != nil {
		outcome.Detail = vcs.FailureText(err)
		c.logf(lib.SourceGit, "Git Push Failed: %s", outcome.Detail)
	} else {
		c.logf(lib.SourceGit, "Git Push Successful")
	}

	c.update(func(s *Snapshot) { s.LastPush = &outcome })
	c.recordPush(outcome)
	return err
}

func (c *Coordinator) recordStart(run *runner.Run) {
	if c.history == nil {
		return
	}
	st := run.Status()
	err := c.history.RecordRun(context.Background(), history.RunRecord{
		ID:        run.ID,
		Command:   run.Command().Line,
		PID:       st.PID,
		StartedAt: st.StartTime,
	})
	if err != nil {
		c.logger.Warn("failed to record run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

// recordExit is the supervisor exit handler.
func (c *Coordinator) recordExit(run *runner.Run) {
	if c.history == nil {
		return
	}
	st := run.Status()
	err := c.history.FinishRun(context.Background(), history.RunRecord{
		ID:        run.ID,
		Command:   run.Command().Line,
		PID:       st.PID,
		StartedAt: st.StartTime,
		EndedAt:   st.EndTime,
		ExitCode:  st.ExitCode,
	})
	if err != nil {
		c.logger.Warn("failed to finish run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func (c *Coordinator) recordPush(o PushOutcome) {
	if c.history == nil {
		return
	}
	_, err := c.history.RecordPush(context.Background(), history.PushRecord{
		At:        o.At,
		Committed: o.Committed,
		Success:   o.Success,
		Detail:    o.Detail,
	})
	if err != nil {
		c.logger.Warn("failed to record push", zap.Error(err))
	}
}
