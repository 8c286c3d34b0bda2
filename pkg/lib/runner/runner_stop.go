package runner

import (
	"time"

	"github.com/SanjoDeundiak/devpanel/pkg/lib"
	"go.uber.org/zap"
)

// Stop requests termination of the tracked process tree and returns the final
// status. Termination is best effort: descendants that left the process group
// are not guaranteed to die. When the process ignores the request for longer
// than the stop grace, it is killed.
func (s *Supervisor) Stop() (lib.ProcessStatus, error) {
	s.mu.Lock()
	run := s.current
	s.mu.Unlock()

	if run == nil {
		return lib.ProcessStatus{}, ErrNotRunning
	}

	if run.HasExited() {
		return run.Status(), nil
	}

	s.logger.Info("terminating process", zap.String("run_id", run.ID), zap.Int("pid", run.pid))
	if err := terminateTree(run.pid); err != nil {
		s.logger.Warn("terminate request failed", zap.String("run_id", run.ID), zap.Error(err))
	}

	select {
	case <-run.Done():
		return run.Status(), nil
	case <-time.After(s.stopGrace):
	}

	s.logger.Warn("process ignored terminate request, killing",
		zap.String("run_id", run.ID), zap.Duration("grace", s.stopGrace))
	if err := killTree(run.pid); err != nil {
		s.logger.Warn("kill request failed", zap.String("run_id", run.ID), zap.Error(err))
	}

	select {
	case <-run.Done():
		return run.Status(), nil
	case <-time.After(s.waitDelay + time.Second):
	}

	return run.Status(), ErrStopTimeout
}
