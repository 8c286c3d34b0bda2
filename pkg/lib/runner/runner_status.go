package runner

import (
	"github.com/SanjoDeundiak/devpanel/pkg/lib"
)

// Current returns the tracked run, or nil when nothing is running.
func (s *Supervisor) Current() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Status returns the status of the tracked run. The boolean is false when no
// process handle exists.
func (s *Supervisor) Status() (lib.ProcessStatus, bool) {
	run := s.Current()
	if run == nil {
		return lib.ProcessStatus{}, false
	}
	return run.Status(), true
}

// PID returns the OS process ID of the run.
func (run *Run) PID() int {
	return run.pid
}

// Command returns the command the run was started with.
func (run *Run) Command() lib.Command {
	return run.command
}

// Done is closed once the process has exited and its status is final.
func (run *Run) Done() <-chan struct{} {
	return run.done
}

// HasExited reports whether Done is closed.
func (run *Run) HasExited() bool {
	select {
	case <-run.done:
		return true
	default:
		return false
	}
}

// Status returns a copy of the run's current status.
func (run *Run) Status() lib.ProcessStatus {
	run.mu.RLock()
	defer run.mu.RUnlock()

	st := lib.ProcessStatus{
		RunID:     run.ID,
		PID:       run.pid,
		State:     run.state,
		StartTime: run.start,
	}
	if run.exitCode != nil {
		st.ExitCode = new(int)
		*st.ExitCode = *run.exitCode
	}
	if run.end != nil {
		t := *run.end
		st.EndTime = &t
	}
	return st
}
