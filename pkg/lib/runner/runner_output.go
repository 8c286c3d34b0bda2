package runner

import (
	"context"

	"github.com/SanjoDeundiak/devpanel/pkg/lib"
)

// Lines subscribes to the run's output. Each subscription replays the run from
// its first line and follows it until the process exits or ctx is done.
func (run *Run) Lines(ctx context.Context, capacity int) <-chan lib.OutputLine {
	return run.output.Subscribe(ctx, capacity)
}

// Output returns the lines captured so far.
func (run *Run) Output() []lib.OutputLine {
	return run.output.Snapshot()
}

// Lines subscribes to the output of the currently tracked run.
func (s *Supervisor) Lines(ctx context.Context, capacity int) (<-chan lib.OutputLine, error) {
	run := s.Current()
	if run == nil {
		return nil, ErrNotRunning
	}
	return run.Lines(ctx, capacity), nil
}
