package runner

import (
	"fmt"
	"os"
	"time"

	"github.com/SanjoDeundiak/devpanel/pkg/lib"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/stream"
	"go.uber.org/zap"
)

// Start launches the configured command through the platform shell.
// It returns ErrAlreadyRunning while a previous run is still tracked.
func (s *Supervisor) Start() (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return nil, ErrAlreadyRunning
	}

	runID := lib.NewID()

	cmd := shellCommand(s.command.Line)
	cmd.Dir = s.command.Dir
	if len(s.env) > 0 {
		cmd.Env = append(os.Environ(), s.env...)
	}
	setProcAttr(cmd)
	cmd.WaitDelay = s.waitDelay

	output := stream.RunNewLog[lib.OutputLine]()
	stdout := stream.NewLineWriter(func(line string) {
		output.Append(lib.OutputLine{Stream: lib.Stdout, Text: line})
	})
	stderr := stream.NewLineWriter(func(line string) {
		output.Append(lib.OutputLine{Stream: lib.Stderr, Text: line})
	})

	// cmd.Stdin is left nil, so it will use /dev/null
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	run := &Run{
		ID:      runID,
		command: s.command,
		cmd:     cmd,
		output:  output,
		done:    make(chan struct{}),
		state:   lib.ProcessStateRunning,
		start:   time.Now(),
	}

	s.logger.Info("starting process",
		zap.String("run_id", runID),
		zap.String("command", s.command.Line),
		zap.String("dir", s.command.Dir))
	if err := cmd.Start(); err != nil {
		output.Stop()
		s.logger.Error("failed to start process", zap.String("run_id", runID), zap.Error(err))
		return nil, fmt.Errorf("start %q: %w", s.command.Line, err)
	}

	run.pid = cmd.Process.Pid
	s.current = run

	go s.wait(run, stdout, stderr)

	return run, nil
}

// wait records the exit status and releases the handle.
func (s *Supervisor) wait(run *Run, writers ...*stream.LineWriter) {
	err := run.cmd.Wait()
	for _, w := range writers {
		w.Flush()
	}

	run.mu.Lock()
	if state := run.cmd.ProcessState; state != nil {
		code := state.ExitCode()
		run.exitCode = &code
	}
	now := time.Now()
	run.end = &now
	run.state = lib.ProcessStateStopped
	run.mu.Unlock()

	if err != nil {
		s.logger.Info("process finished with error", zap.String("run_id", run.ID), zap.Error(err))
	} else {
		s.logger.Info("process finished", zap.String("run_id", run.ID))
	}

	run.output.Stop()

	s.mu.Lock()
	if s.current == run {
		s.current = nil
	}
	s.mu.Unlock()

	close(run.done)

	if s.onExit != nil {
		s.onExit(run)
	}
}
