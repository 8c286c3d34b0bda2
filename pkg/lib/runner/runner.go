package runner

import (
	"errors"
	"os/exec"
	"sync"
	"time"

	"github.com/SanjoDeundiak/devpanel/pkg/lib"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/stream"
	"go.uber.org/zap"
)

var (
	ErrEmptyCommand   = errors.New("command is required")
	ErrAlreadyRunning = errors.New("process is already running")
	ErrNotRunning     = errors.New("process is not running")
	ErrStopTimeout    = errors.New("process did not exit after kill")
)

const (
	// DefaultStopGrace is how long Stop waits after the terminate request
	// before it escalates to a forced kill.
	DefaultStopGrace = 5 * time.Second

	// DefaultWaitDelay bounds how long output pipes are drained after the
	// process itself exited (a stray grandchild may keep them open).
	DefaultWaitDelay = 2 * time.Second
)

// Supervisor launches one configured command and tracks at most one running
// instance of it at a time.
type Supervisor struct {
	mu      sync.Mutex
	command lib.Command
	current *Run

	logger    *zap.Logger
	stopGrace time.Duration
	waitDelay time.Duration
	env       []string
	onExit    func(*Run)
}

// Run is a single launch of the supervised command.
type Run struct {
	ID      string
	command lib.Command
	cmd     *exec.Cmd
	pid     int
	output  *stream.Log[lib.OutputLine]
	done    chan struct{}

	// status fields
	mu       sync.RWMutex
	state    lib.ProcessState
	exitCode *int
	start    time.Time
	end      *time.Time
}

type Option func(*Supervisor)

func WithLogger(l *zap.Logger) Option {
	return func(s *Supervisor) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithStopGrace(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.stopGrace = d
		}
	}
}

func WithWaitDelay(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.waitDelay = d
		}
	}
}

// WithEnv appends KEY=VALUE pairs to the inherited environment.
func WithEnv(env ...string) Option {
	return func(s *Supervisor) {
		s.env = append(s.env, env...)
	}
}

// WithExitHandler registers fn to be called once per run after the process has
// exited and the handle has been released.
func WithExitHandler(fn func(*Run)) Option {
	return func(s *Supervisor) {
		s.onExit = fn
	}
}

// NewSupervisor creates a Supervisor for command.
func NewSupervisor(command lib.Command, opts ...Option) (*Supervisor, error) {
	if command.Line == "" {
		return nil, ErrEmptyCommand
	}

	s := &Supervisor{
		command:   command,
		logger:    zap.NewNop(),
		stopGrace: DefaultStopGrace,
		waitDelay: DefaultWaitDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Command returns the configured command.
func (s *Supervisor) Command() lib.Command {
	return s.command
}
