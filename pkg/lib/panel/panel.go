// Package panel coordinates the lifecycle of the dev panel: the supervised
// server process, the auto-push countdown and the stats poller all start and
// stop together behind a single running flag.
package panel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SanjoDeundiak/devpanel/pkg/lib"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/countdown"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/history"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/poller"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/runner"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/stream"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/vcs"
	"go.uber.org/zap"
)

const (
	DefaultPushPeriod = 600
	serverLineBuffer  = 64
)

// Config holds the coordinator settings that are not collaborators.
type Config struct {
	Command    lib.Command
	PushPeriod int // ticks between pushes
	Tick       time.Duration
	StopGrace  time.Duration
	// AutoPush disables the push action while keeping the countdown visible.
	AutoPush bool
}

// Pusher performs one auto-push cycle.
type Pusher interface {
	Push(ctx context.Context) (vcs.PushResult, error)
}

// Recorder persists run and push history.
type Recorder interface {
	RecordRun(ctx context.Context, r history.RunRecord) error
	FinishRun(ctx context.Context, r history.RunRecord) error
	RecordPush(ctx context.Context, p history.PushRecord) (int64, error)
}

// Coordinator owns the running flag and the three actors bound to it.
type Coordinator struct {
	cfg    Config
	logger *zap.Logger

	sup     *runner.Supervisor
	pusher  Pusher
	poller  *poller.Poller
	history Recorder

	// mu serializes lifecycle transitions and the process spawn.
	mu      sync.Mutex
	running atomic.Bool
	epoch   atomic.Uint64
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	stateMu sync.RWMutex
	state   Snapshot

	snapshots *stream.Broadcaster[Snapshot]
	logs      *stream.Log[lib.LogEntry]
	logMu     sync.Mutex // keeps Seq in append order
	logSeq    uint64

	closeOnce sync.Once
}

type Option func(*Coordinator)

func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPusher sets the auto-push action. Without a pusher the countdown still
// runs and each expiry only logs that pushing is disabled.
func WithPusher(p Pusher) Option {
	return func(c *Coordinator) {
		c.pusher = p
	}
}

// WithPoller sets the stats poller. Without one, connectivity stays at
// Connecting while running.
func WithPoller(p *poller.Poller) Option {
	return func(c *Coordinator) {
		c.poller = p
	}
}

func WithHistory(r Recorder) Option {
	return func(c *Coordinator) {
		c.history = r
	}
}

// New creates an idle Coordinator.
func New(cfg Config, opts ...Option) (*Coordinator, error) {
	if cfg.PushPeriod <= 0 {
		cfg.PushPeriod = DefaultPushPeriod
	}
	if cfg.Tick <= 0 {
		cfg.Tick = countdown.DefaultTick
	}

	c := &Coordinator{
		cfg:       cfg,
		logger:    zap.NewNop(),
		snapshots: stream.RunNewBroadcaster[Snapshot](),
		logs:      stream.RunNewLog[lib.LogEntry](),
	}
	for _, opt := range opts {
		opt(c)
	}

	sup, err := runner.NewSupervisor(cfg.Command,
		runner.WithLogger(c.logger.Named("runner")),
		runner.WithStopGrace(cfg.StopGrace),
		runner.WithExitHandler(c.recordExit),
	)
	if err != nil {
		c.snapshots.Stop()
		c.logs.Stop()
		return nil, err
	}
	c.sup = sup

	c.state = Snapshot{
		Connectivity: lib.OfflineStatus(),
		Remaining:    -1,
		Period:       cfg.PushPeriod,
		Tick:         cfg.Tick,
		Command:      cfg.Command.Line,
	}
	return c, nil
}

// Running reports the lifecycle flag.
func (c *Coordinator) Running() bool {
	return c.running.Load()
}

// Command returns the supervised command.
func (c *Coordinator) Command() lib.Command {
	return c.cfg.Command
}

// Close stops the coordinator if needed, waits for every actor and releases
// the snapshot and log streams.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		c.Stop()
		c.Wait()
		c.snapshots.Stop()
		c.logs.Stop()
	})
}

func (c *Coordinator) active(epoch uint64) bool {
	return c.running.Load() && c.epoch.Load() == epoch
}

func isNotRunning(err error) bool {
	return errors.Is(err, runner.ErrNotRunning)
}
