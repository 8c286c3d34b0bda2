// Package app assembles a panel coordinator and its collaborators from the
// loaded configuration.
package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/SanjoDeundiak/devpanel/internal/config"
	"github.com/SanjoDeundiak/devpanel/pkg/lib"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/history"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/panel"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/poller"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/stream"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/vcs"
)

// App is a wired dev panel.
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Coordinator *panel.Coordinator
	// History is nil when history is disabled.
	History *history.Store
}

// New wires the coordinator described by cfg. The caller owns logger.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	stream.SetLogger(logger)

	a := &App{Config: cfg, Logger: logger}

	opts := []panel.Option{
		panel.WithLogger(logger.Named("panel")),
		panel.WithPoller(poller.New(cfg.Stats.URL,
			poller.WithField(cfg.Stats.Field),
			poller.WithTimeout(cfg.Stats.Timeout),
			poller.WithPeriod(cfg.Stats.Interval),
			poller.WithClient(&http.Client{}),
			poller.WithLogger(logger.Named("poller")),
		)),
	}

	if cfg.Automation.Enabled {
		repo := vcs.Open(cfg.Automation.RepoDir, logger.Named("git"))
		if err := repo.Verify(context.Background()); err != nil {
			// Pushes will fail and be logged each cycle; the panel still runs.
			logger.Warn("auto-push repository check failed", zap.String("dir", repo.Dir()), zap.Error(err))
		}
		opts = append(opts, panel.WithPusher(&vcs.AutoPusher{
			Repo:    repo,
			Message: cfg.Automation.CommitMessage,
			Remote:  cfg.Automation.Remote,
			Branch:  cfg.Automation.Branch,
		}))
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		a.History = store
		opts = append(opts, panel.WithHistory(store))
	}

	coord, err := panel.New(panel.Config{
		Command:    lib.Command{Line: cfg.Server.Command, Dir: cfg.Server.Dir},
		PushPeriod: cfg.Automation.PushPeriod(),
		Tick:       cfg.Automation.Tick,
		StopGrace:  cfg.Server.StopGrace,
		AutoPush:   cfg.Automation.Enabled,
	}, opts...)
	if err != nil {
		if a.History != nil {
			_ = a.History.Close()
		}
		return nil, err
	}
	a.Coordinator = coord
	return a, nil
}

// Close stops the panel, waits for its actors and closes the history store.
func (a *App) Close() error {
	a.Coordinator.Close()
	if a.History != nil {
		return a.History.Close()
	}
	return nil
}
