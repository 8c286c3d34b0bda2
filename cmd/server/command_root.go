package main

import (
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/SanjoDeundiak/devpanel/internal/app"
	"github.com/SanjoDeundiak/devpanel/internal/config"
	"github.com/SanjoDeundiak/devpanel/internal/logging"
)

func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "devpaneld",
		Short:         "Dev panel: supervise a dev server, auto-push changes, watch active users",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default devpanel.yaml or $DEVPANEL_CONFIG_PATH)")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newUICmd(&configPath))
	root.AddCommand(newConfigCmd())

	return root
}

// loadApp loads the configuration and wires the panel. With console false the
// logger only writes to the configured file.
func loadApp(configPath string, console bool) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Log
	if !console {
		logCfg = logging.WithoutConsole(logCfg)
	}
	var out io.Writer = os.Stderr
	logger, err := logging.New(logCfg, out)
	if err != nil {
		return nil, err
	}
	if logCfg.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}

// closeApp stops the panel and flushes the logger.
func closeApp(a *app.App) {
	_ = a.Close()
	_ = a.Logger.Sync()
}

// historyReader avoids handing a typed nil to NewPanelServer.
func historyReader(a *app.App) HistoryReader {
	if a.History == nil {
		return nil
	}
	return a.History
}
