package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SanjoDeundiak/devpanel/internal/dashboard"
)

func newUICmd(configPath *string) *cobra.Command {
	var withAPI bool

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the terminal dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// The dashboard owns the terminal; logs only go to the log file.
			a, err := loadApp(*configPath, false)
			if err != nil {
				return err
			}
			defer closeApp(a)

			if withAPI {
				apiCtx, cancel := context.WithCancel(ctx)
				defer cancel()
				ps := NewPanelServer(a.Coordinator, historyReader(a), a.Logger.Named("api"))
				go func() {
					if err := serveAPI(apiCtx, a.Logger, ps, a.Config.API); err != nil {
						a.Logger.Error("control API failed", zap.Error(err))
					}
				}()
			}

			return dashboard.Run(ctx, a.Coordinator)
		},
	}
	cmd.Flags().BoolVar(&withAPI, "api", false, "also serve the control API")
	return cmd
}
