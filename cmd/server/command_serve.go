package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SanjoDeundiak/devpanel/internal/config"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	var autostart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the control API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(*configPath, true)
			if err != nil {
				return err
			}
			defer closeApp(a)

			ps := NewPanelServer(a.Coordinator, historyReader(a), a.Logger.Named("api"))
			if autostart {
				a.Coordinator.Start()
			}
			return serveAPI(ctx, a.Logger, ps, a.Config.API)
		},
	}
	cmd.Flags().BoolVar(&autostart, "start", false, "start the panel immediately")
	return cmd
}

// serveAPI runs the control API until ctx is done.
func serveAPI(ctx context.Context, logger *zap.Logger, ps *PanelServer, cfg config.APIConfig) error {
	srv, err := NewHTTPServer(cfg, ps.Router())
	if err != nil {
		return err
	}
	logger.Info("control API listening", zap.String("addr", srv.Addr().String()), zap.Bool("tls", cfg.TLS.Enabled))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down control API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
