package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	apiv1 "github.com/SanjoDeundiak/devpanel/api/v1"
)

func newLogsCmd() *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the panel log from the beginning",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			// Follow mode keeps the response open, so no client timeout.
			timeout := requestTimeout
			if follow {
				timeout = 0
			} else {
				var tcancel context.CancelFunc
				ctx, tcancel = context.WithTimeout(ctx, requestTimeout)
				defer tcancel()
			}

			client, err := dial(readClientEnv(), timeout)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			return client.Logs(ctx, follow, func(e apiv1.LogEntry) error {
				printLogEntry(out, e)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep streaming new entries")
	return cmd
}
