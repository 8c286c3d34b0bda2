package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newStopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the dev server and all automation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			client, err := dial(readClientEnv(), requestTimeout)
			if err != nil {
				return err
			}

			resp, err := client.Stop(ctx)
			if err != nil {
				return forbidden(err, "Forbidden. Only the client that started the panel can stop it.")
			}
			if !resp.Stopped {
				fmt.Fprintln(cmd.OutOrStdout(), "Not running")
			}
			printStatusTable(cmd.OutOrStdout(), &resp.Status)
			return nil
		},
	}
	return cmd
}
