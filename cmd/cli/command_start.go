package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the dev server, auto-push and stats polling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			client, err := dial(readClientEnv(), requestTimeout)
			if err != nil {
				return err
			}

			resp, err := client.Start(ctx)
			if err != nil {
				return err
			}
			if !resp.Started {
				fmt.Fprintln(cmd.OutOrStdout(), "Already running")
			}
			printStatusTable(cmd.OutOrStdout(), &resp.Status)
			return nil
		},
	}
	return cmd
}
