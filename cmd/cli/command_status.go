package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show panel status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			client, err := dial(readClientEnv(), requestTimeout)
			if err != nil {
				return err
			}

			resp, err := client.Status(ctx)
			if err != nil {
				return err
			}
			printStatusTable(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	return cmd
}
