package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	apiv1 "github.com/SanjoDeundiak/devpanel/api/v1"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs and pushes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			client, err := dial(readClientEnv(), requestTimeout)
			if err != nil {
				return err
			}

			resp, err := client.History(ctx, limit)
			if err != nil {
				if apiv1.Code(err) == http.StatusNotFound {
					return errors.New("history is disabled on the server")
				}
				return err
			}
			printHistory(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries per table")
	return cmd
}
