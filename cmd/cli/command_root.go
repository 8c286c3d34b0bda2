package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	apiv1 "github.com/SanjoDeundiak/devpanel/api/v1"
)

const requestTimeout = 10 * time.Second

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dpn",
		Short:         "Dev panel CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newStartCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newStopCmd())
	root.AddCommand(newLogsCmd())
	root.AddCommand(newHistoryCmd())

	return root
}

// forbidden prints msg and swallows err when the server rejected the caller.
func forbidden(err error, msg string) error {
	if apiv1.Code(err) == http.StatusForbidden {
		_, _ = fmt.Fprintln(os.Stderr, msg)
		return nil
	}
	return err
}
