package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"yotdl/internal/ipc"
)

func newCancelCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a queued or running download",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Cancel(id)
				if err != nil {
					return fmt.Errorf("cancel download: %w", err)
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled download %s\n", resp.Download.ID)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the cancelled download as JSON")
	return cmd
}
