package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"yotdl/internal/ipc"
)

func newFilesCommand(ctx *commandContext) *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Manage completed downloads on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilesList(ctx, cmd, false)
		},
	}

	var listJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List completed downloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilesList(ctx, cmd, listJSON)
		},
	}
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Emit files as JSON")

	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a completed download",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.DeleteFile(name); err != nil {
					return fmt.Errorf("delete file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", name)
				return nil
			})
		},
	}

	filesCmd.AddCommand(listCmd)
	filesCmd.AddCommand(deleteCmd)
	return filesCmd
}

func runFilesList(ctx *commandContext, cmd *cobra.Command, asJSON bool) error {
	return ctx.withClient(func(client *ipc.Client) error {
		resp, err := client.Files()
		if err != nil {
			return fmt.Errorf("list files: %w", err)
		}
		if asJSON {
			return writeJSON(cmd, resp)
		}

		stdout := cmd.OutOrStdout()
		if len(resp.Files) == 0 {
			fmt.Fprintln(stdout, "No completed downloads")
			return nil
		}

		rows := make([][]string, 0, len(resp.Files))
		for _, file := range resp.Files {
			rows = append(rows, []string{file.Name, file.SizeHuman, file.Modified})
		}
		table := renderTable(
			[]string{"Name", "Size", "Modified"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignLeft},
		)
		fmt.Fprintln(stdout, table)
		return nil
	})
}
