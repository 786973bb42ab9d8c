package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"yotdl/internal/ipc"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show details for a download",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Describe(id)
				if err != nil {
					return fmt.Errorf("describe download: %w", err)
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				renderDownload(cmd, resp.Download)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the download as JSON")
	return cmd
}

func renderDownload(cmd *cobra.Command, d ipc.Download) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader("Download "+shortID(d.ID), colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, renderStatusLine("ID", statusInfo, d.ID, colorize))
	fmt.Fprintln(stdout, renderStatusLine("URL", statusInfo, d.URL, colorize))
	if d.Format != "" {
		fmt.Fprintln(stdout, renderStatusLine("Format", statusInfo, d.Format, colorize))
	}
	if d.Title != "" {
		fmt.Fprintln(stdout, renderStatusLine("Title", statusInfo, d.Title, colorize))
	}
	fmt.Fprintln(stdout, renderStatusLine("Client", statusInfo, d.Client, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Status", downloadStatusKind(d.Status), d.Status, colorize))
	if progress := describeProgress(d); progress != "" {
		fmt.Fprintln(stdout, renderStatusLine("Progress", statusInfo, progress, colorize))
	}
	if d.Filename != "" {
		fmt.Fprintln(stdout, renderStatusLine("File", statusOK, d.Filename, colorize))
	}
	if d.Error != "" {
		fmt.Fprintln(stdout, renderStatusLine("Error", statusError, d.Error, colorize))
	}
	if d.CreatedAt != "" {
		fmt.Fprintln(stdout, renderStatusLine("Created", statusInfo, d.CreatedAt, colorize))
	}
	if d.CompletedAt != "" {
		fmt.Fprintln(stdout, renderStatusLine("Finished", statusInfo, d.CompletedAt, colorize))
	}
}

func downloadStatusKind(status string) statusKind {
	switch status {
	case "completed":
		return statusOK
	case "failed":
		return statusError
	case "cancelled":
		return statusWarn
	default:
		return statusInfo
	}
}

func describeProgress(d ipc.Download) string {
	parts := make([]string, 0, 4)
	if text := formatPercent(d.Status, d.Progress.Percent); text != "" {
		parts = append(parts, text)
	}
	if d.Progress.TotalSize != "" {
		parts = append(parts, "of "+d.Progress.TotalSize)
	}
	if d.Progress.Speed != "" {
		parts = append(parts, "at "+d.Progress.Speed)
	}
	if d.Progress.ETA != "" {
		parts = append(parts, "ETA "+d.Progress.ETA)
	}
	return strings.Join(parts, " ")
}
