package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"yotdl/internal/ipc"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked downloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.List(statuses)
				if err != nil {
					return fmt.Errorf("list downloads: %w", err)
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}

				stdout := cmd.OutOrStdout()
				if len(resp.Downloads) == 0 {
					fmt.Fprintln(stdout, "No downloads tracked")
					return nil
				}

				rows := make([][]string, 0, len(resp.Downloads))
				for _, d := range resp.Downloads {
					rows = append(rows, []string{
						shortID(d.ID),
						d.Status,
						formatPercent(d.Status, d.Progress.Percent),
						d.Progress.Speed,
						d.Progress.ETA,
						downloadLabel(d),
					})
				}
				table := renderTable(
					[]string{"ID", "Status", "Progress", "Speed", "ETA", "Title"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				)
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (repeatable: queued, downloading, completed, failed, cancelled)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit downloads as JSON")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatPercent(status string, percent float64) string {
	switch status {
	case "completed":
		return "100%"
	case "queued":
		return ""
	}
	if percent <= 0 {
		return ""
	}
	return fmt.Sprintf("%.1f%%", percent)
}

func downloadLabel(d ipc.Download) string {
	label := strings.TrimSpace(d.Title)
	if label == "" {
		label = d.URL
	}
	return truncateLabel(label, 60)
}

func truncateLabel(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
