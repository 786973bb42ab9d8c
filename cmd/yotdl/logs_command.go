package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"yotdl/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon log output",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logPath := filepath.Join(cfg.Paths.LogDir, "yotdld.log")
			stdout := cmd.OutOrStdout()

			last, offset, err := logs.Last(logPath, lines)
			if err != nil {
				return err
			}
			for _, line := range last {
				fmt.Fprintln(stdout, line)
			}
			if !follow {
				return nil
			}

			followCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ticker := time.NewTicker(250 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-followCtx.Done():
					return nil
				case <-ticker.C:
				}
				fresh, newOffset, err := logs.ReadFrom(logPath, offset)
				if err != nil {
					return err
				}
				for _, line := range fresh {
					fmt.Fprintln(stdout, line)
				}
				offset = newOffset
			}
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep streaming new log lines")
	return cmd
}
