package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"yotdl/internal/daemonctl"
	"yotdl/internal/ipc"
)

const daemonBinaryName = "yotdld"

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the yotdl daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonLaunchOptions(ctx),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			switch result.State {
			case daemonctl.StartStateStarted:
				if result.PID > 0 {
					fmt.Fprintf(stdout, "Daemon started (pid %d)\n", result.PID)
				} else {
					fmt.Fprintln(stdout, "Daemon started")
				}
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon already running")
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the yotdl daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if !result.StopAcknowledged {
				fmt.Fprintln(stdout, "Stop request sent")
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Killed daemon process (pid %d)\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the yotdl daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			_, err := daemonctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), 5*time.Second)
			if err != nil && !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				return err
			}

			exe, err := daemonExecutable()
			if err != nil {
				return err
			}
			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonLaunchOptions(ctx),
				10*time.Second,
			)
			if err != nil {
				return err
			}
			if result.PID > 0 {
				fmt.Fprintf(stdout, "Daemon restarted (pid %d)\n", result.PID)
			} else {
				fmt.Fprintln(stdout, "Daemon restarted")
			}
			return nil
		},
	}

	var statusJSON bool
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and download status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				statusResp, err := client.Status()
				if err != nil {
					return fmt.Errorf("query daemon status: %w", err)
				}
				if statusJSON {
					return writeJSON(cmd, statusResp)
				}
				renderStatus(cmd, statusResp)
				return nil
			})
		},
	}
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Emit status as JSON")

	return []*cobra.Command{startCmd, stopCmd, restartCmd, statusCmd}
}

func renderStatus(cmd *cobra.Command, statusResp *ipc.StatusResponse) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(stdout, line)
	}
	runningKind := statusError
	runningText := "Stopped"
	if statusResp.Running {
		runningKind = statusOK
		runningText = fmt.Sprintf("Running (pid %d)", statusResp.PID)
	}
	fmt.Fprintln(stdout, renderStatusLine("State", runningKind, runningText, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Download dir", statusInfo, statusResp.DownloadDir, colorize))
	if statusResp.APIAddr != "" {
		fmt.Fprintln(stdout, renderStatusLine("API", statusInfo, statusResp.APIAddr, colorize))
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Dependencies", colorize) {
		fmt.Fprintln(stdout, line)
	}
	for _, dep := range statusResp.Dependencies {
		kind := statusOK
		detail := dep.Detail
		if !dep.Available {
			kind = statusError
			if dep.Optional {
				kind = statusWarn
			}
		}
		fmt.Fprintln(stdout, renderStatusLine(dep.Name, kind, detail, colorize))
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Downloads", colorize) {
		fmt.Fprintln(stdout, line)
	}
	stats := statusResp.Stats
	fmt.Fprintln(stdout, renderStatusLine("Active", statusInfo, strconv.Itoa(stats.ActiveDownloads), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Tracked", statusInfo, strconv.Itoa(stats.TrackedJobs), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Library files", statusInfo, strconv.Itoa(stats.LibraryFiles), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Subscribers", statusInfo, strconv.Itoa(stats.Subscribers), colorize))

	rows := buildStatusCountRows(stats.StatusCounts)
	if len(rows) > 0 {
		fmt.Fprintln(stdout)
		table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
		fmt.Fprintln(stdout, table)
	}
}

func buildStatusCountRows(counts map[string]int) [][]string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, strconv.Itoa(counts[key])})
	}
	return rows
}

func daemonLaunchOptions(ctx *commandContext) daemonctl.LaunchOptions {
	return daemonctl.LaunchOptions{
		SocketPath: ctx.socketPath(),
		ConfigPath: ctx.configPath(),
	}
}

// daemonExecutable locates the yotdld binary, preferring one installed next
// to the CLI.
func daemonExecutable() (string, error) {
	self, err := os.Executable()
	if err == nil {
		sibling := filepath.Join(filepath.Dir(self), daemonBinaryName)
		if info, statErr := os.Stat(sibling); statErr == nil && !info.IsDir() {
			return sibling, nil
		}
	}
	path, err := exec.LookPath(daemonBinaryName)
	if err != nil {
		return "", fmt.Errorf("locate %s binary: %w", daemonBinaryName, err)
	}
	return path, nil
}
