package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"yotdl/internal/events"
	"yotdl/internal/ipc"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "watch [ID]",
		Short: "Stream live download events from the daemon",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			downloadID := ""
			if len(args) == 1 {
				downloadID = strings.TrimSpace(args[0])
			}

			var apiAddr string
			err := ctx.withClient(func(client *ipc.Client) error {
				statusResp, err := client.Status()
				if err != nil {
					return fmt.Errorf("query daemon status: %w", err)
				}
				apiAddr = strings.TrimSpace(statusResp.APIAddr)
				return nil
			})
			if err != nil {
				return err
			}
			if apiAddr == "" {
				return errors.New("daemon did not report an API address")
			}

			watchCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return streamEvents(watchCtx, cmd.OutOrStdout(), apiAddr, downloadID, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw event payloads as JSON lines")
	return cmd
}

func streamEvents(ctx context.Context, out io.Writer, apiAddr, downloadID string, asJSON bool) error {
	endpoint := url.URL{Scheme: "http", Host: apiAddr, Path: "/api/events"}
	if downloadID != "" {
		query := endpoint.Query()
		query.Set("download", downloadID)
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return fmt.Errorf("connect to event stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("event stream returned %s", resp.Status)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	var data string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			if data != "" {
				printEvent(out, data, asJSON)
				data = ""
			}
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("read event stream: %w", err)
	}
	return nil
}

func printEvent(out io.Writer, data string, asJSON bool) {
	if asJSON {
		fmt.Fprintln(out, data)
		return
	}

	var event events.Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		fmt.Fprintln(out, data)
		return
	}
	fmt.Fprintln(out, formatEvent(event))
}

func formatEvent(event events.Event) string {
	var b strings.Builder
	b.WriteString(string(event.Type))
	if event.DownloadID != "" {
		b.WriteString(" ")
		b.WriteString(shortID(event.DownloadID))
	}
	switch event.Type {
	case events.TypeProgress:
		fmt.Fprintf(&b, " %.1f%%", event.Percent)
		if event.Speed != "" {
			b.WriteString(" at " + event.Speed)
		}
		if event.ETA != "" {
			b.WriteString(" ETA " + event.ETA)
		}
	case events.TypeCompleted:
		if event.Filename != "" {
			b.WriteString(" -> " + event.Filename)
		}
	case events.TypeFailed:
		if event.Error != "" {
			b.WriteString(": " + event.Error)
		}
	}
	return b.String()
}
