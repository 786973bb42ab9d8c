package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"yotdl/internal/config"
	"yotdl/internal/ipc"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var format string
	var cookiesFile string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "submit URL",
		Short: "Queue a media URL for download",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := strings.TrimSpace(args[0])
			if url == "" {
				return fmt.Errorf("download URL is required")
			}

			cookies, err := readCookiesFile(cookiesFile)
			if err != nil {
				return err
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Submit(url, format, cookies)
				if err != nil {
					return fmt.Errorf("submit download: %w", err)
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				d := resp.Download
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Queued download %s\n", d.ID)
				fmt.Fprintf(stdout, "  URL:    %s\n", d.URL)
				if d.Format != "" {
					fmt.Fprintf(stdout, "  Format: %s\n", d.Format)
				}
				fmt.Fprintf(stdout, "  Status: %s\n", d.Status)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "yt-dlp format selector")
	cmd.Flags().StringVar(&cookiesFile, "cookies-file", "", "Path to a Netscape cookies file to use for the download")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the accepted download as JSON")
	return cmd
}

func readCookiesFile(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("resolve cookies file: %w", err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return "", fmt.Errorf("read cookies file: %w", err)
	}
	return string(data), nil
}
