package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"yotdl/internal/config"
)

const userAgent = "Yotdl-Go/0.1.0"

// Service defines the notification surface exposed to the downloader and
// daemon. Delivery failures are swallowed for lifecycle notifications and
// surfaced only where the caller can act on them.
type Service interface {
	DownloadCompleted(ctx context.Context, title, filename string)
	DownloadFailed(ctx context.Context, title, errMessage string)
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:        topic,
		client:          &http.Client{Timeout: timeout},
		notifyCompleted: cfg.Notifications.Completed,
		notifyFailed:    cfg.Notifications.Failed,
		notifyErrors:    cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint        string
	client          *http.Client
	notifyCompleted bool
	notifyFailed    bool
	notifyErrors    bool
}

func (n *ntfyService) DownloadCompleted(ctx context.Context, title, filename string) {
	if !n.notifyCompleted {
		return
	}
	title = strings.TrimSpace(title)
	filename = strings.TrimSpace(filename)
	message := fmt.Sprintf("Download complete: %s", title)
	if filename != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, filename)
	}
	_ = n.send(ctx, payload{
		title:   "Yotdl - Download Complete",
		message: message,
		tags:    []string{"yotdl", "download", "completed"},
	})
}

func (n *ntfyService) DownloadFailed(ctx context.Context, title, errMessage string) {
	if !n.notifyFailed {
		return
	}
	title = strings.TrimSpace(title)
	errMessage = strings.TrimSpace(errMessage)
	if errMessage == "" {
		errMessage = "unknown error"
	}
	_ = n.send(ctx, payload{
		title:    "Yotdl - Download Failed",
		message:  fmt.Sprintf("Download failed: %s\n%s", title, errMessage),
		tags:     []string{"yotdl", "download", "failed"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.notifyErrors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	return n.send(ctx, payload{
		title:    "Yotdl - Error",
		message:  builder.String(),
		tags:     []string{"yotdl", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Yotdl - Test",
		message:  "Notification system test",
		tags:     []string{"yotdl", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) DownloadCompleted(context.Context, string, string) {}
func (noopService) DownloadFailed(context.Context, string, string)   {}
func (noopService) NotifyError(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }
