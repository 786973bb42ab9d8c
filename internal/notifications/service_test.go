package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"yotdl/internal/config"
	"yotdl/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	svc.DownloadCompleted(context.Background(), "Example", "example.mp4")
}

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCapturingServer(t *testing.T, sink *[]captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
}

func newTestService(t *testing.T, endpoint string) notifications.Service {
	t.Helper()
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = endpoint
	cfg.Notifications.Completed = true
	cfg.Notifications.Failed = true
	cfg.Notifications.Errors = true
	return notifications.NewService(&cfg)
}

func TestDownloadCompletedFormatsMessage(t *testing.T) {
	var got []captured
	server := newCapturingServer(t, &got)
	defer server.Close()

	svc := newTestService(t, server.URL)
	svc.DownloadCompleted(context.Background(), "My Video", "My Video.mp4")

	if len(got) != 1 {
		t.Fatalf("expected one request, got %d", len(got))
	}
	if got[0].title != "Yotdl - Download Complete" {
		t.Fatalf("title = %q", got[0].title)
	}
	if !strings.Contains(got[0].body, "My Video.mp4") {
		t.Fatalf("body missing filename: %q", got[0].body)
	}
	if got[0].tags != "yotdl,download,completed" {
		t.Fatalf("tags = %q", got[0].tags)
	}
}

func TestDownloadFailedUsesHighPriority(t *testing.T) {
	var got []captured
	server := newCapturingServer(t, &got)
	defer server.Close()

	svc := newTestService(t, server.URL)
	svc.DownloadFailed(context.Background(), "Broken", "network timeout")

	if len(got) != 1 {
		t.Fatalf("expected one request, got %d", len(got))
	}
	if got[0].priority != "high" {
		t.Fatalf("priority = %q", got[0].priority)
	}
	if !strings.Contains(got[0].body, "network timeout") {
		t.Fatalf("body missing error: %q", got[0].body)
	}
}

func TestDisabledCategoriesAreSkipped(t *testing.T) {
	var got []captured
	server := newCapturingServer(t, &got)
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Completed = false
	cfg.Notifications.Failed = false
	cfg.Notifications.Errors = false
	svc := notifications.NewService(&cfg)

	svc.DownloadCompleted(context.Background(), "a", "a.mp4")
	svc.DownloadFailed(context.Background(), "b", "boom")
	if err := svc.NotifyError(context.Background(), errors.New("boom"), "reaper"); err != nil {
		t.Fatalf("disabled NotifyError should return nil, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no requests, got %d", len(got))
	}
}

func TestServerErrorSurfacesFromTestNotification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := newTestService(t, server.URL)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error from failing endpoint")
	}
}
