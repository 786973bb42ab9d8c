package main

import (
	"strings"
	"testing"

	"yotdl/internal/events"
	"yotdl/internal/ipc"
)

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Fatalf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("shortID = %q", got)
	}
}

func TestFormatPercent(t *testing.T) {
	cases := []struct {
		status  string
		percent float64
		want    string
	}{
		{"completed", 42.0, "100%"},
		{"queued", 0, ""},
		{"downloading", 0, ""},
		{"downloading", 37.5, "37.5%"},
		{"failed", 12.25, "12.2%"},
	}
	for _, tc := range cases {
		if got := formatPercent(tc.status, tc.percent); got != tc.want {
			t.Errorf("formatPercent(%q, %v) = %q, want %q", tc.status, tc.percent, got, tc.want)
		}
	}
}

func TestDownloadLabelPrefersTitle(t *testing.T) {
	d := ipc.Download{URL: "https://example.com/v", Title: "A Video"}
	if got := downloadLabel(d); got != "A Video" {
		t.Fatalf("downloadLabel = %q", got)
	}
	d.Title = ""
	if got := downloadLabel(d); got != "https://example.com/v" {
		t.Fatalf("downloadLabel = %q", got)
	}
}

func TestTruncateLabel(t *testing.T) {
	if got := truncateLabel("short", 10); got != "short" {
		t.Fatalf("truncateLabel = %q", got)
	}
	got := truncateLabel("abcdefghij", 8)
	if got != "abcde..." {
		t.Fatalf("truncateLabel = %q", got)
	}
}

func TestFormatEvent(t *testing.T) {
	progress := events.Event{
		Type:       events.TypeProgress,
		DownloadID: "0123456789abcdef",
		Percent:    12.5,
		Speed:      "1.2MiB/s",
		ETA:        "00:42",
	}
	line := formatEvent(progress)
	for _, want := range []string{"progress", "01234567", "12.5%", "1.2MiB/s", "00:42"} {
		if !strings.Contains(line, want) {
			t.Errorf("formatEvent missing %q in %q", want, line)
		}
	}

	completed := events.Event{Type: events.TypeCompleted, DownloadID: "abc", Filename: "clip.mp4"}
	if line := formatEvent(completed); !strings.Contains(line, "clip.mp4") {
		t.Errorf("formatEvent missing filename in %q", line)
	}

	failed := events.Event{Type: events.TypeFailed, DownloadID: "abc", Error: "boom"}
	if line := formatEvent(failed); !strings.Contains(line, "boom") {
		t.Errorf("formatEvent missing error in %q", line)
	}
}
