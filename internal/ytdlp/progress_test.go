package ytdlp

import "testing"

func TestParseProgressFullLine(t *testing.T) {
	line := "[download]  42.7% of ~120.50MiB at 3.2MiB/s ETA 00:25"
	update, ok := parseProgress(line)
	if !ok {
		t.Fatalf("expected progress from %q", line)
	}
	if update.Percent != 42.7 {
		t.Fatalf("percent = %v, want 42.7", update.Percent)
	}
	if update.TotalSize != "120.50MiB" {
		t.Fatalf("total size = %q", update.TotalSize)
	}
	if update.Speed != "3.2MiB/s" {
		t.Fatalf("speed = %q", update.Speed)
	}
	if update.ETA != "00:25" {
		t.Fatalf("eta = %q", update.ETA)
	}
}

func TestParseProgressPercentOnly(t *testing.T) {
	update, ok := parseProgress("[download] 100% of 4.00KiB in 00:00")
	if !ok {
		t.Fatal("expected progress")
	}
	if update.Percent != 100 {
		t.Fatalf("percent = %v, want 100", update.Percent)
	}
	if update.TotalSize != "4.00KiB" {
		t.Fatalf("total size = %q", update.TotalSize)
	}
	if update.Speed != "" || update.ETA != "" {
		t.Fatalf("speed/eta should be empty: %+v", update)
	}
}

func TestParseProgressLongETA(t *testing.T) {
	update, ok := parseProgress("[download]   0.1% of 1.20GiB at 512.00KiB/s ETA 1:02:45")
	if !ok {
		t.Fatal("expected progress")
	}
	if update.ETA != "1:02:45" {
		t.Fatalf("eta = %q", update.ETA)
	}
}

func TestParseProgressIgnoresOtherLines(t *testing.T) {
	for _, line := range []string{
		"[youtube] dQw4w9WgXcQ: Downloading webpage",
		"[Merger] Merging formats into \"video.mp4\"",
		"[download] Destination: video.f137.mp4",
		"WARNING: unable to extract uploader id",
		"",
	} {
		if _, ok := parseProgress(line); ok {
			t.Fatalf("line %q should not parse as progress", line)
		}
	}
}
