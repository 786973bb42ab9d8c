package downloader

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGatherArtifactsSkipsPartials(t *testing.T) {
	dir := t.TempDir()
	writeBytes(t, filepath.Join(dir, "video.mp4"), 100)
	writeBytes(t, filepath.Join(dir, "video.mp4.part"), 500)
	writeBytes(t, filepath.Join(dir, "video.mp4.ytdl"), 10)
	writeBytes(t, filepath.Join(dir, "cookies-12345.txt"), 10)
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	entries, err := gatherArtifacts(dir)
	if err != nil {
		t.Fatalf("gatherArtifacts failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one artifact, got %d", len(entries))
	}
	if filepath.Base(entries[0].path) != "video.mp4" {
		t.Fatalf("unexpected artifact %s", entries[0].path)
	}
}

func TestSelectArtifactPrefersLargest(t *testing.T) {
	dir := t.TempDir()
	writeBytes(t, filepath.Join(dir, "audio.m4a"), 50)
	writeBytes(t, filepath.Join(dir, "full.mp4"), 5000)

	entries, err := gatherArtifacts(dir)
	if err != nil {
		t.Fatalf("gatherArtifacts failed: %v", err)
	}
	best := selectArtifact(entries)
	if best == nil {
		t.Fatal("expected a selection")
	}
	if filepath.Base(best.path) != "full.mp4" {
		t.Fatalf("selected %s, want full.mp4", best.path)
	}
}

func TestSelectArtifactEmpty(t *testing.T) {
	if selectArtifact(nil) != nil {
		t.Fatal("empty input should select nothing")
	}
	entries, err := gatherArtifacts(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestCollectArtifactFallsBackToJobID(t *testing.T) {
	fx := newFixture(t, &fakeTool{proc: newFakeProcess(nil)})
	jobDir := filepath.Join(fx.workDir, "job")
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		t.Fatalf("mkdir job: %v", err)
	}
	// Both the output filename and the title sanitize to nothing.
	writeBytes(t, filepath.Join(jobDir, "???"), 64)

	name, err := fx.service.collectArtifact("0123456789abcdef", jobDir, "???")
	if err != nil {
		t.Fatalf("collectArtifact failed: %v", err)
	}
	if name != "video_01234567" {
		t.Fatalf("got %q, want video_01234567", name)
	}
	if _, err := os.Stat(filepath.Join(fx.libDir, name)); err != nil {
		t.Fatalf("artifact not moved into library: %v", err)
	}
}

func writeBytes(t *testing.T, path string, n int) {
	t.Helper()
	if err := os.WriteFile(path, make([]byte, n), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
