package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"yotdl/internal/ipc"
	"yotdl/internal/testsupport"
)

func TestSubmitCommandQueuesDownload(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"submit", "https://example.com/watch?v=abc"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	requireContains(t, out, "Queued download")
	requireContains(t, out, "https://example.com/watch?v=abc")
}

func TestSubmitCommandRejectsBadURL(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"submit", "ftp://example.com/file"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected error for unsupported URL scheme")
	}
}

func TestListCommandShowsSubmittedDownload(t *testing.T) {
	env := setupCLITestEnv(t)

	submitOut, _, err := runCLI(t, []string{"submit", "https://example.com/videos/1", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	var submitResp ipc.SubmitResponse
	if err := json.Unmarshal([]byte(submitOut), &submitResp); err != nil {
		t.Fatalf("parse submit output: %v", err)
	}

	out, _, err := runCLI(t, []string{"list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, shortID(submitResp.Download.ID))
}

func TestListCommandEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "No downloads tracked")
}

func TestCancelCommandUnknownDownload(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"cancel", "does-not-exist"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown download id")
	}
}

func TestFilesCommandListsAndDeletes(t *testing.T) {
	env := setupCLITestEnv(t)

	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.DownloadDir, "clip.mp4"), 2048)

	out, _, err := runCLI(t, []string{"files"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	requireContains(t, out, "clip.mp4")

	out, _, err = runCLI(t, []string{"files", "delete", "clip.mp4"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("files delete: %v", err)
	}
	requireContains(t, out, "Deleted clip.mp4")

	out, _, err = runCLI(t, []string{"files"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("files after delete: %v", err)
	}
	requireContains(t, out, "No completed downloads")
}

func TestStatusCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	var statusResp ipc.StatusResponse
	if err := json.Unmarshal([]byte(out), &statusResp); err != nil {
		t.Fatalf("parse status output: %v", err)
	}
	if !statusResp.Running {
		t.Fatal("expected daemon to report running")
	}
	if statusResp.PID == 0 {
		t.Fatal("expected daemon pid in status")
	}
}

func TestTestNotifyCommandWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications are disabled")
}
