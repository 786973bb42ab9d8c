package ipc_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"yotdl/internal/daemon"
	"yotdl/internal/ipc"
	"yotdl/internal/testsupport"
)

func startServer(t *testing.T) (*ipc.Client, *daemon.Daemon, func()) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	d, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	socket := filepath.Join(testsupport.BaseDir(cfg), "yotdld.sock")
	server, err := ipc.NewServer(context.Background(), socket, d, nil, nil)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	server.Serve()

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}

	cleanup := func() {
		_ = client.Close()
		server.Close()
		_ = d.Close()
	}
	return client, d, cleanup
}

func TestStatusRoundTrip(t *testing.T) {
	client, _, cleanup := startServer(t)
	defer cleanup()

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running {
		t.Fatal("expected running daemon")
	}
	if status.PID <= 0 {
		t.Fatalf("pid = %d", status.PID)
	}
	if status.DownloadDir == "" {
		t.Fatal("expected download dir")
	}
	if len(status.Dependencies) == 0 {
		t.Fatal("expected dependency statuses")
	}
}

func TestSubmitValidationErrorCrossesRPC(t *testing.T) {
	client, _, cleanup := startServer(t)
	defer cleanup()

	if _, err := client.Submit("notaurl", "", ""); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestListEmpty(t *testing.T) {
	client, _, cleanup := startServer(t)
	defer cleanup()

	resp, err := client.List(nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(resp.Downloads) != 0 {
		t.Fatalf("expected no downloads, got %d", len(resp.Downloads))
	}
}

func TestDescribeUnknownID(t *testing.T) {
	client, _, cleanup := startServer(t)
	defer cleanup()

	if _, err := client.Describe("missing"); err == nil {
		t.Fatal("expected not-found error")
	}
	if _, err := client.Cancel("missing"); err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestFilesAndDelete(t *testing.T) {
	client, d, cleanup := startServer(t)
	defer cleanup()

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(status.DownloadDir, "clip.webm"), 128)

	files, err := client.Files()
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files.Files) != 1 || files.Files[0].Name != "clip.webm" {
		t.Fatalf("unexpected listing: %+v", files.Files)
	}

	deleted, err := client.DeleteFile("clip.webm")
	if err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if !deleted.Deleted {
		t.Fatal("expected deletion")
	}
	if remaining, err := d.Files(); err != nil || len(remaining) != 0 {
		t.Fatalf("file should be gone: %v %v", remaining, err)
	}
}

func TestStopInvokesCallback(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	d, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	defer d.Close()

	stopped := make(chan struct{})
	socket := filepath.Join(testsupport.BaseDir(cfg), "yotdld.sock")
	server, err := ipc.NewServer(context.Background(), socket, d, func() { close(stopped) }, nil)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	server.Serve()
	defer server.Close()

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	defer client.Close()

	resp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !resp.Stopped {
		t.Fatal("expected stopped response")
	}
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("stop callback never fired")
	}
}

func TestTestNotificationWithoutTopic(t *testing.T) {
	client, _, cleanup := startServer(t)
	defer cleanup()

	resp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if resp.Sent {
		t.Fatal("no topic configured, nothing should be sent")
	}
	if resp.Message == "" {
		t.Fatal("expected explanatory message")
	}
}
