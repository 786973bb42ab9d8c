package daemonctl

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"yotdl/internal/config"
)

func TestSocketAndPIDPathsUseLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	if got := SocketPath(&cfg); got != filepath.Join(cfg.Paths.LogDir, "yotdld.sock") {
		t.Fatalf("unexpected socket path %q", got)
	}
	if got := PIDPath(&cfg); got != filepath.Join(cfg.Paths.LogDir, "yotdld.pid") {
		t.Fatalf("unexpected pid path %q", got)
	}
	if got := LockPath(&cfg); got != filepath.Join(cfg.Paths.LogDir, "yotdld.lock") {
		t.Fatalf("unexpected lock path %q", got)
	}
}

func TestSocketPathFallsBackWithoutConfig(t *testing.T) {
	if got := SocketPath(nil); got != filepath.Join(os.TempDir(), "yotdld.sock") {
		t.Fatalf("unexpected fallback socket path %q", got)
	}
}

func TestLaunchRejectsEmptyExecutable(t *testing.T) {
	err := Launch("  ", LaunchOptions{})
	if err == nil {
		t.Fatal("expected error for empty executable path")
	}
	if !strings.Contains(err.Error(), "executable path is empty") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestForceKillProcessWithoutPID(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "yotdld.pid")

	if _, err := ForceKillProcess(pidPath, "", 0); err == nil {
		t.Fatal("expected error when pid is unknown")
	}
}

func TestForceKillProcessRefusesSelf(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "yotdld.pid")
	if err := os.WriteFile(pidPath, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}

	if _, err := ForceKillProcess(pidPath, "", os.Getpid()); err == nil {
		t.Fatal("expected refusal to kill current process")
	}
}

func TestProcessInfoReportsUnavailable(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "missing.sock")
	alive, pid, err := ProcessInfo(socket)
	if err != nil {
		t.Fatalf("ProcessInfo: %v", err)
	}
	if alive || pid != 0 {
		t.Fatalf("expected daemon unavailable, got alive=%v pid=%d", alive, pid)
	}
}

func TestWaitForClientTimesOut(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "missing.sock")
	start := time.Now()
	if _, err := WaitForClient(socket, 250*time.Millisecond); err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Fatalf("returned too quickly: %v", elapsed)
	}
}

func TestIsDaemonUnavailable(t *testing.T) {
	if !isDaemonUnavailable(os.ErrNotExist) {
		t.Fatal("expected ErrNotExist to read as unavailable")
	}
	if !isDaemonUnavailable(syscall.ECONNREFUSED) {
		t.Fatal("expected ECONNREFUSED to read as unavailable")
	}
	if isDaemonUnavailable(syscall.EPERM) {
		t.Fatal("EPERM should not read as unavailable")
	}
}
