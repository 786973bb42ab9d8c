package daemon

import (
	"context"
	"testing"

	"yotdl/internal/testsupport"
)

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("second Start should fail while running")
	}

	status := d.Status(context.Background())
	if !status.Running {
		t.Fatal("status should report running")
	}
	if status.PID <= 0 {
		t.Fatalf("pid = %d", status.PID)
	}
	if len(status.Dependencies) == 0 {
		t.Fatal("expected dependency statuses")
	}

	d.Stop()
	d.Stop() // idempotent
	if d.Status(context.Background()).Running {
		t.Fatal("status should report stopped")
	}
}

func TestDaemonLockExcludesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	first, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer first.Close()
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	cfg.Paths.APIBind = "127.0.0.1:0"
	second, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer second.Close()
	if err := second.Start(context.Background()); err == nil {
		t.Fatal("second instance should fail to acquire the lock")
	}
}

func TestStatsEmptyDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	stats := d.Stats()
	if stats.ActiveDownloads != 0 || stats.TrackedJobs != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.StatusCounts["queued"] != 0 {
		t.Fatalf("unexpected status counts: %v", stats.StatusCounts)
	}
}
