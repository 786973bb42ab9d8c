package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"yotdl/internal/api"
	"yotdl/internal/config"
	"yotdl/internal/deps"
	"yotdl/internal/download"
	"yotdl/internal/downloader"
	"yotdl/internal/events"
	"yotdl/internal/library"
	"yotdl/internal/logging"
	"yotdl/internal/notifications"
	"yotdl/internal/reaper"
	"yotdl/internal/ytdlp"
)

// Daemon coordinates the download services and enforces single-instance
// execution through a file lock.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *download.Registry
	service  *downloader.Service
	hub      *events.Hub
	lib      *library.Manager
	notifier notifications.Service
	reaper   *reaper.Reaper
	api      *apiServer
	logPath  string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	LockFilePath string
	DownloadDir  string
	Stats        api.StatsResponse
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	registry := download.NewRegistry(download.Limits{
		MaxPerClient: cfg.Limits.MaxPerClient,
		MaxGlobal:    cfg.Limits.MaxGlobal,
	})
	lib, err := library.NewManager(cfg.Paths.DownloadDir)
	if err != nil {
		return nil, err
	}
	tool, err := ytdlp.New(cfg.Downloader.Binary, cfg.Downloader.FFmpegLocation, cfg.Downloader.CABundle, cfg.TitleTimeout())
	if err != nil {
		return nil, err
	}
	hub := events.NewHub()
	notifier := notifications.NewService(cfg)
	service := downloader.NewService(registry, tool, hub, lib, notifier, cfg.WorkDir(), logger)

	lockPath := filepath.Join(cfg.Paths.LogDir, "yotdld.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		service:  service,
		hub:      hub,
		lib:      lib,
		notifier: notifier,
		reaper:   reaper.New(registry, cfg.JobRetention(), cfg.ReapInterval(), logger),
		logPath:  filepath.Join(cfg.Paths.LogDir, "yotdld.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock and launches the reaper and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another yotdl daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.reaper.Start(d.ctx)
	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			d.reaper.Stop()
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("yotdl daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts background work, waits for in-flight downloads, and releases
// the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.api != nil {
		d.api.stop()
	}
	d.reaper.Stop()
	d.service.Close()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("yotdl daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Submit queues a new download for the given client.
func (d *Daemon) Submit(ctx context.Context, url, format, cookies, client string) (download.Job, error) {
	return d.service.Submit(ctx, downloader.Request{
		URL:     url,
		Format:  format,
		Cookies: cookies,
		Client:  client,
	})
}

// Cancel stops a download by id.
func (d *Daemon) Cancel(id string) (download.Job, error) {
	return d.service.Cancel(id)
}

// GetDownload returns a single tracked download.
func (d *Daemon) GetDownload(id string) (download.Job, error) {
	return d.service.Get(id)
}

// ListDownloads returns tracked downloads, optionally filtered by status.
func (d *Daemon) ListDownloads(statuses []download.Status) []download.Job {
	jobs := d.service.List()
	if len(statuses) == 0 {
		return jobs
	}
	wanted := make(map[download.Status]struct{}, len(statuses))
	for _, status := range statuses {
		wanted[status] = struct{}{}
	}
	filtered := jobs[:0]
	for _, job := range jobs {
		if _, ok := wanted[job.Status]; ok {
			filtered = append(filtered, job)
		}
	}
	return filtered
}

// Files lists the completed downloads on disk.
func (d *Daemon) Files() ([]library.FileInfo, error) {
	return d.lib.List()
}

// DeleteFile removes a completed download from disk and announces the
// library change.
func (d *Daemon) DeleteFile(name string) error {
	if err := d.lib.Delete(name); err != nil {
		return err
	}
	d.hub.Publish(events.Event{Type: events.TypeFilesUpdated})
	return nil
}

// ResolveFile maps a library entry to an absolute path for serving.
func (d *Daemon) ResolveFile(name string) (string, error) {
	return d.lib.Resolve(name)
}

// Hub exposes the event hub for realtime subscribers.
func (d *Daemon) Hub() *events.Hub {
	return d.hub
}

// Stats aggregates current counters across the registry and library.
func (d *Daemon) Stats() api.StatsResponse {
	jobs := d.service.List()
	active, perClient := d.service.Counts()
	stats := api.StatsResponse{
		ActiveDownloads: active,
		ActiveByClient:  perClient,
		StatusCounts:    api.StatusCounts(jobs),
		TrackedJobs:     len(jobs),
		Subscribers:     d.hub.SubscriberCount(),
	}
	if files, err := d.lib.List(); err == nil {
		stats.LibraryFiles = len(files)
		for _, file := range files {
			stats.LibraryBytes += file.Size
		}
	}
	return stats
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	requirements := deps.Requirements(d.cfg)
	statuses := deps.CheckBinaries(requirements[:1])
	statuses = append(statuses, deps.CheckFFmpeg(d.cfg.Downloader.FFmpegLocation))
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		DownloadDir:  d.cfg.Paths.DownloadDir,
		Stats:        d.Stats(),
		Dependencies: statuses,
	}
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// APIAddr reports the bound API address, empty until Start succeeds.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}
