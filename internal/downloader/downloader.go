package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"yotdl/internal/download"
	"yotdl/internal/events"
	"yotdl/internal/library"
	"yotdl/internal/logging"
	"yotdl/internal/services"
	"yotdl/internal/ytdlp"
)

// Tool is the subset of the yt-dlp client the service drives.
type Tool interface {
	Start(ctx context.Context, req ytdlp.Request, onProgress func(ytdlp.ProgressUpdate), onLine func(string)) (ytdlp.Process, error)
	ProbeTitle(ctx context.Context, url, cookiesPath string) (string, error)
}

// Notifier receives lifecycle notifications for finished downloads.
type Notifier interface {
	DownloadCompleted(ctx context.Context, title, filename string)
	DownloadFailed(ctx context.Context, title, errMessage string)
}

// Request carries one submission from the API surface.
type Request struct {
	URL     string
	Format  string
	Cookies string
	Client  string
}

// Service owns the download lifecycle: admission, the per-job worker
// goroutine, progress fan-out, finalization, and cancellation.
type Service struct {
	registry *download.Registry
	tool     Tool
	hub      *events.Hub
	lib      *library.Manager
	notifier Notifier
	workDir  string
	logger   *slog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewService wires the download service. workDir holds per-job scratch
// directories and must live on the same filesystem as the library root.
func NewService(registry *download.Registry, tool Tool, hub *events.Hub, lib *library.Manager, notifier Notifier, workDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		registry: registry,
		tool:     tool,
		hub:      hub,
		lib:      lib,
		notifier: notifier,
		workDir:  workDir,
		baseCtx:  ctx,
		cancel:   cancel,
		logger:   logging.WithComponent(logger, "downloader"),
	}
}

// Submit validates the request, admits it against the rate limits, and
// launches the worker. It returns as soon as the job is queued.
func (s *Service) Submit(ctx context.Context, req Request) (download.Job, error) {
	target := strings.TrimSpace(req.URL)
	if err := validateURL(target); err != nil {
		return download.Job{}, err
	}
	client := strings.TrimSpace(req.Client)
	if client == "" {
		client = "local"
	}

	cookiesPath, err := s.writeCookies(req.Cookies)
	if err != nil {
		return download.Job{}, err
	}

	job, err := s.registry.Create(target, strings.TrimSpace(req.Format), cookiesPath, client)
	if err != nil {
		if cookiesPath != "" {
			_ = os.Remove(cookiesPath)
		}
		return download.Job{}, err
	}

	s.logger.Info("download queued",
		logging.String(logging.FieldDownloadID, job.ID),
		logging.String(logging.FieldClient, client),
		logging.String("url", target))

	s.wg.Add(1)
	go s.run(job)
	return job, nil
}

// Cancel stops a download. The status flips before this returns; process
// teardown continues in the background.
func (s *Service) Cancel(id string) (download.Job, error) {
	job, handle, err := s.registry.RequestCancel(id)
	if err != nil {
		return download.Job{}, err
	}
	if handle != nil {
		handle.Terminate()
	}
	s.logger.Info("download cancelled",
		logging.String(logging.FieldDownloadID, job.ID),
		logging.String(logging.FieldClient, job.Client))
	s.hub.Publish(events.Event{
		Type:       events.TypeCancelled,
		DownloadID: job.ID,
		Status:     string(job.Status),
		Title:      job.Title,
	})
	return job, nil
}

// Get returns one job.
func (s *Service) Get(id string) (download.Job, error) {
	return s.registry.Get(id)
}

// List returns every tracked job, newest first.
func (s *Service) List() []download.Job {
	return s.registry.List()
}

// Counts reports active job totals.
func (s *Service) Counts() (int, map[string]int) {
	return s.registry.Counts()
}

// Close stops accepting work and waits for in-flight workers to finish.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Service) run(job download.Job) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("worker panic",
				logging.String(logging.FieldDownloadID, job.ID),
				logging.Any("panic", r))
			s.finalize(job.ID, fmt.Errorf("internal error: %v", r))
		}
	}()
	defer s.cleanup(job)

	jobDir := filepath.Join(s.workDir, job.ID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		s.finalize(job.ID, fmt.Errorf("create work directory: %w", err))
		return
	}

	title := s.probeTitle(job)

	var lastLine atomicLine
	proc, err := s.tool.Start(s.baseCtx, ytdlp.Request{
		URL:         job.URL,
		Format:      job.Format,
		CookiesPath: job.CookiesPath,
		OutputDir:   jobDir,
	}, func(update ytdlp.ProgressUpdate) {
		s.onProgress(job.ID, title, update, lastLine.Load())
	}, func(line string) {
		lastLine.Store(line)
	})
	if err != nil {
		s.finalize(job.ID, services.Wrap(services.ErrExternalTool, "downloader", "start", "launch yt-dlp", err))
		return
	}

	if _, ok := s.registry.StartRun(job.ID, proc); !ok {
		// Cancellation won the race before the process was registered.
		proc.Terminate()
		_ = proc.Wait()
		return
	}

	waitErr := proc.Wait()
	if waitErr != nil {
		message := lastLine.Load()
		if message == "" {
			message = waitErr.Error()
		}
		s.finalize(job.ID, services.Wrap(services.ErrExternalTool, "downloader", "run", message, waitErr))
		return
	}

	filename, err := s.collectArtifact(job.ID, jobDir, title)
	if err != nil {
		s.finalize(job.ID, err)
		return
	}
	s.complete(job.ID, filename)
}

// probeTitle resolves the media title before the download starts. A failed
// probe falls back to a name derived from the job id.
func (s *Service) probeTitle(job download.Job) string {
	title, err := s.tool.ProbeTitle(s.baseCtx, job.URL, job.CookiesPath)
	if err != nil || strings.TrimSpace(title) == "" {
		title = fallbackTitle(job.ID)
		s.logger.Warn("title probe failed",
			logging.String(logging.FieldDownloadID, job.ID),
			logging.Error(err))
	}
	if updated, ok := s.registry.SetTitle(job.ID, title); ok {
		return updated.Title
	}
	return title
}

func (s *Service) onProgress(id, title string, update ytdlp.ProgressUpdate, line string) {
	progress := download.Progress{
		Percent:   update.Percent,
		Speed:     update.Speed,
		ETA:       update.ETA,
		TotalSize: update.TotalSize,
	}
	job, ok := s.registry.SetProgress(id, progress, line)
	if !ok {
		return
	}
	s.hub.Publish(events.Event{
		Type:       events.TypeProgress,
		DownloadID: id,
		Status:     string(job.Status),
		Title:      title,
		Percent:    update.Percent,
		Speed:      update.Speed,
		ETA:        update.ETA,
		TotalSize:  update.TotalSize,
		Line:       line,
	})
}

func (s *Service) complete(id, filename string) {
	job, ok := s.registry.Complete(id, filename)
	if !ok {
		return
	}
	if job.Status == download.StatusCancelled {
		return
	}
	s.logger.Info("download completed",
		logging.String(logging.FieldDownloadID, id),
		logging.String("filename", filename))
	s.hub.Publish(events.Event{
		Type:       events.TypeCompleted,
		DownloadID: id,
		Status:     string(job.Status),
		Title:      job.Title,
		Filename:   filename,
	})
	s.hub.Publish(events.Event{Type: events.TypeFilesUpdated})
	if s.notifier != nil {
		s.notifier.DownloadCompleted(s.baseCtx, job.Title, filename)
	}
}

func (s *Service) finalize(id string, cause error) {
	message := "download failed"
	if cause != nil {
		message = cause.Error()
	}
	job, ok := s.registry.Fail(id, message)
	if !ok {
		return
	}
	if job.Status == download.StatusCancelled {
		// Cancellation already announced; the process death is expected.
		return
	}
	s.logger.Error("download failed",
		logging.String(logging.FieldDownloadID, id),
		logging.Error(cause))
	s.hub.Publish(events.Event{
		Type:       events.TypeFailed,
		DownloadID: id,
		Status:     string(job.Status),
		Title:      job.Title,
		Error:      job.ErrorMsg,
	})
	if s.notifier != nil {
		s.notifier.DownloadFailed(s.baseCtx, job.Title, job.ErrorMsg)
	}
}

func (s *Service) cleanup(job download.Job) {
	if job.CookiesPath != "" {
		_ = os.Remove(job.CookiesPath)
	}
	_ = os.RemoveAll(filepath.Join(s.workDir, job.ID))
}

// writeCookies persists raw cookie text to a private temp file for yt-dlp.
func (s *Service) writeCookies(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	file, err := os.CreateTemp(s.workDir, "cookies-*.txt")
	if err != nil {
		return "", fmt.Errorf("create cookies file: %w", err)
	}
	defer file.Close()
	if err := file.Chmod(0o600); err != nil {
		return "", fmt.Errorf("restrict cookies file: %w", err)
	}
	if _, err := file.WriteString(raw + "\n"); err != nil {
		return "", fmt.Errorf("write cookies file: %w", err)
	}
	return file.Name(), nil
}

func validateURL(raw string) error {
	if raw == "" {
		return services.Wrap(services.ErrValidation, "downloader", "submit", "url is required", nil)
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return services.Wrap(services.ErrValidation, "downloader", "submit",
			fmt.Sprintf("invalid download url %q", raw), nil)
	}
	return nil
}

func fallbackTitle(id string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return "video_" + short
}

type atomicLine struct {
	mu   sync.Mutex
	line string
}

func (a *atomicLine) Store(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	a.mu.Lock()
	a.line = trimmed
	a.mu.Unlock()
}

func (a *atomicLine) Load() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.line
}
