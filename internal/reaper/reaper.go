// Package reaper evicts stale terminal jobs from the registry so the
// in-memory job list stays bounded. It never touches files on disk.
package reaper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"yotdl/internal/download"
	"yotdl/internal/logging"
)

// Reaper periodically removes terminal jobs older than the retention
// window. Active jobs are never evicted regardless of age.
type Reaper struct {
	registry  *download.Registry
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a reaper over the registry.
func New(registry *download.Registry, retention, interval time.Duration, logger *slog.Logger) *Reaper {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reaper{
		registry:  registry,
		retention: retention,
		interval:  interval,
		logger:    logging.WithComponent(logger, "reaper"),
	}
}

// Start launches the sweep loop. Calling Start on a running reaper is a
// no-op.
func (r *Reaper) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	done := make(chan struct{})
	r.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}()
}

// Stop halts the loop and waits for the in-flight sweep to finish.
func (r *Reaper) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Sweep removes expired terminal jobs once and reports how many went. The
// candidate ids are snapshotted first and each removal takes the registry
// lock on its own, so a long sweep never starves concurrent submissions.
func (r *Reaper) Sweep() int {
	cutoff := time.Now().Add(-r.retention)
	removed := 0
	for _, id := range r.registry.ExpiredIDs(cutoff) {
		job, ok := r.registry.RemoveIfExpired(id, cutoff)
		if !ok {
			continue
		}
		removed++
		r.logger.Info("reaped stale download",
			logging.String(logging.FieldDownloadID, job.ID),
			logging.String("status", string(job.Status)),
			logging.Duration("age", time.Since(job.CompletedAt)))
	}
	return removed
}
