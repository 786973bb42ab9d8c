package download

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"yotdl/internal/services"
)

// ProcessHandle is the minimal surface the registry needs to tear down a
// running download on cancellation. The downloader installs one per job.
type ProcessHandle interface {
	Terminate()
}

// Limits carries the admission caps the registry enforces.
type Limits struct {
	MaxPerClient int
	MaxGlobal    int
}

type record struct {
	job             Job
	handle          ProcessHandle
	cancelRequested bool
	released        bool
}

// Registry holds every job for the lifetime of the process. Jobs and the
// rate counters live under one mutex so admission checks and counter
// updates are atomic with status transitions.
type Registry struct {
	mu        sync.Mutex
	limits    Limits
	jobs      map[string]*record
	perClient map[string]int
	global    int
}

// NewRegistry constructs an empty registry with the given admission caps.
func NewRegistry(limits Limits) *Registry {
	return &Registry{
		limits:    limits,
		jobs:      make(map[string]*record),
		perClient: make(map[string]int),
	}
}

// Create admits a new job for client, or reports ErrRateLimited when either
// cap is already full. Admission and creation happen under one lock
// acquisition so concurrent submitters cannot both pass a full check.
func (r *Registry) Create(url, format, cookiesPath, client string) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.global >= r.limits.MaxGlobal {
		return Job{}, services.Wrap(services.ErrRateLimited, "registry", "create",
			fmt.Sprintf("global limit of %d concurrent downloads reached", r.limits.MaxGlobal), nil)
	}
	if r.perClient[client] >= r.limits.MaxPerClient {
		return Job{}, services.Wrap(services.ErrRateLimited, "registry", "create",
			fmt.Sprintf("client limit of %d concurrent downloads reached", r.limits.MaxPerClient), nil)
	}

	job := Job{
		ID:          uuid.NewString(),
		URL:         url,
		Format:      format,
		CookiesPath: cookiesPath,
		Client:      client,
		Status:      StatusQueued,
		CreatedAt:   time.Now(),
	}
	r.jobs[job.ID] = &record{job: job}
	r.perClient[client]++
	r.global++
	return job, nil
}

// Get returns a copy of the job, or ErrNotFound.
func (r *Registry) Get(id string) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.jobs[id]
	if !ok {
		return Job{}, services.Wrap(services.ErrNotFound, "registry", "get",
			fmt.Sprintf("no download with id %s", id), nil)
	}
	return rec.job, nil
}

// List returns copies of every job, newest first.
func (r *Registry) List() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Job, 0, len(r.jobs))
	for _, rec := range r.jobs {
		out = append(out, rec.job)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Counts returns the current active totals, for stats reporting.
func (r *Registry) Counts() (global int, perClient map[string]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	perClient = make(map[string]int, len(r.perClient))
	for client, n := range r.perClient {
		if n > 0 {
			perClient[client] = n
		}
	}
	return r.global, perClient
}

// StartRun transitions a queued job to downloading and installs the process
// handle used for cancellation. It reports false when the job is no longer
// queued, which happens when cancellation won the race before the worker
// started the subprocess.
func (r *Registry) StartRun(id string, handle ProcessHandle) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.jobs[id]
	if !ok || rec.job.Status != StatusQueued {
		return Job{}, false
	}
	rec.job.Status = StatusDownloading
	rec.handle = handle
	return rec.job, true
}

// SetProgress stores the latest progress snapshot and raw output line for a
// job still in flight. Updates to terminal jobs are dropped.
func (r *Registry) SetProgress(id string, progress Progress, line string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.jobs[id]
	if !ok || rec.job.Terminal() {
		return Job{}, false
	}
	rec.job.Progress = progress
	if line != "" {
		rec.job.LastLine = line
	}
	return rec.job, true
}

// SetTitle records the probed media title, preserving any existing one.
func (r *Registry) SetTitle(id, title string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.jobs[id]
	if !ok || rec.job.Terminal() || title == "" {
		return Job{}, false
	}
	rec.job.Title = title
	return rec.job, true
}

// Complete finalizes a successful job with the produced filename. If a
// cancellation was requested while the process was being torn down the job
// lands in cancelled instead.
func (r *Registry) Complete(id, filename string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.jobs[id]
	if !ok || rec.job.Terminal() {
		return Job{}, false
	}
	if rec.cancelRequested {
		r.finishLocked(rec, StatusCancelled, "")
	} else {
		rec.job.Filename = filename
		r.finishLocked(rec, StatusCompleted, "")
	}
	return rec.job, true
}

// Fail finalizes an unsuccessful job. A job whose cancellation was requested
// always finishes cancelled, never failed, regardless of how the process
// exited.
func (r *Registry) Fail(id, message string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.jobs[id]
	if !ok || rec.job.Terminal() {
		return Job{}, false
	}
	if rec.cancelRequested {
		r.finishLocked(rec, StatusCancelled, "")
	} else {
		r.finishLocked(rec, StatusFailed, message)
	}
	return rec.job, true
}

// RequestCancel flips an active job to cancelled immediately and returns the
// process handle, if any, for the caller to tear down outside the lock.
// Cancelling a terminal job is a validation error.
func (r *Registry) RequestCancel(id string) (Job, ProcessHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.jobs[id]
	if !ok {
		return Job{}, nil, services.Wrap(services.ErrNotFound, "registry", "cancel",
			fmt.Sprintf("no download with id %s", id), nil)
	}
	if rec.job.Terminal() {
		return Job{}, nil, services.Wrap(services.ErrValidation, "registry", "cancel",
			fmt.Sprintf("download %s already %s", id, rec.job.Status), nil)
	}
	rec.cancelRequested = true
	handle := rec.handle
	r.finishLocked(rec, StatusCancelled, "")
	return rec.job, handle, nil
}

// Remove deletes a terminal job from the registry. Active jobs are refused.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.jobs[id]
	if !ok {
		return services.Wrap(services.ErrNotFound, "registry", "remove",
			fmt.Sprintf("no download with id %s", id), nil)
	}
	if !rec.job.Terminal() {
		return services.Wrap(services.ErrValidation, "registry", "remove",
			fmt.Sprintf("download %s is still %s", id, rec.job.Status), nil)
	}
	delete(r.jobs, id)
	return nil
}

// ExpiredIDs snapshots the ids of terminal jobs whose completion is older
// than cutoff. Active jobs are never candidates.
func (r *Registry) ExpiredIDs(cutoff time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, rec := range r.jobs {
		if expiredLocked(rec, cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// RemoveIfExpired deletes the job only if it is still an expired terminal
// record and returns the removed copy. Each call is one lock acquisition, so
// a sweep over a snapshot never holds the lock across items.
func (r *Registry) RemoveIfExpired(id string, cutoff time.Time) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.jobs[id]
	if !ok || !expiredLocked(rec, cutoff) {
		return Job{}, false
	}
	delete(r.jobs, id)
	return rec.job, true
}

// RemoveExpired deletes terminal jobs whose completion is older than cutoff
// and returns the removed copies, taking the lock once per removal.
func (r *Registry) RemoveExpired(cutoff time.Time) []Job {
	var removed []Job
	for _, id := range r.ExpiredIDs(cutoff) {
		if job, ok := r.RemoveIfExpired(id, cutoff); ok {
			removed = append(removed, job)
		}
	}
	return removed
}

func expiredLocked(rec *record, cutoff time.Time) bool {
	if !rec.job.Terminal() {
		return false
	}
	return !rec.job.CompletedAt.IsZero() && !rec.job.CompletedAt.After(cutoff)
}

// finishLocked applies a terminal status and releases the job's rate-limit
// slots exactly once. Callers must hold r.mu.
func (r *Registry) finishLocked(rec *record, status Status, errorMsg string) {
	rec.job.Status = status
	rec.job.ErrorMsg = errorMsg
	rec.job.CompletedAt = time.Now()
	rec.handle = nil
	if rec.released {
		return
	}
	rec.released = true
	r.global--
	if r.perClient[rec.job.Client] > 1 {
		r.perClient[rec.job.Client]--
	} else {
		delete(r.perClient, rec.job.Client)
	}
}
