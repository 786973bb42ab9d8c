package download

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a download job.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusDownloading Status = "downloading"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusCancelled   Status = "cancelled"
)

var allStatuses = []Status{
	StatusQueued,
	StatusDownloading,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status permits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsActive reports whether a job still counts against rate limits.
func (s Status) IsActive() bool {
	return s == StatusQueued || s == StatusDownloading
}

// Progress is the last structured snapshot scraped from the tool's output.
// Fields are blank/zero when the tool has not emitted them.
type Progress struct {
	Percent   float64
	Speed     string
	ETA       string
	TotalSize string
}

// Job is the central record tracked by the registry. Values handed out of
// the registry are copies; mutation happens only through registry methods.
type Job struct {
	ID          string
	URL         string
	Format      string
	CookiesPath string
	Client      string
	Title       string
	Status      Status
	Progress    Progress
	LastLine    string
	Filename    string
	ErrorMsg    string
	CreatedAt   time.Time
	CompletedAt time.Time
}

// Terminal reports whether the job has reached a terminal status.
func (j Job) Terminal() bool {
	return j.Status.IsTerminal()
}
