package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Download describes a download job in a transport-friendly format.
type Download struct {
	ID          string           `json:"id"`
	URL         string           `json:"url"`
	Format      string           `json:"format,omitempty"`
	Client      string           `json:"client"`
	Title       string           `json:"title,omitempty"`
	Status      string           `json:"status"`
	Progress    DownloadProgress `json:"progress"`
	LastLine    string           `json:"lastLine,omitempty"`
	Filename    string           `json:"filename,omitempty"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   string           `json:"createdAt,omitempty"`
	CompletedAt string           `json:"completedAt,omitempty"`
}

// DownloadProgress captures the latest scraped progress for a download.
type DownloadProgress struct {
	Percent   float64 `json:"percent"`
	Speed     string  `json:"speed,omitempty"`
	ETA       string  `json:"eta,omitempty"`
	TotalSize string  `json:"totalSize,omitempty"`
}

// SubmitRequest carries a new download submission.
type SubmitRequest struct {
	URL     string `json:"url"`
	Format  string `json:"format,omitempty"`
	Cookies string `json:"cookies,omitempty"`
}

// SubmitResponse wraps the accepted download.
type SubmitResponse struct {
	Download Download `json:"download"`
}

// DownloadListResponse wraps a collection of downloads.
type DownloadListResponse struct {
	Downloads []Download `json:"downloads"`
}

// DownloadResponse wraps a single download.
type DownloadResponse struct {
	Download Download `json:"download"`
}

// FileEntry describes one completed file in the library.
type FileEntry struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	SizeHuman string `json:"sizeHuman"`
	Modified  string `json:"modified,omitempty"`
}

// FileListResponse wraps the library listing.
type FileListResponse struct {
	Files []FileEntry `json:"files"`
}

// StatsResponse aggregates daemon counters for status surfaces.
type StatsResponse struct {
	ActiveDownloads int            `json:"activeDownloads"`
	ActiveByClient  map[string]int `json:"activeByClient,omitempty"`
	StatusCounts    map[string]int `json:"statusCounts"`
	TrackedJobs     int            `json:"trackedJobs"`
	LibraryFiles    int            `json:"libraryFiles"`
	LibraryBytes    int64          `json:"libraryBytes"`
	Subscribers     int            `json:"subscribers"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	LockFilePath string             `json:"lockFilePath"`
	DownloadDir  string             `json:"downloadDir"`
	Stats        StatsResponse      `json:"stats"`
	Dependencies []DependencyStatus `json:"dependencies"`
}
