package ipc

import "yotdl/internal/api"

// Download mirrors the HTTP API download DTO for internal IPC callers.
type Download = api.Download

// DependencyStatus describes availability of an external dependency.
type DependencyStatus = api.DependencyStatus

// StatsResponse mirrors the HTTP API stats payload.
type StatsResponse = api.StatsResponse

// FileEntry mirrors the HTTP API library file DTO.
type FileEntry = api.FileEntry

// SubmitRequest queues a new download.
type SubmitRequest struct {
	URL     string `json:"url"`
	Format  string `json:"format,omitempty"`
	Cookies string `json:"cookies,omitempty"`
}

// SubmitResponse returns the accepted download.
type SubmitResponse struct {
	Download Download `json:"download"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon status information.
type StatusResponse struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	LockPath     string             `json:"lock_path"`
	DownloadDir  string             `json:"download_dir"`
	APIAddr      string             `json:"api_addr"`
	Stats        StatsResponse      `json:"stats"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// StopRequest shuts the daemon down.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// ListRequest filters download listing by status.
type ListRequest struct {
	Statuses []string `json:"statuses"`
}

// ListResponse contains download entries.
type ListResponse struct {
	Downloads []Download `json:"downloads"`
}

// DescribeRequest fetches a single download by id.
type DescribeRequest struct {
	ID string `json:"id"`
}

// DescribeResponse contains a single download.
type DescribeResponse struct {
	Download Download `json:"download"`
}

// CancelRequest stops a download by id.
type CancelRequest struct {
	ID string `json:"id"`
}

// CancelResponse contains the cancelled download.
type CancelResponse struct {
	Download Download `json:"download"`
}

// FilesRequest lists the completed files on disk.
type FilesRequest struct{}

// FilesResponse contains library entries.
type FilesResponse struct {
	Files []FileEntry `json:"files"`
}

// DeleteFileRequest removes a completed file by name.
type DeleteFileRequest struct {
	Name string `json:"name"`
}

// DeleteFileResponse reports the deletion outcome.
type DeleteFileResponse struct {
	Deleted bool `json:"deleted"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
