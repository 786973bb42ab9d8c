package api

import (
	"yotdl/internal/deps"
	"yotdl/internal/download"
	"yotdl/internal/library"
)

// FromJob converts a registry record to its API representation.
func FromJob(job download.Job) Download {
	dto := Download{
		ID:     job.ID,
		URL:    job.URL,
		Format: job.Format,
		Client: job.Client,
		Title:  job.Title,
		Status: string(job.Status),
		Progress: DownloadProgress{
			Percent:   job.Progress.Percent,
			Speed:     job.Progress.Speed,
			ETA:       job.Progress.ETA,
			TotalSize: job.Progress.TotalSize,
		},
		LastLine: job.LastLine,
		Filename: job.Filename,
		Error:    job.ErrorMsg,
	}
	if !job.CreatedAt.IsZero() {
		dto.CreatedAt = job.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !job.CompletedAt.IsZero() {
		dto.CompletedAt = job.CompletedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromJobs converts a slice of registry records into API DTOs.
func FromJobs(jobs []download.Job) []Download {
	if len(jobs) == 0 {
		return nil
	}
	out := make([]Download, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJob(job))
	}
	return out
}

// FromFileInfo converts a library entry to its API representation.
func FromFileInfo(info library.FileInfo) FileEntry {
	entry := FileEntry{
		Name:      info.Name,
		Size:      info.Size,
		SizeHuman: info.SizeHuman,
	}
	if !info.ModTime.IsZero() {
		entry.Modified = info.ModTime.UTC().Format(dateTimeFormat)
	}
	return entry
}

// FromFileInfos converts a library listing into API DTOs.
func FromFileInfos(infos []library.FileInfo) []FileEntry {
	if len(infos) == 0 {
		return nil
	}
	out := make([]FileEntry, 0, len(infos))
	for _, info := range infos {
		out = append(out, FromFileInfo(info))
	}
	return out
}

// FromDependencyStatus converts a deps check result to its API form.
func FromDependencyStatus(status deps.Status) DependencyStatus {
	return DependencyStatus{
		Name:        status.Name,
		Command:     status.Command,
		Description: status.Description,
		Optional:    status.Optional,
		Available:   status.Available,
		Detail:      status.Detail,
	}
}

// FromDependencyStatuses converts a slice of deps check results.
func FromDependencyStatuses(statuses []deps.Status) []DependencyStatus {
	if len(statuses) == 0 {
		return nil
	}
	out := make([]DependencyStatus, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, FromDependencyStatus(status))
	}
	return out
}

// StatusCounts tallies jobs by status for stats payloads.
func StatusCounts(jobs []download.Job) map[string]int {
	counts := make(map[string]int, len(download.AllStatuses()))
	for _, status := range download.AllStatuses() {
		counts[string(status)] = 0
	}
	for _, job := range jobs {
		counts[string(job.Status)]++
	}
	return counts
}
