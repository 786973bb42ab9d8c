// Package downloader orchestrates the download lifecycle: admission through
// the registry, one worker goroutine per job driving yt-dlp, progress
// fan-out over the event hub, artifact collection into the library, and
// cancellation.
package downloader
