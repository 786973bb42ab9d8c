package downloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"yotdl/internal/library"
	"yotdl/internal/services"
)

type artifactEntry struct {
	path    string
	size    int64
	modTime time.Time
}

// collectArtifact picks the produced media file out of the job's work
// directory and moves it into the library under a safe, collision-free
// name. yt-dlp can leave partial fragments behind; the real output is the
// largest file, newest on a tie.
func (s *Service) collectArtifact(jobID, jobDir, title string) (string, error) {
	entries, err := gatherArtifacts(jobDir)
	if err != nil {
		return "", fmt.Errorf("inspect download outputs: %w", err)
	}
	best := selectArtifact(entries)
	if best == nil {
		return "", services.Wrap(services.ErrExternalTool, "downloader", "collect",
			"yt-dlp exited cleanly but produced no output file", nil)
	}

	name := library.SanitizeFilename(filepath.Base(best.path))
	if name == "" {
		ext := filepath.Ext(best.path)
		base := library.SanitizeFilename(title)
		if base == "" {
			base = fallbackTitle(jobID)
		}
		name = base + ext
	}
	name = library.EnsureUnique(s.lib.Root(), name)

	dest := filepath.Join(s.lib.Root(), name)
	if err := os.Rename(best.path, dest); err != nil {
		return "", fmt.Errorf("move download into library: %w", err)
	}
	return name, nil
}

func gatherArtifacts(dir string) ([]artifactEntry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	result := make([]artifactEntry, 0, len(items))
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		name := item.Name()
		if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") || strings.HasPrefix(name, "cookies-") {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		result = append(result, artifactEntry{
			path:    filepath.Join(dir, name),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}
	return result, nil
}

func selectArtifact(entries []artifactEntry) *artifactEntry {
	if len(entries) == 0 {
		return nil
	}
	bestIdx := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].size > entries[bestIdx].size {
			bestIdx = i
			continue
		}
		if entries[i].size == entries[bestIdx].size && entries[i].modTime.After(entries[bestIdx].modTime) {
			bestIdx = i
		}
	}
	return &entries[bestIdx]
}
