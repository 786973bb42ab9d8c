package ytdlp

import (
	"regexp"
	"strconv"
	"strings"
)

// ProgressUpdate captures yt-dlp progress output.
type ProgressUpdate struct {
	Percent   float64
	Speed     string
	ETA       string
	TotalSize string
}

var (
	percentRe = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
	sizeRe    = regexp.MustCompile(`of\s+~?\s*([\d.]+\s*[KMGT]?i?B)`)
	speedRe   = regexp.MustCompile(`at\s+([\d.]+\s*[KMGT]?i?B/s)`)
	etaRe     = regexp.MustCompile(`ETA\s+((?:\d+:)+\d+)`)
)

// parseProgress extracts a structured update from a yt-dlp status line.
// Only [download] lines carrying a percentage produce an update; everything
// else (merger output, warnings, playlist notices) is passed through raw.
func parseProgress(line string) (ProgressUpdate, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "[download]") {
		return ProgressUpdate{}, false
	}
	match := percentRe.FindStringSubmatch(trimmed)
	if match == nil {
		return ProgressUpdate{}, false
	}
	percent, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return ProgressUpdate{}, false
	}

	update := ProgressUpdate{Percent: percent}
	if m := sizeRe.FindStringSubmatch(trimmed); m != nil {
		update.TotalSize = strings.ReplaceAll(m[1], " ", "")
	}
	if m := speedRe.FindStringSubmatch(trimmed); m != nil {
		update.Speed = strings.ReplaceAll(m[1], " ", "")
	}
	if m := etaRe.FindStringSubmatch(trimmed); m != nil {
		update.ETA = m[1]
	}
	return update, true
}
