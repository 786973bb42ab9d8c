package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpeg reports the FFmpeg binary yt-dlp will execute.
//
// yt-dlp honours --ffmpeg-location, which may point at the binary itself or
// at a directory containing it, and otherwise resolves "ffmpeg" from PATH.
// This helper mirrors that lookup so status output matches yt-dlp's
// behaviour.
func CheckFFmpeg(ffmpegLocation string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Used by yt-dlp to merge audio and video streams",
		Optional:    true,
	}

	location := strings.TrimSpace(ffmpegLocation)
	if location != "" {
		candidate := location
		if info, err := os.Stat(location); err == nil && info.IsDir() {
			candidate = filepath.Join(location, ffmpegName())
		}
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			result.Command = candidate
			result.Available = true
			return result
		}
		result.Command = candidate
		result.Detail = fmt.Sprintf("configured ffmpeg location %q is not an executable", location)
		return result
	}

	name := ffmpegName()
	if path, err := exec.LookPath(name); err == nil {
		result.Command = path
		result.Available = true
		return result
	}

	result.Command = name
	result.Detail = fmt.Sprintf("binary %q not found", name)
	return result
}

func ffmpegName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
