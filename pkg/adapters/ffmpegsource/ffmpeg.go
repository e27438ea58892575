package ffmpegsource

import (
	"errors"
	"os"
	"os/exec"
	"runtime"
)

// ErrFFmpegNotFound is returned when ffmpeg is not found in PATH or any
// common location.
var ErrFFmpegNotFound = errors.New("ffmpegsource: ffmpeg not found")

// findFFmpeg searches for ffmpeg in PATH and common locations.
func findFFmpeg() (string, error) {
	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}

	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonPaths []string
	if runtime.GOOS == "windows" {
		commonPaths = []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	} else {
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/opt/homebrew/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}

	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrFFmpegNotFound
}
