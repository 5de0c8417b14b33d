package media

import (
	"fmt"
	"os/exec"
	"runtime"
)

// CheckDependencies verifies ffprobe and ffmpeg can be found.
func CheckDependencies(ffprobe, ffmpeg string) error {
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if _, err := exec.LookPath(ffprobe); err != nil {
		return fmt.Errorf("%s not found in PATH. %s", ffprobe, installHint())
	}
	if _, err := exec.LookPath(ffmpeg); err != nil {
		return fmt.Errorf("%s not found in PATH. %s", ffmpeg, installHint())
	}
	return nil
}

func installHint() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install ffmpeg"
	case "linux":
		return "Install with your package manager, e.g. apt-get install ffmpeg"
	case "windows":
		return "Download from https://ffmpeg.org/download.html and add to PATH"
	default:
		return "Download from https://ffmpeg.org/download.html"
	}
}
