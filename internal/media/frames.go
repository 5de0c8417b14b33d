package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

var ErrEmptyFrame = errors.New("ffmpeg produced no frame")

// FFmpegFrames decodes single frames by piping one PNG out of ffmpeg.
type FFmpegFrames struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

func NewFFmpegFrames(binary string, logger *slog.Logger) *FFmpegFrames {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegFrames{binary: binary, timeout: 10 * time.Second, logger: logger}
}

func frameArgs(path string, frameIndex int) []string {
	return []string{
		"-v", "error",
		"-i", path,
		"-vf", fmt.Sprintf(`select=eq(n\,%d)`, frameIndex),
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}
}

func (f *FFmpegFrames) DecodeFrame(ctx context.Context, path string, frameIndex int) (image.Image, error) {
	if frameIndex < 0 {
		return nil, fmt.Errorf("negative frame index %d", frameIndex)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.binary, frameArgs(path, frameIndex)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame %d of %s: %w: %s", frameIndex, path, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: index %d of %s", ErrEmptyFrame, frameIndex, path)
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame png: %w", err)
	}
	return img, nil
}

// LoadImage decodes a still with the image package and falls back to
// ffmpeg for formats it does not know (webp, tiff, ...).
func (f *FFmpegFrames) LoadImage(ctx context.Context, path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err == nil {
		return img, nil
	}
	if f.logger != nil {
		f.logger.Debug("falling back to ffmpeg for still", "path", path, "error", err)
	}
	return f.DecodeFrame(ctx, path, 0)
}
