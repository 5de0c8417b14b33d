package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

var ErrNoVideoStream = errors.New("no video stream")

type Prober interface {
	ProbeVideo(ctx context.Context, path string) (timeline.Probe, error)
	ProbeAudioDuration(ctx context.Context, path string) (float64, error)
}

// FFprobe shells out to ffprobe for stream metadata.
type FFprobe struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

func NewFFprobe(binary string, logger *slog.Logger) *FFprobe {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFprobe{binary: binary, timeout: 20 * time.Second, logger: logger}
}

type probeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		NbFrames     string `json:"nb_frames"`
		Duration     string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (f *FFprobe) run(ctx context.Context, path string, args ...string) (*probeOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	full := append([]string{"-v", "error", "-of", "json"}, args...)
	full = append(full, "--", path)
	cmd := exec.CommandContext(ctx, f.binary, full...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("ffprobe failed: %w\nffprobe output: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbeOutput(out)
}

func parseProbeOutput(data []byte) (*probeOutput, error) {
	var po probeOutput
	if err := json.Unmarshal(data, &po); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &po, nil
}

// ProbeVideo reports rate, size and frame count of the first video stream.
// When the container does not carry nb_frames the count is derived from the
// duration.
func (f *FFprobe) ProbeVideo(ctx context.Context, path string) (timeline.Probe, error) {
	po, err := f.run(ctx, path,
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_type,width,height,r_frame_rate,avg_frame_rate,nb_frames,duration:format=duration",
	)
	if err != nil {
		return timeline.Probe{}, err
	}
	probe, err := videoProbe(po)
	if err != nil {
		return timeline.Probe{}, err
	}
	if f.logger != nil {
		f.logger.Debug("probed video", "path", path, "fps", probe.FPS, "frames", probe.FrameCount)
	}
	return probe, nil
}

func videoProbe(po *probeOutput) (timeline.Probe, error) {
	for _, s := range po.Streams {
		if s.CodecType != "" && s.CodecType != "video" {
			continue
		}
		p := timeline.Probe{Width: s.Width, Height: s.Height}
		p.FPS = parseRate(s.RFrameRate)
		if p.FPS == 0 {
			p.FPS = parseRate(s.AvgFrameRate)
		}
		p.DurationSeconds = parseSeconds(s.Duration)
		if p.DurationSeconds == 0 {
			p.DurationSeconds = parseSeconds(po.Format.Duration)
		}
		if n, err := strconv.Atoi(strings.TrimSpace(s.NbFrames)); err == nil && n > 0 {
			p.FrameCount = n
		} else if p.FPS > 0 && p.DurationSeconds > 0 {
			p.FrameCount = int(math.Round(p.DurationSeconds * p.FPS))
		}
		return p, nil
	}
	return timeline.Probe{}, ErrNoVideoStream
}

func (f *FFprobe) ProbeAudioDuration(ctx context.Context, path string) (float64, error) {
	po, err := f.run(ctx, path, "-show_entries", "format=duration")
	if err != nil {
		return 0, err
	}
	d := parseSeconds(po.Format.Duration)
	if d <= 0 {
		return 0, fmt.Errorf("no duration reported for %s", path)
	}
	return d, nil
}

// parseRate reads ffprobe rationals such as "30000/1001".
func parseRate(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
