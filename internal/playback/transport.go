// Package playback advances the playhead in real time by issuing
// SET_PLAYHEAD commands against the editing session.
package playback

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/heimdex/heimdex-timeline/internal/metrics"
	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

const (
	DefaultPreviewRate  = 12.0
	defaultPollInterval = 10 * time.Millisecond
)

// Target is the session the transport drives.
type Target interface {
	Snapshot() timeline.Project
	Seek(ctx context.Context, frame int) error
}

type Status struct {
	Running bool `json:"running"`
	Playing bool `json:"playing"`
	Frame   int  `json:"frame"`
}

// Transport is the external timer of the editor. The core never schedules
// playback itself; the transport only ever seeks.
type Transport struct {
	target       Target
	logger       *slog.Logger
	limiter      *rate.Limiter
	pollInterval time.Duration
	now          func() time.Time

	running atomic.Bool
	playing atomic.Bool

	mu          sync.Mutex
	anchorFrame int
	anchorTime  time.Time
	anchorFPS   float64
	lastFrame   int
}

// NewTransport issues at most previewRate playhead updates per second.
func NewTransport(target Target, previewRate float64, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if previewRate <= 0 || math.IsNaN(previewRate) || math.IsInf(previewRate, 0) {
		previewRate = DefaultPreviewRate
	}
	return &Transport{
		target:       target,
		logger:       logger,
		limiter:      rate.NewLimiter(rate.Limit(previewRate), 1),
		pollInterval: defaultPollInterval,
		now:          time.Now,
		lastFrame:    -1,
	}
}

func (t *Transport) Start(ctx context.Context) {
	if t.running.Swap(true) {
		return
	}
	t.logger.Info("playback transport started")

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("playback transport stopping")
			t.Pause()
			t.running.Store(false)
			return
		case <-ticker.C:
			if t.playing.Load() {
				t.advance(ctx)
			}
		}
	}
}

// Play starts from the current playhead, or rewinds to zero when the
// playhead is already past the last clip.
func (t *Transport) Play(ctx context.Context) error {
	snap := t.target.Snapshot()
	start := snap.PlayheadFrame
	if start >= snap.End() {
		start = 0
	}
	if start != snap.PlayheadFrame {
		if err := t.target.Seek(ctx, start); err != nil {
			return err
		}
	}

	t.mu.Lock()
	t.anchor(start, snap.FPS)
	t.mu.Unlock()

	t.playing.Store(true)
	metrics.SetPlaying(true)
	t.logger.Info("playback started", "frame", start)
	return nil
}

func (t *Transport) Pause() {
	if t.playing.Swap(false) {
		metrics.SetPlaying(false)
		t.logger.Info("playback paused")
	}
}

// Toggle flips between playing and paused and reports the new state.
func (t *Transport) Toggle(ctx context.Context) (bool, error) {
	if t.playing.Load() {
		t.Pause()
		return false, nil
	}
	if err := t.Play(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (t *Transport) IsPlaying() bool {
	return t.playing.Load()
}

func (t *Transport) IsRunning() bool {
	return t.running.Load()
}

func (t *Transport) Status() Status {
	return Status{
		Running: t.running.Load(),
		Playing: t.playing.Load(),
		Frame:   t.target.Snapshot().PlayheadFrame,
	}
}

// anchor must be called with t.mu held.
func (t *Transport) anchor(frame int, fps float64) {
	t.anchorFrame = frame
	t.anchorTime = t.now()
	t.anchorFPS = fps
	t.lastFrame = frame
}

func (t *Transport) advance(ctx context.Context) {
	if !t.limiter.AllowN(t.now(), 1) {
		return
	}
	snap := t.target.Snapshot()

	t.mu.Lock()
	// Someone else moved the playhead or changed the rate: continue from there.
	if snap.PlayheadFrame != t.lastFrame || snap.FPS != t.anchorFPS {
		t.anchor(snap.PlayheadFrame, snap.FPS)
	}
	elapsed := t.now().Sub(t.anchorTime).Seconds()
	frame := t.anchorFrame + int(elapsed*t.anchorFPS)
	end := snap.End()
	finished := frame >= end
	if finished {
		frame = end
	}
	changed := frame != t.lastFrame
	t.lastFrame = frame
	t.mu.Unlock()

	if changed {
		if err := t.target.Seek(ctx, frame); err != nil {
			t.logger.Error("failed to advance playhead", "frame", frame, "error", err)
			t.Pause()
			return
		}
	}
	if finished {
		t.Pause()
	}
}
