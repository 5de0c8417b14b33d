// Package preview decides which source frame is visible under the playhead
// and fetches it through the host's decoding collaborator.
package preview

import (
	"context"
	"image"
	"log/slog"
	"sort"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

// FrameSource is the decoding collaborator. Implementations may block but
// must return in bounded time.
type FrameSource interface {
	DecodeFrame(ctx context.Context, path string, frameIndex int) (image.Image, error)
	LoadImage(ctx context.Context, path string) (image.Image, error)
}

// Target identifies the visible frame without decoding it.
type Target struct {
	Clip  timeline.Clip
	Media timeline.MediaItem
	// MediaFrame is the frame index within the source video; -1 for stills.
	MediaFrame int
}

// IsStill reports whether the target is an image clip.
func (t Target) IsStill() bool {
	return t.Clip.Kind == timeline.KindImage
}

type Frame struct {
	ClipID     string
	MediaID    string
	MediaFrame int
	Image      image.Image
}

// MissFunc is notified whenever a target exists but its pixels could not
// be produced.
type MissFunc func(t Target, err error)

type Resolver struct {
	source FrameSource
	logger *slog.Logger
	onMiss MissFunc
}

func NewResolver(source FrameSource, logger *slog.Logger) *Resolver {
	return &Resolver{source: source, logger: logger}
}

// OnMiss registers a callback for collaborator failures.
func (r *Resolver) OnMiss(fn MissFunc) {
	r.onMiss = fn
}

// Resolve picks the clip drawn at the playhead: visual clips covering it,
// highest track priority first, insertion order breaking ties.
func Resolve(p timeline.Project) (Target, bool) {
	var candidates []timeline.Clip
	for _, c := range p.Clips {
		if c.Kind.Visual() && c.Covers(p.PlayheadFrame) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return Target{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return timeline.TrackPriority(candidates[i].TrackID) > timeline.TrackPriority(candidates[j].TrackID)
	})
	top := candidates[0]

	var media timeline.MediaItem
	for _, m := range p.Media {
		if m.ID == top.MediaID {
			media = m
			break
		}
	}

	t := Target{Clip: top, Media: media, MediaFrame: -1}
	if top.Kind == timeline.KindVideo {
		t.MediaFrame = top.InFrame + (p.PlayheadFrame - top.StartFrame)
	}
	return t, true
}

// Render resolves and decodes the visible frame. It returns nil when nothing
// is visible or the collaborator fails; failures are logged, never returned.
func (r *Resolver) Render(ctx context.Context, p timeline.Project) *Frame {
	t, ok := Resolve(p)
	if !ok {
		return nil
	}
	if r.source == nil {
		return nil
	}
	if t.Media.Path == "" {
		r.miss(t, errMissingMedia)
		return nil
	}

	var (
		img image.Image
		err error
	)
	if t.IsStill() {
		img, err = r.source.LoadImage(ctx, t.Media.Path)
	} else {
		img, err = r.source.DecodeFrame(ctx, t.Media.Path, t.MediaFrame)
	}
	if err == nil && img == nil {
		err = errNoImage
	}
	if err != nil {
		r.miss(t, err)
		return nil
	}

	return &Frame{
		ClipID:     t.Clip.ID,
		MediaID:    t.Media.ID,
		MediaFrame: t.MediaFrame,
		Image:      img,
	}
}

func (r *Resolver) miss(t Target, err error) {
	if r.logger != nil {
		r.logger.Warn("preview frame unavailable",
			"clip_id", t.Clip.ID,
			"media_id", t.Media.ID,
			"media_frame", t.MediaFrame,
			"error", err,
		)
	}
	if r.onMiss != nil {
		r.onMiss(t, err)
	}
}
