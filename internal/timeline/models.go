// Package timeline holds the authoritative edit state of a project: the media
// library, the clips placed on tracks, and the operations that mutate them.
package timeline

import (
	"errors"
	"math"
)

type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

// Valid reports whether k is one of the known media kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindVideo, KindImage, KindAudio:
		return true
	}
	return false
}

// Visual reports whether clips of this kind can be shown in the preview.
func (k Kind) Visual() bool {
	return k == KindVideo || k == KindImage
}

const (
	DefaultFPS            = 25.0
	DefaultPixelsPerFrame = 4.0

	// ImageDurationSeconds is the fixed length given to still images on import.
	ImageDurationSeconds = 2.0
	// FallbackClipSeconds is used when the media has no known frame count.
	FallbackClipSeconds = 2.0
	// MaxVideoClipSeconds caps the default length of a freshly added video clip.
	MaxVideoClipSeconds = 5.0
)

var (
	ErrMediaNotFound = errors.New("media not found")
	ErrClipNotFound  = errors.New("clip not found")
	ErrUnknownTrack  = errors.New("unknown track")
	ErrTrackMismatch = errors.New("media kind not allowed on track")
	ErrClipTooShort  = errors.New("clip too short to cut")
	ErrMediaInUse    = errors.New("media referenced by clips")
	ErrInvalidKind   = errors.New("invalid media kind")
)

type MediaItem struct {
	ID              string   `json:"id"`
	Path            string   `json:"path"`
	Kind            Kind     `json:"kind"`
	FPS             *float64 `json:"fps,omitempty"`
	FrameCount      *int     `json:"frameCount,omitempty"`
	DurationSeconds *float64 `json:"durationSeconds,omitempty"`
	Width           int      `json:"width,omitempty"`
	Height          int      `json:"height,omitempty"`
}

type Clip struct {
	ID         string `json:"id"`
	MediaID    string `json:"mediaId"`
	TrackID    string `json:"trackId"`
	StartFrame int    `json:"startFrame"`
	InFrame    int    `json:"inFrame"`
	OutFrame   int    `json:"outFrame"`
	Kind       Kind   `json:"kind"`
}

// Duration is the clip length in frames.
func (c Clip) Duration() int {
	return c.OutFrame - c.InFrame
}

// EndFrame is the first timeline frame after the clip.
func (c Clip) EndFrame() int {
	return c.StartFrame + c.Duration()
}

// Covers reports whether the clip occupies the given timeline frame.
func (c Clip) Covers(frame int) bool {
	return frame >= c.StartFrame && frame < c.EndFrame()
}

// Project is the aggregate exchanged with the UI on every command round trip.
type Project struct {
	FPS            float64     `json:"fps"`
	PixelsPerFrame float64     `json:"pixelsPerFrame"`
	PlayheadFrame  int         `json:"playheadFrame"`
	SelectedClipID *string     `json:"selectedClipId"`
	Media          []MediaItem `json:"media"`
	Clips          []Clip      `json:"clips"`
}

// NewProject returns an empty project. Non-positive values fall back to defaults.
func NewProject(fps, pixelsPerFrame float64) Project {
	if !positive(fps) {
		fps = DefaultFPS
	}
	if !positive(pixelsPerFrame) {
		pixelsPerFrame = DefaultPixelsPerFrame
	}
	return Project{
		FPS:            fps,
		PixelsPerFrame: pixelsPerFrame,
		Media:          []MediaItem{},
		Clips:          []Clip{},
	}
}

// Clone returns a deep copy so a command can be applied without touching
// the snapshot it started from.
func (p Project) Clone() Project {
	out := p
	if p.SelectedClipID != nil {
		id := *p.SelectedClipID
		out.SelectedClipID = &id
	}
	out.Media = make([]MediaItem, len(p.Media))
	for i, m := range p.Media {
		out.Media[i] = m.clone()
	}
	out.Clips = make([]Clip, len(p.Clips))
	copy(out.Clips, p.Clips)
	return out
}

// Selected returns the selected clip id, or "" when nothing is selected.
func (p Project) Selected() string {
	if p.SelectedClipID == nil {
		return ""
	}
	return *p.SelectedClipID
}

func (p *Project) selectClip(id string) {
	if id == "" {
		p.SelectedClipID = nil
		return
	}
	p.SelectedClipID = &id
}

// Validate checks the referential invariants of a snapshot.
func (p Project) Validate() error {
	if !positive(p.FPS) {
		return errors.New("fps must be positive")
	}
	if p.PlayheadFrame < 0 {
		return errors.New("playhead must not be negative")
	}
	media := make(map[string]bool, len(p.Media))
	for _, m := range p.Media {
		if media[m.ID] {
			return errors.New("duplicate media id " + m.ID)
		}
		if !m.Kind.Valid() {
			return ErrInvalidKind
		}
		media[m.ID] = true
	}
	clips := make(map[string]bool, len(p.Clips))
	for _, c := range p.Clips {
		if clips[c.ID] {
			return errors.New("duplicate clip id " + c.ID)
		}
		if !media[c.MediaID] {
			return ErrMediaNotFound
		}
		if c.Duration() < 1 {
			return errors.New("clip " + c.ID + " has no frames")
		}
		if c.StartFrame < 0 {
			return errors.New("clip " + c.ID + " starts before zero")
		}
		if !TrackAccepts(c.TrackID, c.Kind) {
			return ErrTrackMismatch
		}
		clips[c.ID] = true
	}
	if p.SelectedClipID != nil && !clips[*p.SelectedClipID] {
		return ErrClipNotFound
	}
	return nil
}

func (m MediaItem) clone() MediaItem {
	out := m
	if m.FPS != nil {
		v := *m.FPS
		out.FPS = &v
	}
	if m.FrameCount != nil {
		v := *m.FrameCount
		out.FrameCount = &v
	}
	if m.DurationSeconds != nil {
		v := *m.DurationSeconds
		out.DurationSeconds = &v
	}
	return out
}

// SecondsToFrames converts a duration to whole frames, never less than one.
func SecondsToFrames(seconds, fps float64) int {
	n := int(math.Round(seconds * fps))
	if n < 1 {
		return 1
	}
	return n
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
