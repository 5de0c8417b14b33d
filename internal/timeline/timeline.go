package timeline

import "fmt"

// Timeline applies clip operations to a project snapshot in place. Callers
// that need the prior snapshot intact hand it a clone.
type Timeline struct {
	project *Project
	library *Library
	ids     IDGenerator
	index   map[string]int
}

func New(p *Project, ids IDGenerator) *Timeline {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	t := &Timeline{
		project: p,
		library: NewLibrary(p, ids),
		ids:     ids,
	}
	t.reindex()
	return t
}

func (t *Timeline) Library() *Library {
	return t.library
}

func (t *Timeline) reindex() {
	t.index = make(map[string]int, len(t.project.Clips))
	for i, c := range t.project.Clips {
		if _, dup := t.index[c.ID]; !dup {
			t.index[c.ID] = i
		}
	}
}

func (t *Timeline) Clip(id string) (Clip, bool) {
	i, ok := t.index[id]
	if !ok {
		return Clip{}, false
	}
	return t.project.Clips[i], true
}

// DefaultClipFrames is the length a clip of m gets when first dropped on the
// timeline at the given project rate.
func DefaultClipFrames(m MediaItem, fps float64) int {
	if m.FrameCount == nil || *m.FrameCount < 1 {
		return SecondsToFrames(FallbackClipSeconds, fps)
	}
	n := *m.FrameCount
	if m.Kind == KindVideo {
		if limit := SecondsToFrames(MaxVideoClipSeconds, fps); n > limit {
			n = limit
		}
	}
	return n
}

// AddClip places media on a track and selects the new clip.
func (t *Timeline) AddClip(mediaID, trackID string, startFrame int) (Clip, error) {
	m, ok := t.library.Lookup(mediaID)
	if !ok {
		return Clip{}, fmt.Errorf("%w: %s", ErrMediaNotFound, mediaID)
	}
	if _, ok := TrackCategory(trackID); !ok {
		return Clip{}, fmt.Errorf("%w: %s", ErrUnknownTrack, trackID)
	}
	if !TrackAccepts(trackID, m.Kind) {
		return Clip{}, fmt.Errorf("%w: %s on %s", ErrTrackMismatch, m.Kind, trackID)
	}

	clip := Clip{
		ID:         t.ids.NewID(),
		MediaID:    m.ID,
		TrackID:    trackID,
		StartFrame: max(startFrame, 0),
		InFrame:    0,
		OutFrame:   DefaultClipFrames(m, t.project.FPS),
		Kind:       m.Kind,
	}
	t.project.Clips = append(t.project.Clips, clip)
	t.index[clip.ID] = len(t.project.Clips) - 1
	t.project.selectClip(clip.ID)
	return clip, nil
}

// MoveClip repositions a clip. A track change that does not fit the clip's
// kind is dropped while the new start frame still applies.
func (t *Timeline) MoveClip(clipID string, startFrame int, trackID string) (Clip, error) {
	i, ok := t.index[clipID]
	if !ok {
		return Clip{}, fmt.Errorf("%w: %s", ErrClipNotFound, clipID)
	}
	c := &t.project.Clips[i]
	c.StartFrame = max(startFrame, 0)
	if trackID != "" && TrackAccepts(trackID, c.Kind) {
		c.TrackID = trackID
	}
	return *c, nil
}

func (t *Timeline) DeleteClip(clipID string) error {
	i, ok := t.index[clipID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrClipNotFound, clipID)
	}
	t.project.Clips = append(t.project.Clips[:i], t.project.Clips[i+1:]...)
	t.reindex()
	if t.project.Selected() == clipID {
		t.project.selectClip("")
	}
	return nil
}

// RazorCut splits a clip at offset frames from its start. The left part keeps
// the original id and becomes the selection; the right part is appended with
// a fresh id. Nothing changes unless both halves can be produced.
func (t *Timeline) RazorCut(clipID string, offset int) (Clip, Clip, error) {
	i, ok := t.index[clipID]
	if !ok {
		return Clip{}, Clip{}, fmt.Errorf("%w: %s", ErrClipNotFound, clipID)
	}
	orig := t.project.Clips[i]
	d := orig.Duration()
	if d < 2 {
		return Clip{}, Clip{}, fmt.Errorf("%w: %s has %d frame(s)", ErrClipTooShort, clipID, d)
	}
	offset = min(max(offset, 1), d-1)

	first := orig
	first.OutFrame = orig.InFrame + offset

	second := orig
	second.ID = t.ids.NewID()
	second.StartFrame = orig.StartFrame + offset
	second.InFrame = first.OutFrame
	second.OutFrame = orig.OutFrame

	t.project.Clips[i] = first
	t.project.Clips = append(t.project.Clips, second)
	t.index[second.ID] = len(t.project.Clips) - 1
	t.project.selectClip(first.ID)
	return first, second, nil
}

// Select marks a clip as selected; an empty id clears the selection.
func (t *Timeline) Select(clipID string) error {
	if clipID == "" {
		t.project.selectClip("")
		return nil
	}
	if _, ok := t.index[clipID]; !ok {
		return fmt.Errorf("%w: %s", ErrClipNotFound, clipID)
	}
	t.project.selectClip(clipID)
	return nil
}

// End returns the first frame after the last clip on any track.
func (p Project) End() int {
	end := 0
	for _, c := range p.Clips {
		end = max(end, c.EndFrame())
	}
	return end
}
