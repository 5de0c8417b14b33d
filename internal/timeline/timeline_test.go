package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs(prefix string) IDGenerator {
	n := 0
	return IDFunc(func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	})
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func newTestTimeline(t *testing.T) (*Project, *Timeline) {
	t.Helper()
	p := NewProject(25, 4)
	p.Media = []MediaItem{
		{ID: "vid", Path: "/media/a.mp4", Kind: KindVideo, FPS: floatPtr(25), FrameCount: intPtr(250), DurationSeconds: floatPtr(10)},
		{ID: "short", Path: "/media/b.mp4", Kind: KindVideo, FPS: floatPtr(25), FrameCount: intPtr(40)},
		{ID: "img", Path: "/media/c.png", Kind: KindImage, FrameCount: intPtr(50), DurationSeconds: floatPtr(2)},
		{ID: "aud", Path: "/media/d.wav", Kind: KindAudio, DurationSeconds: floatPtr(12.5)},
		{ID: "unprobed", Path: "/media/e.mov", Kind: KindVideo},
	}
	return &p, New(&p, seqIDs("clip-"))
}

func TestAddClip_CapsVideoAtFiveSeconds(t *testing.T) {
	p, tl := newTestTimeline(t)

	clip, err := tl.AddClip("vid", "V1", 0)
	require.NoError(t, err)

	assert.Equal(t, 0, clip.InFrame)
	assert.Equal(t, 125, clip.OutFrame)
	assert.Equal(t, KindVideo, clip.Kind)
	assert.Equal(t, clip.ID, p.Selected())
	assert.Len(t, p.Clips, 1)
}

func TestAddClip_DefaultDurations(t *testing.T) {
	tests := []struct {
		name    string
		mediaID string
		trackID string
		want    int
	}{
		{"short video keeps frame count", "short", "V2", 40},
		{"image uses derived frame count", "img", "V3", 50},
		{"audio without frame count", "aud", "A1", 50},
		{"video without probe", "unprobed", "V1", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, tl := newTestTimeline(t)
			clip, err := tl.AddClip(tt.mediaID, tt.trackID, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, clip.Duration())
			assert.Equal(t, 10, clip.StartFrame)
		})
	}
}

func TestAddClip_MinFramesAndFPS(t *testing.T) {
	m := MediaItem{Kind: KindVideo, FrameCount: intPtr(1000)}
	for _, fps := range []float64{24, 30, 60} {
		assert.Equal(t, min(1000, SecondsToFrames(5, fps)), DefaultClipFrames(m, fps))
	}
}

func TestAddClip_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mediaID string
		trackID string
		wantErr error
	}{
		{"video on audio track", "vid", "A1", ErrTrackMismatch},
		{"audio on video track", "aud", "V1", ErrTrackMismatch},
		{"missing media", "nope", "V1", ErrMediaNotFound},
		{"unknown track", "vid", "V9", ErrUnknownTrack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, tl := newTestTimeline(t)
			_, err := tl.AddClip(tt.mediaID, tt.trackID, 0)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, p.Clips)
			assert.Nil(t, p.SelectedClipID)
		})
	}
}

func TestAddClip_ClampsNegativeStart(t *testing.T) {
	_, tl := newTestTimeline(t)
	clip, err := tl.AddClip("vid", "V1", -30)
	require.NoError(t, err)
	assert.Equal(t, 0, clip.StartFrame)
}

func TestMoveClip(t *testing.T) {
	p, tl := newTestTimeline(t)
	clip, err := tl.AddClip("vid", "V1", 0)
	require.NoError(t, err)

	moved, err := tl.MoveClip(clip.ID, 40, "V3")
	require.NoError(t, err)
	assert.Equal(t, 40, moved.StartFrame)
	assert.Equal(t, "V3", moved.TrackID)

	moved, err = tl.MoveClip(clip.ID, 75, "A2")
	require.NoError(t, err)
	assert.Equal(t, 75, moved.StartFrame)
	assert.Equal(t, "V3", moved.TrackID, "incompatible track must be ignored")

	moved, err = tl.MoveClip(clip.ID, -5, "")
	require.NoError(t, err)
	assert.Equal(t, 0, moved.StartFrame)
	assert.Equal(t, moved, p.Clips[0])

	_, err = tl.MoveClip("missing", 10, "V1")
	require.ErrorIs(t, err, ErrClipNotFound)
}

func TestDeleteClip_ClearsSelection(t *testing.T) {
	p, tl := newTestTimeline(t)
	a, _ := tl.AddClip("vid", "V1", 0)
	b, _ := tl.AddClip("img", "V2", 0)
	require.Equal(t, b.ID, p.Selected())

	require.NoError(t, tl.DeleteClip(a.ID))
	assert.Equal(t, b.ID, p.Selected(), "deleting an unselected clip keeps selection")

	require.NoError(t, tl.DeleteClip(b.ID))
	assert.Nil(t, p.SelectedClipID)
	assert.Empty(t, p.Clips)

	require.ErrorIs(t, tl.DeleteClip(b.ID), ErrClipNotFound)
}

func TestRazorCut_Scenario(t *testing.T) {
	p, tl := newTestTimeline(t)
	clip, err := tl.AddClip("vid", "V1", 0)
	require.NoError(t, err)
	require.Equal(t, 125, clip.OutFrame)

	first, second, err := tl.RazorCut(clip.ID, 50)
	require.NoError(t, err)

	assert.Equal(t, Clip{ID: clip.ID, MediaID: "vid", TrackID: "V1", StartFrame: 0, InFrame: 0, OutFrame: 50, Kind: KindVideo}, first)
	assert.Equal(t, Clip{ID: second.ID, MediaID: "vid", TrackID: "V1", StartFrame: 50, InFrame: 50, OutFrame: 125, Kind: KindVideo}, second)
	assert.NotEqual(t, clip.ID, second.ID)
	assert.Equal(t, clip.ID, p.Selected())
	assert.Len(t, p.Clips, 2)
}

func TestRazorCut_CoverageIsPreserved(t *testing.T) {
	for offset := -3; offset <= 130; offset += 7 {
		t.Run(fmt.Sprintf("offset_%d", offset), func(t *testing.T) {
			_, tl := newTestTimeline(t)
			orig, err := tl.AddClip("vid", "V2", 17)
			require.NoError(t, err)

			first, second, err := tl.RazorCut(orig.ID, offset)
			require.NoError(t, err)

			assert.Equal(t, orig.Duration(), first.Duration()+second.Duration())
			assert.GreaterOrEqual(t, first.Duration(), 1)
			assert.GreaterOrEqual(t, second.Duration(), 1)
			assert.Equal(t, orig.InFrame, first.InFrame)
			assert.Equal(t, first.OutFrame, second.InFrame)
			assert.Equal(t, orig.OutFrame, second.OutFrame)
			assert.Equal(t, orig.StartFrame, first.StartFrame)
			assert.Equal(t, first.EndFrame(), second.StartFrame)
			assert.Equal(t, orig.EndFrame(), second.EndFrame())
		})
	}
}

func TestRazorCut_RepeatedCutsNeverCollide(t *testing.T) {
	p, tl := newTestTimeline(t)
	clip, _ := tl.AddClip("vid", "V1", 0)

	for i := 0; i < 5; i++ {
		_, _, err := tl.RazorCut(clip.ID, 10)
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	for _, c := range p.Clips {
		require.False(t, seen[c.ID], "duplicate clip id %s", c.ID)
		seen[c.ID] = true
	}
	require.NoError(t, p.Validate())
}

func TestRazorCut_Rejections(t *testing.T) {
	p, tl := newTestTimeline(t)
	_, _, err := tl.RazorCut("missing", 5)
	require.ErrorIs(t, err, ErrClipNotFound)

	p.Clips = append(p.Clips, Clip{ID: "one", MediaID: "vid", TrackID: "V1", InFrame: 3, OutFrame: 4, Kind: KindVideo})
	tl = New(p, seqIDs("x"))
	before := p.Clone()

	_, _, err = tl.RazorCut("one", 1)
	require.ErrorIs(t, err, ErrClipTooShort)
	if diff := cmp.Diff(before, *p); diff != "" {
		t.Fatalf("project changed after rejected cut (-want +got):\n%s", diff)
	}
}

func TestSelect(t *testing.T) {
	p, tl := newTestTimeline(t)
	a, _ := tl.AddClip("vid", "V1", 0)
	tl.AddClip("img", "V2", 0)

	require.NoError(t, tl.Select(a.ID))
	assert.Equal(t, a.ID, p.Selected())

	require.ErrorIs(t, tl.Select("missing"), ErrClipNotFound)
	assert.Equal(t, a.ID, p.Selected())

	require.NoError(t, tl.Select(""))
	assert.Nil(t, p.SelectedClipID)
}

func TestProject_JSONRoundTrip(t *testing.T) {
	p, tl := newTestTimeline(t)
	tl.AddClip("vid", "V1", 0)
	tl.AddClip("aud", "A1", 12)
	p.PlayheadFrame = 33

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded Project
	require.NoError(t, json.Unmarshal(data, &decoded))
	if diff := cmp.Diff(*p, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	again, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestProject_JSONShape(t *testing.T) {
	p := NewProject(30, 2)
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fps":30,"pixelsPerFrame":2,"playheadFrame":0,"selectedClipId":null,"media":[],"clips":[]}`, string(data))
}

func TestProject_CloneIsDeep(t *testing.T) {
	p, tl := newTestTimeline(t)
	tl.AddClip("vid", "V1", 0)

	c := p.Clone()
	c.Clips[0].StartFrame = 99
	*c.Media[0].FrameCount = 1
	*c.SelectedClipID = "other"

	assert.Equal(t, 0, p.Clips[0].StartFrame)
	assert.Equal(t, 250, *p.Media[0].FrameCount)
	assert.NotEqual(t, "other", p.Selected())
}

func TestProject_Validate(t *testing.T) {
	p, tl := newTestTimeline(t)
	tl.AddClip("vid", "V1", 0)
	require.NoError(t, p.Validate())

	broken := p.Clone()
	broken.Clips[0].MediaID = "ghost"
	assert.True(t, errors.Is(broken.Validate(), ErrMediaNotFound))

	broken = p.Clone()
	ghost := "ghost"
	broken.SelectedClipID = &ghost
	assert.True(t, errors.Is(broken.Validate(), ErrClipNotFound))

	broken = p.Clone()
	broken.Clips[0].TrackID = "A1"
	assert.True(t, errors.Is(broken.Validate(), ErrTrackMismatch))
}

func TestProject_End(t *testing.T) {
	p, tl := newTestTimeline(t)
	assert.Equal(t, 0, p.End())
	tl.AddClip("vid", "V1", 10)
	tl.AddClip("aud", "A1", 100)
	assert.Equal(t, 150, p.End())
}

func TestTrackPriority(t *testing.T) {
	assert.Equal(t, 1, TrackPriority("V1"))
	assert.Equal(t, 3, TrackPriority("V3"))
	assert.Equal(t, 12, TrackPriority("V12"))
	assert.Equal(t, 0, TrackPriority("video"))
	assert.True(t, TrackAccepts("V2", KindImage))
	assert.False(t, TrackAccepts("A2", KindImage))
	assert.False(t, TrackAccepts("X1", KindVideo))
}
