package export

import (
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

// Events lists the clips of p in EDL order: by track, then by record start.
// Clips whose media is missing from the library are returned as unresolved.
func Events(p timeline.Project) ([]Event, []string) {
	media := make(map[string]timeline.MediaItem, len(p.Media))
	for _, m := range p.Media {
		media[m.ID] = m
	}

	clips := slices.Clone(p.Clips)
	slices.SortStableFunc(clips, func(a, b timeline.Clip) int {
		if ta, tb := trackOrder(a.TrackID), trackOrder(b.TrackID); ta != tb {
			return ta - tb
		}
		return a.StartFrame - b.StartFrame
	})

	events := make([]Event, 0, len(clips))
	unresolved := make([]string, 0)
	for _, c := range clips {
		m, ok := media[c.MediaID]
		if !ok {
			unresolved = append(unresolved, c.ID)
			continue
		}
		name := SanitizeName(strings.TrimSuffix(filepath.Base(m.Path), filepath.Ext(m.Path)), 160)
		events = append(events, Event{
			Reel:      ReelName(m.Path),
			Track:     edlTrack(c.TrackID),
			ClipName:  name,
			MediaPath: m.Path,
			SourceIn:  c.InFrame,
			SourceOut: c.OutFrame,
			RecordIn:  c.StartFrame,
			RecordOut: c.EndFrame(),
		})
	}
	return events, unresolved
}

// GenerateEDL renders events as a CMX3600 edit decision list.
func GenerateEDL(events []Event, title string, frameRate float64) string {
	tc := newTimecoder(frameRate)

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if tc.drop > 0 {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for i, ev := range events {
		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, ev.Reel, ev.Track,
				tc.format(ev.SourceIn), tc.format(ev.SourceOut), tc.format(ev.RecordIn), tc.format(ev.RecordOut)),
			fmt.Sprintf("* FROM CLIP NAME:  %s", ev.ClipName),
			fmt.Sprintf("* MEDIA PATH:  %s", ev.MediaPath),
		)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// ReelName derives an eight character reel id from a media file name.
func ReelName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var b strings.Builder
	for _, r := range strings.ToUpper(base) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			if b.Len() == 8 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "AX"
	}
	return b.String()
}

func trackOrder(trackID string) int {
	if i := slices.Index(timeline.Tracks, trackID); i >= 0 {
		return i
	}
	return len(timeline.Tracks)
}

func edlTrack(trackID string) string {
	if cat, ok := timeline.TrackCategory(trackID); ok && cat == timeline.CategoryAudio {
		return "A"
	}
	return "V"
}

type timecoder struct {
	fps  int
	drop int
}

func newTimecoder(frameRate float64) timecoder {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}
	tc := timecoder{fps: fps}
	if math.Abs(frameRate-29.97) < 0.01 {
		tc.drop = 2
	} else if math.Abs(frameRate-59.94) < 0.01 {
		tc.drop = 4
	}
	return tc
}

// format renders a frame count as HH:MM:SS:FF, or HH:MM:SS;FF with frame
// numbers skipped at each minute except every tenth for drop-frame rates.
func (tc timecoder) format(frames int) string {
	if frames < 0 {
		frames = 0
	}
	sep := ":"
	if tc.drop > 0 {
		sep = ";"
		perMinute := tc.fps*60 - tc.drop
		perTenMinutes := perMinute*10 + tc.drop
		d := frames / perTenMinutes
		m := frames % perTenMinutes
		frames += tc.drop * 9 * d
		if m > tc.drop {
			frames += tc.drop * ((m - tc.drop) / perMinute)
		}
	}

	ff := frames % tc.fps
	totalSeconds := frames / tc.fps
	ss := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	mm := totalMinutes % 60
	hh := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d%s%02d", hh, mm, ss, sep, ff)
}
