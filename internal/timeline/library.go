package timeline

import "fmt"

// Probe is what the host collaborators learned about a file. Zero values
// mean "unknown".
type Probe struct {
	FPS             float64
	FrameCount      int
	Width           int
	Height          int
	DurationSeconds float64
}

// Library is the media registry of one project snapshot. It indexes the
// project's ordered media slice by id; the slice stays the source of truth.
type Library struct {
	project *Project
	ids     IDGenerator
	index   map[string]int
}

func NewLibrary(p *Project, ids IDGenerator) *Library {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	l := &Library{project: p, ids: ids}
	l.reindex()
	return l
}

func (l *Library) reindex() {
	l.index = make(map[string]int, len(l.project.Media))
	for i, m := range l.project.Media {
		if _, dup := l.index[m.ID]; !dup {
			l.index[m.ID] = i
		}
	}
}

// Register appends a new media item with metadata derived from probe.
// File existence is the importer's concern, not checked here.
func (l *Library) Register(path string, kind Kind, probe Probe) (MediaItem, error) {
	if !kind.Valid() {
		return MediaItem{}, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	item := DeriveMetadata(kind, probe, l.project.FPS)
	item.ID = l.ids.NewID()
	item.Path = path

	l.project.Media = append(l.project.Media, item)
	l.index[item.ID] = len(l.project.Media) - 1
	return item, nil
}

func (l *Library) Lookup(id string) (MediaItem, bool) {
	i, ok := l.index[id]
	if !ok {
		return MediaItem{}, false
	}
	return l.project.Media[i], true
}

// Remove deletes a media item. Items still referenced by a clip are kept.
func (l *Library) Remove(id string) error {
	i, ok := l.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMediaNotFound, id)
	}
	for _, c := range l.project.Clips {
		if c.MediaID == id {
			return fmt.Errorf("%w: %s", ErrMediaInUse, id)
		}
	}
	l.project.Media = append(l.project.Media[:i], l.project.Media[i+1:]...)
	l.reindex()
	return nil
}

func (l *Library) Len() int {
	return len(l.project.Media)
}

// DeriveMetadata fills the optional timing fields of a media item from the
// kind-specific probe result.
func DeriveMetadata(kind Kind, probe Probe, projectFPS float64) MediaItem {
	item := MediaItem{Kind: kind}

	switch kind {
	case KindVideo:
		item.Width = probe.Width
		item.Height = probe.Height
		if positive(probe.FPS) {
			fps := probe.FPS
			item.FPS = &fps
		}
		if probe.FrameCount > 0 {
			n := probe.FrameCount
			item.FrameCount = &n
			if item.FPS != nil {
				d := float64(n) / *item.FPS
				item.DurationSeconds = &d
			}
		}
	case KindImage:
		item.Width = probe.Width
		item.Height = probe.Height
		d := ImageDurationSeconds
		item.DurationSeconds = &d
		if !positive(projectFPS) {
			projectFPS = DefaultFPS
		}
		n := SecondsToFrames(d, projectFPS)
		item.FrameCount = &n
	case KindAudio:
		if positive(probe.DurationSeconds) {
			d := probe.DurationSeconds
			item.DurationSeconds = &d
		}
	}
	return item
}
