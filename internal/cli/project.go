package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/heimdex/heimdex-timeline/internal/editor"
	"github.com/heimdex/heimdex-timeline/internal/logging"
	"github.com/heimdex/heimdex-timeline/internal/media"
	"github.com/heimdex/heimdex-timeline/internal/preview"
	"github.com/heimdex/heimdex-timeline/internal/store"
	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

var ErrProjectMissing = errors.New("project file does not exist, run init first")

func loadProject(path string) (timeline.Project, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return timeline.Project{}, fmt.Errorf("%w: %s", ErrProjectMissing, path)
	}
	if err != nil {
		return timeline.Project{}, fmt.Errorf("read project: %w", err)
	}

	var p timeline.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return timeline.Project{}, fmt.Errorf("parse project %s: %w", path, err)
	}
	if p.Media == nil {
		p.Media = []timeline.MediaItem{}
	}
	if p.Clips == nil {
		p.Clips = []timeline.Clip{}
	}
	if err := p.Validate(); err != nil {
		return timeline.Project{}, fmt.Errorf("invalid project %s: %w", path, err)
	}
	return p, nil
}

func saveProject(path string, p timeline.Project) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// fileJournal persists every committed snapshot back to the project file.
// Command history is not kept for files.
type fileJournal struct {
	path string
}

func (j fileJournal) SaveSnapshot(_ context.Context, _ string, p timeline.Project) error {
	return saveProject(j.path, p)
}

func (fileJournal) AppendCommand(context.Context, *store.CommandRecord) error {
	return nil
}

// openSession loads the project file and wraps it in an editor session that
// writes through to the same file.
func (o *options) openSession(stderr io.Writer) (*editor.Session, error) {
	p, err := loadProject(o.projectPath)
	if err != nil {
		return nil, err
	}

	logger := logging.WithComponent(o.logger(stderr), "timelinectl")
	return editor.NewSession(editor.Options{
		ProjectID: o.projectPath,
		Project:   p,
		Journal:   fileJournal{path: o.projectPath},
		Prober:    media.NewImporter(media.NewFFprobe(o.ffprobe, logger), logger),
		Resolver:  preview.NewResolver(media.NewFFmpegFrames(o.ffmpeg, logger), logger),
		Logger:    logger,
	}), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
