package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

// Probed is the result of inspecting one file before it is registered.
type Probed struct {
	Path  string
	Kind  timeline.Kind
	Probe timeline.Probe
}

// Importer validates and probes files. Registration into a project is left
// to the caller that owns the snapshot.
type Importer struct {
	prober Prober
	logger *slog.Logger
}

func NewImporter(prober Prober, logger *slog.Logger) *Importer {
	return &Importer{prober: prober, logger: logger}
}

// Probe checks that path is a readable file, classifies it and gathers
// metadata. Probe failures are logged and leave the metadata empty.
func (im *Importer) Probe(ctx context.Context, path string) (Probed, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Probed{}, fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return Probed{}, fmt.Errorf("path does not exist: %w", err)
	}
	if info.IsDir() {
		return Probed{}, fmt.Errorf("path is a directory")
	}

	out := Probed{Path: absPath, Kind: Classify(absPath)}
	if im.prober == nil {
		return out, nil
	}

	switch out.Kind {
	case timeline.KindVideo:
		probe, err := im.prober.ProbeVideo(ctx, absPath)
		if err != nil {
			im.warn("video probe failed", absPath, err)
			break
		}
		out.Probe = probe
	case timeline.KindAudio:
		d, err := im.prober.ProbeAudioDuration(ctx, absPath)
		if err != nil {
			im.warn("audio probe failed", absPath, err)
			break
		}
		out.Probe.DurationSeconds = d
	}
	return out, nil
}

func (im *Importer) warn(msg, path string, err error) {
	if im.logger != nil {
		im.logger.Warn(msg, "path", path, "error", err)
	}
}
