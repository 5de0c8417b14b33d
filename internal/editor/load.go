package editor

import (
	"context"
	"fmt"

	"github.com/heimdex/heimdex-timeline/internal/store"
	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

// LoadOrCreate returns the stored project called name, creating an empty
// one with the given defaults when it does not exist yet.
func LoadOrCreate(ctx context.Context, repo store.Repository, name string, fps, pixelsPerFrame float64) (*store.ProjectRecord, error) {
	rec, err := repo.GetProjectByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %q: %w", name, err)
	}
	if rec != nil {
		if err := rec.Snapshot.Validate(); err != nil {
			return nil, fmt.Errorf("stored project %q is invalid: %w", name, err)
		}
		return rec, nil
	}
	return repo.CreateProject(ctx, name, timeline.NewProject(fps, pixelsPerFrame))
}
