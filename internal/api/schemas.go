package api

import (
	"time"

	"github.com/heimdex/heimdex-timeline/internal/store"
	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	UptimeS   int64  `json:"uptime_s"`
	ProjectID string `json:"project_id"`
}

type ProjectResponse struct {
	ProjectID string           `json:"project_id"`
	Project   timeline.Project `json:"project"`
}

type ImportRequest struct {
	Path string `json:"path"`
}

type MediaResponse struct {
	Media []timeline.MediaItem `json:"media"`
}

type ImportFolderResponse struct {
	Imported []timeline.MediaItem `json:"imported"`
	Count    int                  `json:"count"`
}

type CommandRecordResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Payload   string `json:"payload"`
	Applied   bool   `json:"applied"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
}

type JournalResponse struct {
	Commands []CommandRecordResponse `json:"commands"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func CommandToResponse(c *store.CommandRecord) CommandRecordResponse {
	return CommandRecordResponse{
		ID:        c.ID,
		Type:      c.Type,
		Payload:   c.Payload,
		Applied:   c.Applied,
		Error:     c.Error,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
