package store

import (
	"errors"
	"time"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

var ErrProjectExists = errors.New("project already exists")

// ProjectRecord is a named, persisted project snapshot.
type ProjectRecord struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Snapshot  timeline.Project `json:"snapshot"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// CommandRecord is one journaled command, whether it was applied or refused.
type CommandRecord struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Type      string    `json:"type"`
	Payload   string    `json:"payload"`
	Applied   bool      `json:"applied"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const ConfigKeyAuthToken = "auth_token"
