package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

type Repository interface {
	CreateProject(ctx context.Context, name string, snapshot timeline.Project) (*ProjectRecord, error)
	GetProject(ctx context.Context, id string) (*ProjectRecord, error)
	GetProjectByName(ctx context.Context, name string) (*ProjectRecord, error)
	ListProjects(ctx context.Context) ([]*ProjectRecord, error)
	SaveSnapshot(ctx context.Context, projectID string, snapshot timeline.Project) error

	AppendCommand(ctx context.Context, rec *CommandRecord) error
	ListCommands(ctx context.Context, projectID string, limit int) ([]*CommandRecord, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db *sql.DB

	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:     time.Now,
	}
}

func (r *SQLiteRepository) newID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(r.now()), r.entropy).String()
}

func (r *SQLiteRepository) CreateProject(ctx context.Context, name string, snapshot timeline.Project) (*ProjectRecord, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	now := r.now().UTC()
	rec := &ProjectRecord{
		ID:        r.newID(),
		Name:      name,
		Snapshot:  snapshot,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, snapshot, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, rec.Name, string(data), now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("%w: %s", ErrProjectExists, name)
		}
		return nil, err
	}
	return rec, nil
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*ProjectRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, snapshot, created_at, updated_at
		FROM projects WHERE id = ?
	`, id)
	return scanProject(row)
}

func (r *SQLiteRepository) GetProjectByName(ctx context.Context, name string) (*ProjectRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, snapshot, created_at, updated_at
		FROM projects WHERE name = ?
	`, name)
	return scanProject(row)
}

type scanner interface {
	Scan(dest ...any) error
}

// scanProject returns nil, nil when the row does not exist.
func scanProject(row scanner) (*ProjectRecord, error) {
	var rec ProjectRecord
	var snapshot, createdAt, updatedAt string

	err := row.Scan(&rec.ID, &rec.Name, &snapshot, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(snapshot), &rec.Snapshot); err != nil {
		return nil, fmt.Errorf("corrupt snapshot for project %s: %w", rec.ID, err)
	}
	rec.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	rec.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return &rec, nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]*ProjectRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, snapshot, created_at, updated_at
		FROM projects ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*ProjectRecord
	for rows.Next() {
		rec, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, rec)
	}
	return projects, rows.Err()
}

func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, projectID string, snapshot timeline.Project) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE projects SET snapshot = ?, updated_at = ? WHERE id = ?",
		string(data), r.now().UTC().Format(timeLayout), projectID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("project %s not found", projectID)
	}
	return nil
}

// AppendCommand journals a command. ID and CreatedAt are filled in when empty.
func (r *SQLiteRepository) AppendCommand(ctx context.Context, rec *CommandRecord) error {
	if rec.ID == "" {
		rec.ID = r.newID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO commands (id, project_id, type, payload, applied, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.ProjectID, rec.Type, rec.Payload, boolToInt(rec.Applied), nullString(rec.Error), rec.CreatedAt.UTC().Format(timeLayout))
	return err
}

// ListCommands returns the newest journal entries first.
func (r *SQLiteRepository) ListCommands(ctx context.Context, projectID string, limit int) ([]*CommandRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, type, payload, applied, error, created_at
		FROM commands WHERE project_id = ? ORDER BY id DESC LIMIT ?
	`, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []*CommandRecord
	for rows.Next() {
		var c CommandRecord
		var applied int
		var errMsg sql.NullString
		var createdAt string

		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Type, &c.Payload, &applied, &errMsg, &createdAt); err != nil {
			return nil, err
		}
		c.Applied = applied == 1
		c.Error = errMsg.String
		c.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		cmds = append(cmds, &c)
	}
	return cmds, rows.Err()
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
