package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/heimdex/heimdex-timeline/internal/command"
	"github.com/heimdex/heimdex-timeline/internal/editor"
	"github.com/heimdex/heimdex-timeline/internal/playback"
	"github.com/heimdex/heimdex-timeline/internal/preview"
	"github.com/heimdex/heimdex-timeline/internal/store"
	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

const testToken = "test-token"

type fakeEditor struct {
	mu        sync.Mutex
	id        string
	project   timeline.Project
	applied   [][]byte
	applyRes  editor.Result
	applyErr  error
	imported  []string
	importErr error
	frame     *preview.Frame
}

func (f *fakeEditor) ProjectID() string {
	if f.id == "" {
		return "proj-1"
	}
	return f.id
}

func (f *fakeEditor) Snapshot() timeline.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.project.Clone()
}

func (f *fakeEditor) Apply(_ context.Context, raw []byte) (editor.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, raw)
	return f.applyRes, f.applyErr
}

func (f *fakeEditor) Execute(context.Context, command.Command) (editor.Result, error) {
	return f.applyRes, f.applyErr
}

func (f *fakeEditor) Import(_ context.Context, path string) (timeline.MediaItem, error) {
	if f.importErr != nil {
		return timeline.MediaItem{}, f.importErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imported = append(f.imported, path)
	return timeline.MediaItem{ID: "m1", Path: path, Kind: timeline.KindVideo}, nil
}

func (f *fakeEditor) ImportFolder(_ context.Context, dir string) ([]timeline.MediaItem, error) {
	if f.importErr != nil {
		return nil, f.importErr
	}
	return []timeline.MediaItem{
		{ID: "m1", Path: filepath.Join(dir, "a.mp4"), Kind: timeline.KindVideo},
		{ID: "m2", Path: filepath.Join(dir, "b.wav"), Kind: timeline.KindAudio},
	}, nil
}

func (f *fakeEditor) Seek(context.Context, int) error { return nil }

func (f *fakeEditor) Preview(context.Context) *preview.Frame { return f.frame }

func (f *fakeEditor) Subscribe(func(timeline.Project)) {}

type fakePlayback struct {
	playing bool
	playErr error
}

func (f *fakePlayback) Play(context.Context) error {
	if f.playErr != nil {
		return f.playErr
	}
	f.playing = true
	return nil
}

func (f *fakePlayback) Pause() { f.playing = false }

func (f *fakePlayback) Status() playback.Status {
	return playback.Status{Running: true, Playing: f.playing}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRepository(t *testing.T) *store.SQLiteRepository {
	t.Helper()

	database, err := store.Open(filepath.Join(t.TempDir(), "test.db"), testLogger())
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := store.NewRepository(database.Conn())
	if err := repo.SetConfig(context.Background(), store.ConfigKeyAuthToken, testToken); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}
	return repo
}

func testServerConfig(t *testing.T, ed *fakeEditor) ServerConfig {
	t.Helper()
	return ServerConfig{
		Editor:     ed,
		Playback:   &fakePlayback{},
		Repository: testRepository(t),
		Logger:     testLogger(),
		StartTime:  time.Now(),
		Version:    "test",
	}
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeJSONBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (body=%q)", err, rr.Body.String())
	}
	return body
}
