package cli

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--ffprobe", "/nonexistent/ffprobe", "--ffmpeg", "/nonexistent/ffmpeg"))

	err := root.Execute()
	return out.String(), err
}

func writePNG(t *testing.T, path string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	for y := 0; y < 9; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{G: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestInit_CreatesAndRefusesOverwrite(t *testing.T) {
	project := filepath.Join(t.TempDir(), "p.json")

	_, err := run(t, "", "init", "-p", project, "--fps", "30")
	require.NoError(t, err)

	p, err := loadProject(project)
	require.NoError(t, err)
	assert.Equal(t, 30.0, p.FPS)
	assert.Empty(t, p.Clips)

	_, err = run(t, "", "init", "-p", project)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "", "init", "-p", project, "--force", "--fps", "24")
	require.NoError(t, err)
	p, err = loadProject(project)
	require.NoError(t, err)
	assert.Equal(t, 24.0, p.FPS)
}

func TestCommands_RequireProjectFile(t *testing.T) {
	project := filepath.Join(t.TempDir(), "missing.json")

	_, err := run(t, "", "show", "-p", project)
	assert.ErrorIs(t, err, ErrProjectMissing)

	_, err = run(t, "", "apply", "-p", project, `{"type":"SET_PLAYHEAD","frame":1}`)
	assert.ErrorIs(t, err, ErrProjectMissing)
}

func TestImportApplyPreviewExport(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "p.json")
	still := filepath.Join(dir, "title card.png")
	writePNG(t, still)

	_, err := run(t, "", "init", "-p", project)
	require.NoError(t, err)

	out, err := run(t, "", "import", "-p", project, still)
	require.NoError(t, err)
	var items []timeline.MediaItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, timeline.KindImage, items[0].Kind)
	require.NotNil(t, items[0].FrameCount)
	assert.Equal(t, 50, *items[0].FrameCount)

	stdin := strings.Join([]string{
		`{"type":"ADD_CLIP","mediaId":"` + items[0].ID + `","trackId":"V1","startFrame":0}`,
		"# comments and blank lines are skipped",
		"",
		`{"type":"ADD_CLIP","mediaId":"` + items[0].ID + `","trackId":"A1","startFrame":0}`,
		`{"type":"SET_PLAYHEAD","frame":10}`,
	}, "\n")
	out, err = run(t, stdin, "apply", "-p", project)
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	var lines []applyLine
	for dec.More() {
		var l applyLine
		require.NoError(t, dec.Decode(&l))
		lines = append(lines, l)
	}
	require.Len(t, lines, 3)
	assert.True(t, lines[0].Applied)
	assert.False(t, lines[1].Applied, "image on an audio track is refused")
	assert.NotEmpty(t, lines[1].Reason)
	assert.Equal(t, "SET_PLAYHEAD", lines[2].Type)

	p, err := loadProject(project)
	require.NoError(t, err)
	require.Len(t, p.Clips, 1)
	assert.Equal(t, 10, p.PlayheadFrame)

	jpg := filepath.Join(dir, "frame.jpg")
	out, err = run(t, "", "preview", "-p", project, "-o", jpg)
	require.NoError(t, err)
	assert.Contains(t, out, p.Clips[0].ID)
	data, err := os.ReadFile(jpg)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8}, data[:2])

	_, err = run(t, "", "preview", "-p", project, "-o", jpg, "--frame", "500")
	assert.ErrorIs(t, err, ErrNothingVisible)

	exportDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(exportDir, 0o755))
	out, err = run(t, "", "export-edl", "-p", project, "-o", exportDir, "-t", "Rough Cut")
	require.NoError(t, err)
	assert.Contains(t, out, `"event_count": 1`)

	edl, err := os.ReadFile(filepath.Join(exportDir, "Rough Cut.edl"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(edl), "TITLE: Rough Cut\n"))
	assert.Contains(t, string(edl), "* FROM CLIP NAME:  title card")
}

func TestApply_Strict(t *testing.T) {
	project := filepath.Join(t.TempDir(), "p.json")
	_, err := run(t, "", "init", "-p", project)
	require.NoError(t, err)

	out, err := run(t, "", "apply", "-p", project, "--strict",
		`{"type":"DELETE_CLIP"}`,
		`{"type":"SET_FPS","fps":30}`,
	)
	assert.ErrorContains(t, err, "1 of 2 commands were not applied")
	assert.Contains(t, out, `"applied": true`)

	p, err := loadProject(project)
	require.NoError(t, err)
	assert.Equal(t, 30.0, p.FPS)
}

func TestApply_NoCommands(t *testing.T) {
	project := filepath.Join(t.TempDir(), "p.json")
	_, err := run(t, "", "init", "-p", project)
	require.NoError(t, err)

	_, err = run(t, "\n# nothing\n", "apply", "-p", project)
	assert.ErrorContains(t, err, "no commands given")
}

func TestExportEDL_EmptyTimeline(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "p.json")
	_, err := run(t, "", "init", "-p", project)
	require.NoError(t, err)

	_, err = run(t, "", "export-edl", "-p", project, "-o", dir)
	assert.ErrorIs(t, err, ErrEmptyTimeline)
}

func TestLoadProject_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"fps":0}`), 0o644))

	_, err := loadProject(path)
	assert.ErrorContains(t, err, "invalid project")

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))
	_, err = loadProject(path)
	assert.ErrorContains(t, err, "parse project")
}

func TestCommandType(t *testing.T) {
	assert.Equal(t, "SET_FPS", commandType(`{"type":"SET_FPS","fps":30}`))
	assert.Equal(t, "", commandType(`garbage`))
}
