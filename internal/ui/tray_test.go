package ui

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

func TestIconBytes_DecodesAsPNG(t *testing.T) {
	data := iconBytes()
	require.NotEmpty(t, data)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 22, img.Bounds().Dx())

	r, _, _, _ := img.At(11, 11).RGBA()
	assert.Equal(t, uint32(0xf5f5), r, "centre pixel should be the play glyph")
}

func TestLabels(t *testing.T) {
	p := timeline.NewProject(25, 4)
	p.Media = append(p.Media, timeline.MediaItem{ID: "m1"})
	p.Clips = append(p.Clips, timeline.Clip{ID: "c1"}, timeline.Clip{ID: "c2"})

	assert.Equal(t, "Clips: 2  Media: 1", statusLabel(p))
	assert.Equal(t, "Pause", playLabel(true))
	assert.Equal(t, "Play", playLabel(false))
}

func TestUpdateProject_BeforeReadyIsDeferred(t *testing.T) {
	tray := NewTray(TrayConfig{})
	p := timeline.NewProject(25, 4)
	p.PlayheadFrame = 12

	tray.UpdateProject(p)

	require.NotNil(t, tray.pending)
	assert.Equal(t, 12, tray.pending.PlayheadFrame)
}
